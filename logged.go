package cancomm

import (
	"context"
	"log/slog"
)

// LoggedConn is a Conn decorator that logs Transmit/Receive operations using
// a slog.Logger. The core session itself never logs.

// LogOption is a bitmask for selecting which operations to log.
type LogOption uint8

const (
	LogNone    LogOption = 0
	LogReceive LogOption = 1 << iota
	LogTransmit
	LogAll = LogReceive | LogTransmit
)

// NewLoggedConn wraps the given Conn and logs selected operations at the
// given level.
func NewLoggedConn(inner Conn, logger *slog.Logger, level slog.Level, opts LogOption) Conn {
	return &loggedConn{
		inner:  inner,
		logger: logger,
		level:  level,
		opts:   opts,
	}
}

// NewLoggedConnWithFilter wraps the given Conn and logs selected operations
// but only for frames that satisfy the provided filter. If filter is nil,
// all frames are considered for logging (same as NewLoggedConn behavior).
func NewLoggedConnWithFilter(inner Conn, logger *slog.Logger, level slog.Level, opts LogOption, filter FrameFilter) Conn {
	return &loggedConn{
		inner:  inner,
		logger: logger,
		level:  level,
		opts:   opts,
		filter: filter,
	}
}

type loggedConn struct {
	inner  Conn
	logger *slog.Logger
	level  slog.Level
	opts   LogOption
	filter FrameFilter
}

// Transmit logs the outgoing frame and the result when transmit logging is
// enabled.
func (l *loggedConn) Transmit(id uint32, extended bool, data []byte, wantFD bool) (uint64, error) {
	ts, err := l.inner.Transmit(id, extended, data, wantFD)
	if l.opts&LogTransmit == 0 {
		return ts, err
	}
	if err != nil {
		l.logger.Log(context.Background(), slog.LevelError, "cancomm transmit error",
			"id", id,
			"error", err,
		)
		return ts, err
	}
	f := Frame{ID: id, Extended: extended, FD: wantFD, Len: uint8(len(data))}
	copy(f.Data[:], data)
	if l.filter == nil || l.filter(f) {
		l.logger.Log(context.Background(), l.level, "cancomm transmit",
			"id", id,
			"extended", extended,
			"fd", wantFD,
			"len", len(data),
			"data", data,
			"timestamp_us", ts,
		)
	}
	return ts, err
}

// Receive logs the received frame or error when receive logging is enabled.
// Polls that return no frame are not logged.
func (l *loggedConn) Receive() (*Frame, error) {
	f, err := l.inner.Receive()
	if l.opts&LogReceive != 0 {
		if err != nil {
			l.logger.Log(context.Background(), slog.LevelError, "cancomm receive error",
				"error", err,
			)
		} else if f != nil {
			if l.filter == nil || l.filter(*f) {
				l.logger.Log(context.Background(), l.level, "cancomm receive",
					"id", f.ID,
					"extended", f.Extended,
					"fd", f.FD,
					"error_frame", f.ErrorFrame,
					"len", int(f.Len),
					"data", f.Data[:f.Len],
					"timestamp_us", f.Timestamp,
					"string", f.String(),
				)
			}
		}
	}
	return f, err
}

// Close forwards to the inner Conn without logging.
func (l *loggedConn) Close() error {
	return l.inner.Close()
}
