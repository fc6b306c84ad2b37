package cancomm

import (
	"errors"
	"fmt"
	"syscall"
	"time"
)

// Session error kinds. Underlying causes are wrapped, so errors.Is works
// against these sentinels.
var (
	ErrNotConnected        = errors.New("cancomm: not connected")
	ErrDeviceUnavailable   = errors.New("cancomm: device unavailable")
	ErrConfigurationFailed = errors.New("cancomm: channel configuration failed")
	ErrChannel             = errors.New("cancomm: channel error")
)

// Conn is the operational surface shared by *Session and its decorators.
type Conn interface {
	// Transmit sends one frame and returns the transmit timestamp in
	// microseconds since the connect epoch.
	Transmit(id uint32, extended bool, data []byte, wantFD bool) (uint64, error)

	// Receive retrieves the next pending frame, or (nil, nil) when no
	// frame is pending.
	Receive() (*Frame, error)

	// Close releases resources. Further Transmit/Receive return an error.
	Close() error
}

// Session owns exclusive access to one CAN channel. It is created
// disconnected; Connect binds it to a named interface and Disconnect/Close
// release it again.
//
// All operations are synchronous and immediate: the channel is placed in
// non-blocking mode at connect time and Receive reports "no frame yet" as a
// normal outcome, so a caller-driven polling loop is the expected usage
// pattern. A Session performs no internal locking; concurrent calls must be
// serialized by the caller. Independent Sessions on different interfaces
// share no state.
type Session struct {
	ch        Channel
	dial      Dialer
	connected bool
	fdCapable bool
	epoch     time.Time
	rxBuf     [fdFrameSize]byte
}

// NewSession creates a disconnected Session using the platform SocketCAN
// dialer.
func NewSession() *Session {
	return &Session{dial: dialChannel}
}

// NewSessionWith creates a disconnected Session that opens its channel
// through the given dialer. Useful with a LoopbackBus or a custom transport.
func NewSessionWith(dial Dialer) *Session {
	return &Session{dial: dial}
}

// Connected reports whether the session currently owns an open channel.
func (s *Session) Connected() bool { return s.connected }

// FDCapable reports whether the connected interface is configured for CAN FD
// framing. Always false while disconnected.
func (s *Session) FDCapable() bool { return s.fdCapable }

// Connect binds the session to the named CAN device. A connected session is
// first disconnected, so Connect doubles as reconnection to a possibly
// different interface.
//
// The connect time becomes the epoch for all timestamps the session reports.
// The interface's transport unit decides the framing mode: an FD-sized unit
// makes the session FD-capable and opts the channel into FD frames. If that
// opt-in fails the session stays connected in classic mode, which is always
// a safe fallback. Failure to open or bind the device reports
// ErrDeviceUnavailable; failure to make the channel non-blocking reports
// ErrConfigurationFailed. Both leave the session disconnected.
func (s *Session) Connect(device string) error {
	if device == "" {
		return fmt.Errorf("%w: empty device name", ErrDeviceUnavailable)
	}
	if s.connected {
		s.Disconnect()
	}
	ch, err := s.dial(device)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	epoch := time.Now()
	fdCapable := false
	if mtu, err := ch.MTU(); err == nil && mtu == fdFrameSize {
		// Classic remains the fallback when the opt-in is refused.
		fdCapable = ch.EnableFD() == nil
	}
	if err := ch.SetNonblock(); err != nil {
		ch.Close()
		return fmt.Errorf("%w: %v", ErrConfigurationFailed, err)
	}
	s.ch = ch
	s.epoch = epoch
	s.fdCapable = fdCapable
	s.connected = true
	return nil
}

// Disconnect closes the channel if connected. Safe to call at any time.
func (s *Session) Disconnect() {
	if !s.connected {
		return
	}
	s.ch.Close()
	s.ch = nil
	s.connected = false
	s.fdCapable = false
}

// Close releases the session, disconnecting first. It implements Conn.
func (s *Session) Close() error {
	s.Disconnect()
	return nil
}

// Transmit sends one frame with the given identifier and payload. The frame
// uses the FD shape only when the session is FD-capable and wantFD is set;
// otherwise it falls back to the classic shape, where the payload is limited
// to 8 bytes. FD frames declare the sanitized payload length, zero-pad up to
// it and request the higher data-phase bit rate.
//
// The write is a single atomic operation and is never retried internally; a
// full transmit queue surfaces as ErrChannel, and retry policy belongs to
// the caller. On success Transmit returns the epoch-relative transmit time
// in microseconds.
func (s *Session) Transmit(id uint32, extended bool, data []byte, wantFD bool) (uint64, error) {
	if !s.connected {
		return 0, ErrNotConnected
	}
	if len(data) > fdMaxDataLen {
		return 0, ErrInvalidLength
	}
	fd := wantFD && s.fdCapable
	if !fd && len(data) > classicMaxDataLen {
		return 0, ErrInvalidLength
	}
	f := Frame{ID: id, Extended: extended, FD: fd}
	if fd {
		f.Len = SanitizeLen(len(data))
	} else {
		f.Len = uint8(len(data))
	}
	copy(f.Data[:], data)
	buf, err := f.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := s.ch.Write(buf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrChannel, err)
	}
	if n != len(buf) {
		return 0, fmt.Errorf("%w: short write", ErrChannel)
	}
	return s.sinceEpoch(time.Now()), nil
}

// Receive performs one non-blocking read attempt and decodes the result.
// It returns (nil, nil) when no frame is pending, which is the expected
// common case in a polling loop. Reads that match neither frame shape and
// remote transmission requests are likewise reported as no data. Bus error
// indications decode into a Frame with ErrorFrame set and meaningless ID and
// Len. The frame timestamp comes from the channel's receive time-stamping
// facility, expressed relative to the connect epoch, and is 0 when that
// facility is unavailable.
func (s *Session) Receive() (*Frame, error) {
	if !s.connected {
		return nil, ErrNotConnected
	}
	n, err := s.ch.Read(s.rxBuf[:])
	if err != nil {
		if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrChannel, err)
	}
	var f Frame
	if err := f.UnmarshalBinary(s.rxBuf[:n]); err != nil {
		// Partial or garbage reads and RTR probes are benign.
		return nil, nil
	}
	if t, err := s.ch.ReceiveTimestamp(); err == nil {
		f.Timestamp = s.sinceEpoch(t)
	}
	return &f, nil
}

func (s *Session) sinceEpoch(t time.Time) uint64 {
	if t.Before(s.epoch) {
		return 0
	}
	return uint64(t.Sub(s.epoch).Microseconds())
}
