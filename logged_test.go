package cancomm

import (
	"context"
	"log/slog"
	"testing"
)

type recordSink struct {
	records []slog.Record
}

func (s *recordSink) Enabled(context.Context, slog.Level) bool { return true }
func (s *recordSink) Handle(_ context.Context, r slog.Record) error {
	// Make a deep copy of attributes because slog reuses the record during processing
	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool { attrs = append(attrs, a); return true })
	nr := slog.Record{Time: r.Time, Level: r.Level, PC: r.PC, Message: r.Message}
	for _, a := range attrs {
		nr.AddAttrs(a)
	}
	s.records = append(s.records, nr)
	return nil
}
func (s *recordSink) WithAttrs(attrs []slog.Attr) slog.Handler { return s }
func (s *recordSink) WithGroup(name string) slog.Handler       { return s }

func hasSlogMsg(records []slog.Record, level slog.Level, msg string) bool {
	for _, r := range records {
		if r.Level == level && r.Message == msg {
			return true
		}
	}
	return false
}

func TestLoggedConn_TransmitAndReceiveLogging(t *testing.T) {
	bus := NewLoopbackBus()
	defer bus.Close()

	tx := NewSessionWith(bus.Dialer())
	rx := NewSessionWith(bus.Dialer())
	if err := tx.Connect("vcan0"); err != nil {
		t.Fatalf("connect tx: %v", err)
	}
	if err := rx.Connect("vcan0"); err != nil {
		t.Fatalf("connect rx: %v", err)
	}

	sink := &recordSink{}
	logger := slog.New(sink)

	// Wrap both sessions to verify transmit and receive logging independently.
	sender := NewLoggedConn(tx, logger, slog.LevelInfo, LogTransmit)
	receiver := NewLoggedConn(rx, logger, slog.LevelInfo, LogReceive)
	defer sender.Close()
	defer receiver.Close()

	if _, err := sender.Transmit(0x123, false, []byte{1, 2, 3}, false); err != nil {
		t.Fatalf("transmit: %v", err)
	}
	f, err := receiver.Receive()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if f == nil {
		t.Fatalf("expected a frame")
	}

	if !hasSlogMsg(sink.records, slog.LevelInfo, "cancomm transmit") {
		t.Fatalf("expected transmit log entry")
	}
	if !hasSlogMsg(sink.records, slog.LevelInfo, "cancomm receive") {
		t.Fatalf("expected receive log entry")
	}

	// Empty polls stay quiet.
	before := len(sink.records)
	if f, err := receiver.Receive(); err != nil || f != nil {
		t.Fatalf("empty receive = (%v, %v)", f, err)
	}
	if len(sink.records) != before {
		t.Fatalf("empty poll should not be logged")
	}
}

func TestLoggedConn_ErrorLogging(t *testing.T) {
	sink := &recordSink{}
	logger := slog.New(sink)

	// A session that never connected fails both operations.
	wrapped := NewLoggedConn(NewSession(), logger, slog.LevelInfo, LogAll)
	if _, err := wrapped.Receive(); err == nil {
		t.Fatalf("expected receive error")
	}
	if _, err := wrapped.Transmit(0x1, false, nil, false); err == nil {
		t.Fatalf("expected transmit error")
	}

	if !hasSlogMsg(sink.records, slog.LevelError, "cancomm receive error") {
		t.Fatalf("expected receive error log entry")
	}
	if !hasSlogMsg(sink.records, slog.LevelError, "cancomm transmit error") {
		t.Fatalf("expected transmit error log entry")
	}
}

func TestLoggedConn_Filtered(t *testing.T) {
	bus := NewLoopbackBus()
	defer bus.Close()
	tx := NewSessionWith(bus.Dialer())
	if err := tx.Connect("vcan0"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer tx.Close()

	sink := &recordSink{}
	logger := slog.New(sink)
	sender := NewLoggedConnWithFilter(tx, logger, slog.LevelInfo, LogTransmit, ByID(0x100))

	if _, err := sender.Transmit(0x200, false, []byte{1}, false); err != nil {
		t.Fatalf("transmit: %v", err)
	}
	if hasSlogMsg(sink.records, slog.LevelInfo, "cancomm transmit") {
		t.Fatalf("filtered frame should not be logged")
	}
	if _, err := sender.Transmit(0x100, false, []byte{1}, false); err != nil {
		t.Fatalf("transmit: %v", err)
	}
	if !hasSlogMsg(sink.records, slog.LevelInfo, "cancomm transmit") {
		t.Fatalf("matching frame should be logged")
	}
}
