package cancomm

import (
	"errors"
	"time"
)

// Channel is the raw bidirectional transport a Session drives. The Linux
// implementation is a SocketCAN socket bound to one interface; the loopback
// provides the same contract in memory for tests and simulations.
//
// Read performs a single best-effort read and reports "no data" through an
// EAGAIN-class error once the channel is non-blocking. Write must transfer a
// complete wire frame in one operation.
type Channel interface {
	// Read fills p from the next pending frame, returning the byte count.
	Read(p []byte) (int, error)

	// Write sends one complete wire frame.
	Write(p []byte) (int, error)

	// SetNonblock switches the channel into non-blocking mode.
	SetNonblock() error

	// MTU reports the interface's transport unit: 16 for classic framing,
	// 72 when the interface is configured for CAN FD.
	MTU() (int, error)

	// EnableFD opts the channel into sending and receiving FD frames.
	EnableFD() error

	// ReceiveTimestamp reports the kernel timestamp of the most recently
	// received frame.
	ReceiveTimestamp() (time.Time, error)

	// Close releases the channel. Further Read/Write may return an error.
	Close() error
}

// Dialer opens a Channel bound to the named CAN device.
type Dialer func(device string) (Channel, error)

// ErrClosed indicates the channel or endpoint has been closed.
var ErrClosed = errors.New("cancomm: closed")
