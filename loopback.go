package cancomm

import (
	"sync"
	"syscall"
	"time"
)

// LoopbackBus is an in-memory CAN bus for tests and simulations. Endpoints
// opened from the same bus exchange raw wire frames with the same
// non-blocking semantics as a real channel: an empty endpoint reports
// EAGAIN, and each delivered frame carries a receive timestamp.
type LoopbackBus struct {
	mu        sync.RWMutex
	mtu       int
	closed    bool
	endpoints map[*loopChannel]struct{}
}

// NewLoopbackBus creates a loopback bus with classic framing.
func NewLoopbackBus() *LoopbackBus {
	return &LoopbackBus{mtu: classicFrameSize, endpoints: make(map[*loopChannel]struct{})}
}

// NewLoopbackFDBus creates a loopback bus whose endpoints report an FD-sized
// transport unit, so sessions connected through it become FD-capable.
func NewLoopbackFDBus() *LoopbackBus {
	return &LoopbackBus{mtu: fdFrameSize, endpoints: make(map[*loopChannel]struct{})}
}

// Open creates a new endpoint attached to the bus.
func (b *LoopbackBus) Open() Channel {
	ep := &loopChannel{
		bus: b,
		ch:  make(chan loopFrame, 64),
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		ep.dead = true
		return ep
	}
	b.endpoints[ep] = struct{}{}
	b.mu.Unlock()
	return ep
}

// Dialer returns a Dialer that opens a fresh endpoint for any device name,
// for wiring a Session to the bus via NewSessionWith.
func (b *LoopbackBus) Dialer() Dialer {
	return func(device string) (Channel, error) {
		b.mu.RLock()
		closed := b.closed
		b.mu.RUnlock()
		if closed {
			return nil, ErrClosed
		}
		return b.Open(), nil
	}
}

// Close closes the bus and detaches all endpoints.
func (b *LoopbackBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for ep := range b.endpoints {
		ep.closeNoLock()
	}
	b.endpoints = nil
	b.mu.Unlock()
	return nil
}

type loopFrame struct {
	buf []byte
	at  time.Time
}

type loopChannel struct {
	bus    *LoopbackBus
	ch     chan loopFrame
	mu     sync.Mutex
	dead   bool
	lastRx time.Time
}

// Write broadcasts the buffer to all other endpoints on the bus. Endpoints
// with a full queue drop the frame, mirroring a saturated controller.
func (e *loopChannel) Write(p []byte) (int, error) {
	e.mu.Lock()
	dead := e.dead
	e.mu.Unlock()
	if dead {
		return 0, ErrClosed
	}
	e.bus.mu.RLock()
	if e.bus.closed {
		e.bus.mu.RUnlock()
		return 0, ErrClosed
	}
	targets := make([]*loopChannel, 0, len(e.bus.endpoints))
	for ep := range e.bus.endpoints {
		if ep != e {
			targets = append(targets, ep)
		}
	}
	e.bus.mu.RUnlock()

	f := loopFrame{buf: append([]byte(nil), p...), at: time.Now()}
	for _, t := range targets {
		select {
		case t.ch <- f:
		default:
		}
	}
	return len(p), nil
}

// Read pops the next pending frame without blocking.
func (e *loopChannel) Read(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dead {
		return 0, ErrClosed
	}
	select {
	case f := <-e.ch:
		e.lastRx = f.at
		return copy(p, f.buf), nil
	default:
		return 0, syscall.EAGAIN
	}
}

// SetNonblock is a no-op; loopback endpoints never block.
func (e *loopChannel) SetNonblock() error { return nil }

// MTU reports the bus framing mode.
func (e *loopChannel) MTU() (int, error) { return e.bus.mtu, nil }

// EnableFD opts the endpoint into FD frames; refused on a classic bus.
func (e *loopChannel) EnableFD() error {
	if e.bus.mtu != fdFrameSize {
		return syscall.EINVAL
	}
	return nil
}

// ReceiveTimestamp reports when the most recently read frame entered the
// endpoint queue.
func (e *loopChannel) ReceiveTimestamp() (time.Time, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastRx.IsZero() {
		return time.Time{}, syscall.ENOENT
	}
	return e.lastRx, nil
}

// Close detaches the endpoint from the bus.
func (e *loopChannel) Close() error {
	e.bus.mu.Lock()
	e.closeNoLock()
	e.bus.mu.Unlock()
	return nil
}

func (e *loopChannel) closeNoLock() {
	e.mu.Lock()
	if e.dead {
		e.mu.Unlock()
		return
	}
	e.dead = true
	if e.bus.endpoints != nil {
		delete(e.bus.endpoints, e)
	}
	e.mu.Unlock()
}
