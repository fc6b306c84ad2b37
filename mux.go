package cancomm

import (
	"sync"
	"time"
)

// FrameFilter decides whether a frame should be delivered to a subscriber.
type FrameFilter func(Frame) bool

// Mux fans frames out from a Conn to any number of subscribers via filters.
//
// It owns the Conn for receiving and runs a single background goroutine that
// drives the non-blocking Receive in a polling loop, sleeping for the poll
// interval whenever no frame is pending. This packages the caller-driven
// polling pattern the session expects, and avoids multiple goroutines
// competing to Receive.
//
// Transmit is not proxied; callers keep using the original Conn to send.
type Mux struct {
	conn Conn
	poll time.Duration
	stop chan struct{}

	mu   sync.RWMutex
	subs map[uint64]*subscriber
	next uint64
}

type subscriber struct {
	filter FrameFilter
	ch     chan Frame
}

// DefaultPollInterval is the receive poll interval used when NewMux is given
// a non-positive one.
const DefaultPollInterval = time.Millisecond

// NewMux creates and starts a multiplexer polling the given Conn.
func NewMux(conn Conn, poll time.Duration) *Mux {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	m := &Mux{
		conn: conn,
		poll: poll,
		stop: make(chan struct{}),
		subs: make(map[uint64]*subscriber),
	}
	go m.run()
	return m
}

// Close stops the background poller and closes all subscriber channels.
func (m *Mux) Close() error {
	select {
	case <-m.stop:
		return nil
	default:
	}
	close(m.stop)
	m.mu.Lock()
	for id, s := range m.subs {
		close(s.ch)
		delete(m.subs, id)
	}
	m.mu.Unlock()
	return nil
}

// Subscribe registers a new subscriber with the provided filter and channel
// buffer. The returned channel receives frames that match the filter. The
// cancel function should be called when no longer needed; it closes the
// channel.
func (m *Mux) Subscribe(filter FrameFilter, buffer int) (<-chan Frame, func()) {
	if buffer < 0 {
		buffer = 0
	}
	s := &subscriber{filter: filter, ch: make(chan Frame, buffer)}
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = s
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if cur, ok := m.subs[id]; ok && cur == s {
			close(cur.ch)
			delete(m.subs, id)
		}
		m.mu.Unlock()
	}
	return s.ch, cancel
}

func (m *Mux) run() {
	timer := time.NewTimer(m.poll)
	defer timer.Stop()
	for {
		select {
		case <-m.stop:
			return
		default:
		}
		f, err := m.conn.Receive()
		if err != nil {
			// Propagate closure to subscribers and exit.
			m.mu.Lock()
			for id, s := range m.subs {
				close(s.ch)
				delete(m.subs, id)
			}
			m.mu.Unlock()
			return
		}
		if f == nil {
			timer.Reset(m.poll)
			select {
			case <-m.stop:
				return
			case <-timer.C:
			}
			continue
		}
		m.mu.RLock()
		for _, s := range m.subs {
			if s.filter == nil || s.filter(*f) {
				select {
				case s.ch <- *f:
				default:
					// Drop if subscriber is slow and channel is full.
				}
			}
		}
		m.mu.RUnlock()
	}
}
