package bus

import (
	"sync"
	"time"
)

// Loopback is an in-memory bus hub for tests and simulation. Every endpoint
// opened from the same hub receives the frames the other endpoints send.
type Loopback struct {
	mu        sync.Mutex
	closed    bool
	endpoints map[*Endpoint]struct{}
}

// NewLoopback creates an empty hub.
func NewLoopback() *Loopback {
	return &Loopback{endpoints: make(map[*Endpoint]struct{})}
}

// Open attaches a new endpoint to the hub.
func (l *Loopback) Open() *Endpoint {
	ep := &Endpoint{
		hub:    l,
		frames: make(chan Frame, 64),
		done:   make(chan struct{}),
	}
	l.mu.Lock()
	if l.closed {
		close(ep.done)
	} else {
		l.endpoints[ep] = struct{}{}
	}
	l.mu.Unlock()
	return ep
}

// Close detaches and closes all endpoints.
func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	for ep := range l.endpoints {
		ep.closeLocked()
	}
	l.endpoints = nil
	return nil
}

// Endpoint is one attachment point on a Loopback hub. It implements Bus.
type Endpoint struct {
	hub    *Loopback
	frames chan Frame

	once sync.Once
	done chan struct{}
}

// Send broadcasts the frame to every other endpoint on the hub. Slow
// receivers with a full buffer miss the frame rather than block the sender.
func (e *Endpoint) Send(id uint32, data []byte) error {
	if len(data) > 8 {
		return ErrTooLong
	}
	select {
	case <-e.done:
		return ErrClosed
	default:
	}
	f := Frame{ID: id, Data: append([]byte(nil), data...)}
	e.hub.mu.Lock()
	if e.hub.closed {
		e.hub.mu.Unlock()
		return ErrClosed
	}
	for ep := range e.hub.endpoints {
		if ep == e {
			continue
		}
		select {
		case ep.frames <- f:
		default:
		}
	}
	e.hub.mu.Unlock()
	return nil
}

// Receive waits up to timeout for a broadcast frame.
func (e *Endpoint) Receive(timeout time.Duration) (Frame, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case f := <-e.frames:
		return f, true, nil
	case <-timer.C:
		return Frame{}, false, nil
	case <-e.done:
		return Frame{}, false, ErrClosed
	}
}

// Close detaches the endpoint from its hub.
func (e *Endpoint) Close() error {
	e.hub.mu.Lock()
	e.closeLocked()
	if e.hub.endpoints != nil {
		delete(e.hub.endpoints, e)
	}
	e.hub.mu.Unlock()
	return nil
}

func (e *Endpoint) closeLocked() {
	e.once.Do(func() { close(e.done) })
}
