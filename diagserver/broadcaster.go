// Package diagserver is an optional diagnostics-only HTTP/websocket server
// exposing a running vm.Machine's state behind the executor's --serve
// flag: one JSON snapshot endpoint and one trace event stream. This is a
// text/JSON wire format, not a rendered graphical tracer.
package diagserver

import "sync"

// Broadcaster fans out vm.Machine step events to subscribed websocket
// clients.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

// NewBroadcaster returns an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan []byte]struct{})}
}

// Subscribe registers a new subscriber channel and returns an unsubscribe
// function the caller must invoke when done.
func (b *Broadcaster) Subscribe() (ch chan []byte, unsubscribe func()) {
	ch = make(chan []byte, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch, func() {
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}
}

// Publish sends msg to every current subscriber without blocking; a
// subscriber whose buffer is full drops the message rather than stalling
// the executing Machine.
func (b *Broadcaster) Publish(msg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}
