package writer

import "sync"

// event is a manual-reset event backing the synchronous wait primitive.
// Set leaves the event signaled until the next Reset, so a waiter that
// arrives after the signal does not block.
type event struct {
	mu  sync.Mutex
	ch  chan struct{}
	set bool
}

func newEvent() *event {
	return &event{ch: make(chan struct{})}
}

// Set signals the event. Idempotent.
func (e *event) Set() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.set {
		e.set = true
		close(e.ch)
	}
}

// Reset clears the signal. Waiters obtained after Reset block until the
// next Set.
func (e *event) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set {
		e.set = false
		e.ch = make(chan struct{})
	}
}

// Done returns a channel that is closed while the event is signaled.
func (e *event) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ch
}
