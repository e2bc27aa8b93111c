package channel

import "sync"

// ReadyWait is a latched readiness notification. Any number of Notify calls
// made before the next receive collapse into a single pending signal, so a
// waiter that checks its predicate and then waits can never miss a wakeup.
// The value of a structure like this over a Cond is that a channel can
// participate in a select
type ReadyWait struct {
	ready  chan struct{}
	mu     sync.Mutex
	closed bool
}

const readyWaitCap = 1 // must be non-zero

// MakeReadyWait returns a new ReadyWait
func MakeReadyWait() *ReadyWait {
	return &ReadyWait{
		ready: make(chan struct{}, readyWaitCap),
	}
}

// Notify wakes up any goroutine waiting on the ready channel without blocking
// the caller. Notifying a closed ReadyWait does nothing
func (r *ReadyWait) Notify() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed && len(r.ready) < cap(r.ready) {
		r.ready <- struct{}{}
	}
}

// Wait returns the underlying channel. A receive succeeds once Notify has
// been called, or immediately and forever after Close
func (r *ReadyWait) Wait() <-chan struct{} {
	return r.ready
}

// Close closes the underlying ready channel, releasing every waiter. It is
// safe to call more than once
func (r *ReadyWait) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		close(r.ready)
	}
}
