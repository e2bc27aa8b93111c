package topic

import (
	"fmt"
	"sync"

	"github.com/kode4food/courier/internal/sync/channel"
	"github.com/kode4food/courier/topic"
)

type (
	// dispatcher delivers listener notifications on a single goroutine, in
	// the order they were enqueued. Enqueueing never blocks
	dispatcher struct {
		ready   *channel.ReadyWait
		queue   []notification
		mu      sync.Mutex
		stopped bool
	}

	// notification is a data-available event when match is nil, and a
	// match-changed event otherwise
	notification struct {
		reader *reader
		match  *topic.MatchStatus
	}
)

func startDispatcher() *dispatcher {
	d := &dispatcher{
		ready: channel.MakeReadyWait(),
	}
	go d.run()
	return d
}

func (d *dispatcher) enqueue(n notification) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.queue = append(d.queue, n)
	d.mu.Unlock()
	d.ready.Notify()
}

// stop discards any queued notifications. It does not wait for a listener
// that is currently running, since that listener may be the caller
func (d *dispatcher) stop() {
	d.mu.Lock()
	d.stopped = true
	d.queue = nil
	d.mu.Unlock()
	d.ready.Close()
}

func (d *dispatcher) run() {
	for range d.ready.Wait() {
		for {
			n, ok := d.next()
			if !ok {
				break
			}
			d.deliver(n)
		}
	}
}

func (d *dispatcher) next() (notification, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || len(d.queue) == 0 {
		return notification{}, false
	}
	n := d.queue[0]
	d.queue[0] = notification{}
	d.queue = d.queue[1:]
	return n, true
}

// deliver recovers listener panics and reports them through the Reader's
// logger and diagnostics function. They never reach a publisher
func (d *dispatcher) deliver(n notification) {
	rd := n.reader
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("%w: reader %s on %q: %v",
				topic.ErrListenerPanic, rd.id, rd.entry.name, rec,
			)
			rd.config.Logger.Error("listener panicked",
				"topic", rd.entry.name, "reader", rd.id, "error", err,
			)
			if diag := rd.config.Diagnostics; diag != nil {
				diag(err)
			}
		}
	}()
	rd.dispatch(n)
}
