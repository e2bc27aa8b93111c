package topic

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kode4food/courier/closer"
	"github.com/kode4food/courier/internal/sync/channel"
	"github.com/kode4food/courier/message"
	"github.com/kode4food/courier/topic"
	"github.com/kode4food/courier/topic/config"
)

type reader struct {
	closer.Closer
	id             uuid.UUID
	registry       *Registry
	entry          *entry
	config         config.Config
	observers      *observers
	condition      *readCondition
	buffer         *buffer
	listener       topic.Listener
	seq            uint64
	matchedWriters atomic.Int64
	mu             sync.Mutex
	pending        bool
	closed         bool
}

func makeReader(
	r *Registry, e *entry, cfg config.Config, seq uint64,
) *reader {
	res := &reader{
		id:        uuid.New(),
		registry:  r,
		entry:     e,
		config:    cfg,
		seq:       seq,
		observers: makeObservers(),
		buffer:    makeBuffer(cfg.Capacity, cfg.Overflow),
	}
	res.condition = &readCondition{reader: res}
	res.Closer = makeCloser(res.shutdown)
	return res
}

func (rd *reader) ID() uuid.UUID {
	return rd.id
}

func (rd *reader) Topic() string {
	return rd.entry.name
}

func (rd *reader) Condition() topic.Condition {
	return rd.condition
}

func (rd *reader) MatchedWriters() int {
	return int(rd.matchedWriters.Load())
}

func (rd *reader) Stats() topic.Stats {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	return topic.Stats{
		Buffered:  uint64(rd.buffer.length()),
		Delivered: rd.buffer.delivered,
		Dropped:   rd.buffer.dropped,
	}
}

// Take drains the buffer atomically. No message is ever returned by two
// successive calls
func (rd *reader) Take() ([]message.Message, error) {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	if err := rd.check(); err != nil {
		return nil, err
	}
	return rd.buffer.drain(), nil
}

// WaitAndTake registers a private wakeup before its first Take, so a publish
// that lands between the Take and the wait is never missed
func (rd *reader) WaitAndTake(timeout time.Duration) ([]message.Message, error) {
	ready := channel.MakeReadyWait()
	waitID := uuid.New()
	rd.observers.add(waitID, ready.Notify)
	defer rd.observers.remove(waitID)

	var expired <-chan time.Time
	if timeout >= 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	for {
		msgs, err := rd.Take()
		if err != nil || len(msgs) != 0 {
			return msgs, err
		}
		select {
		case <-ready.Wait():
		case <-rd.IsClosed():
			return nil, topic.ErrClosed
		case <-expired:
			return nil, nil
		}
	}
}

func (rd *reader) SetListener(l topic.Listener) error {
	return rd.updateListener(func(res *topic.Listener) {
		*res = l
	})
}

func (rd *reader) OnData(fn func(message.Message)) error {
	var cb func(topic.Reader)
	if fn != nil {
		cb = func(r topic.Reader) {
			msgs, err := r.Take()
			if err != nil {
				return
			}
			for _, m := range msgs {
				fn(m)
			}
		}
	}
	return rd.updateListener(func(l *topic.Listener) {
		l.DataAvailable = cb
	})
}

func (rd *reader) OnMatchChanged(fn func(current, delta int)) error {
	var cb func(topic.Reader, topic.MatchStatus)
	if fn != nil {
		cb = func(_ topic.Reader, s topic.MatchStatus) {
			fn(s.Current, s.Delta)
		}
	}
	return rd.updateListener(func(l *topic.Listener) {
		l.MatchChanged = cb
	})
}

// updateListener schedules a data notification if data is already buffered,
// and an initial match event if a match listener is newly registered while
// Writers are matched
func (rd *reader) updateListener(update func(*topic.Listener)) error {
	rd.mu.Lock()
	if err := rd.check(); err != nil {
		rd.mu.Unlock()
		return err
	}
	hadMatch := rd.listener.MatchChanged != nil
	update(&rd.listener)

	var pending []notification
	if rd.buffer.length() != 0 && rd.markPending() {
		pending = append(pending, notification{reader: rd})
	}
	count := rd.MatchedWriters()
	if !hadMatch && rd.listener.MatchChanged != nil && count != 0 {
		pending = append(pending, notification{
			reader: rd,
			match:  &topic.MatchStatus{Current: count, Delta: count},
		})
	}
	rd.mu.Unlock()

	for _, n := range pending {
		rd.registry.dispatcher.enqueue(n)
	}
	return nil
}

// markPending must be called with the Reader lock held. It reports whether
// the caller is responsible for scheduling a data notification
func (rd *reader) markPending() bool {
	if rd.pending || rd.listener.DataAvailable == nil {
		return false
	}
	rd.pending = true
	return true
}

// matched is called with the Registry lock held whenever a Writer on this
// Reader's Topic is opened or closed
func (rd *reader) matched(count, delta int) {
	rd.mu.Lock()
	rd.matchedWriters.Store(int64(count))
	notify := !rd.closed && rd.listener.MatchChanged != nil
	rd.mu.Unlock()

	if notify {
		rd.registry.dispatcher.enqueue(notification{
			reader: rd,
			match:  &topic.MatchStatus{Current: count, Delta: delta},
		})
	}
}

// dispatch runs on the dispatcher goroutine. The pending flag is cleared
// before the listener runs, so a publish that races with the listener's Take
// schedules another notification
func (rd *reader) dispatch(n notification) {
	rd.mu.Lock()
	if rd.closed || rd.entry.torn.Load() {
		rd.mu.Unlock()
		return
	}
	l := rd.listener
	if n.match == nil {
		rd.pending = false
	}
	rd.mu.Unlock()

	switch {
	case n.match != nil && l.MatchChanged != nil:
		l.MatchChanged(rd, *n.match)
	case n.match == nil && l.DataAvailable != nil:
		l.DataAvailable(rd)
	}
}

// check must be called with the Reader lock held
func (rd *reader) check() error {
	if rd.closed {
		return topic.ErrClosed
	}
	if rd.entry.torn.Load() {
		return fmt.Errorf("%w: %q", topic.ErrUnknownTopic, rd.entry.name)
	}
	return nil
}

func (rd *reader) status() error {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	return rd.check()
}

func (rd *reader) isReleased() bool {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	return rd.closed || rd.entry.torn.Load()
}

func (rd *reader) hasData() bool {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	return !rd.closed && rd.buffer.length() != 0
}

func (rd *reader) shutdown() {
	rd.mu.Lock()
	rd.closed = true
	rd.pending = false
	rd.listener = topic.Listener{}
	rd.buffer.reset()
	rd.mu.Unlock()

	rd.registry.removeReader(rd)
	rd.observers.notify()
}
