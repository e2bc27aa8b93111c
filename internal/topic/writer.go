package topic

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/google/uuid"

	"github.com/kode4food/courier/closer"
	"github.com/kode4food/courier/message"
	"github.com/kode4food/courier/topic"
	"github.com/kode4food/courier/topic/overflow"
)

type writer struct {
	closer.Closer
	id       uuid.UUID
	registry *Registry
	entry    *entry
}

func makeWriter(r *Registry, e *entry) *writer {
	id := uuid.New()
	res := &writer{
		id:       id,
		registry: r,
		entry:    e,
		Closer: makeCloser(func() {
			r.removeWriter(e, id)
		}),
	}
	runtime.SetFinalizer(res, writerDebugFinalizer)
	return res
}

func (w *writer) ID() uuid.UUID {
	return w.id
}

func (w *writer) Topic() string {
	return w.entry.name
}

func (w *writer) MatchedReaders() int {
	return w.registry.readerCount(w.entry)
}

// Publish copies the message into the buffer of every Reader in a snapshot
// of the Topic's membership. Either every Reader admits the message or none
// of them is touched
func (w *writer) Publish(senderID string, seq int64) error {
	if err := w.check(); err != nil {
		return err
	}
	if err := message.Validate(senderID, seq); err != nil {
		return err
	}

	readers := w.registry.snapshot(w.entry)
	msg := message.Message{
		SenderID:  senderID,
		Sequence:  seq,
		CreatedAt: w.registry.tick(),
	}
	return w.deliver(readers, msg)
}

func (w *writer) check() error {
	if closer.IsClosed(w) {
		return topic.ErrClosed
	}
	if w.entry.torn.Load() {
		return fmt.Errorf("%w: %q", topic.ErrUnknownTopic, w.entry.name)
	}
	return nil
}

// deliver locks the Readers in registration order, which is the only order
// in which more than one Reader lock is ever held
func (w *writer) deliver(readers []*reader, msg message.Message) error {
	for _, rd := range readers {
		rd.mu.Lock()
	}
	actions, err := w.admit(readers)
	if err != nil {
		unlockReaders(readers)
		return err
	}

	var appended, dispatch []*reader
	for i, rd := range readers {
		if rd.closed || !rd.buffer.push(msg, actions[i]) {
			continue
		}
		appended = append(appended, rd)
		if rd.markPending() {
			dispatch = append(dispatch, rd)
		}
	}
	unlockReaders(readers)

	for _, rd := range appended {
		rd.observers.notify()
	}
	for _, rd := range dispatch {
		w.registry.dispatcher.enqueue(notification{reader: rd})
	}
	return nil
}

// admit must be called with every Reader lock held
func (w *writer) admit(readers []*reader) ([]overflow.Action, error) {
	res := make([]overflow.Action, len(readers))
	for i, rd := range readers {
		if rd.closed {
			res[i] = overflow.Discard
			continue
		}
		res[i] = rd.buffer.admit()
		if res[i] == overflow.Refuse {
			rd.buffer.dropped++
			return nil, fmt.Errorf("%w: reader %s on %q",
				topic.ErrReaderBufferFull, rd.id, w.entry.name,
			)
		}
	}
	return res, nil
}

func unlockReaders(readers []*reader) {
	for _, rd := range readers {
		rd.mu.Unlock()
	}
}

func writerDebugFinalizer(w *writer) {
	select {
	case <-w.IsClosed():
	default:
		slog.Debug("writer not closed before garbage collection",
			"id", w.id, "topic", w.entry.name,
		)
	}
}
