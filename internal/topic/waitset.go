package topic

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kode4food/courier/closer"
	"github.com/kode4food/courier/internal/sync/channel"
	"github.com/kode4food/courier/topic"
)

// WaitSet is the internal implementation of a topic.WaitSet. It supports a
// single waiter at a time; a second concurrent Wait, or an Attach or Detach
// during a Wait, fails with topic.ErrWaitSetMisuse
type WaitSet struct {
	closer.Closer
	id         uuid.UUID
	ready      *channel.ReadyWait
	conditions []*readCondition
	mu         sync.Mutex
	busy       atomic.Bool
}

// MakeWaitSet instantiates a new WaitSet with no attached Conditions
func MakeWaitSet() *WaitSet {
	w := &WaitSet{
		id:    uuid.New(),
		ready: channel.MakeReadyWait(),
	}
	w.Closer = makeCloser(w.shutdown)
	return w
}

// Attach adds a Condition to the WaitSet. Attaching a Condition twice has no
// additional effect
func (w *WaitSet) Attach(c topic.Condition) error {
	rc, err := w.acquire(c)
	if err != nil {
		return err
	}
	defer w.busy.Store(false)

	if err := rc.reader.status(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if slices.Contains(w.conditions, rc) {
		return nil
	}
	w.conditions = append(w.conditions, rc)
	rc.reader.observers.add(w.id, w.ready.Notify)
	return nil
}

// Detach removes a previously attached Condition
func (w *WaitSet) Detach(c topic.Condition) error {
	rc, err := w.acquire(c)
	if err != nil {
		return err
	}
	defer w.busy.Store(false)

	w.mu.Lock()
	defer w.mu.Unlock()
	idx := slices.Index(w.conditions, rc)
	if idx < 0 {
		return topic.ErrConditionNotAttached
	}
	w.conditions = slices.Delete(w.conditions, idx, idx+1)
	rc.reader.observers.remove(w.id)
	return nil
}

// Conditions returns the currently attached Conditions in attachment order
func (w *WaitSet) Conditions() []topic.Condition {
	w.mu.Lock()
	defer w.mu.Unlock()
	res := make([]topic.Condition, len(w.conditions))
	for i, c := range w.conditions {
		res[i] = c
	}
	return res
}

// Wait blocks until at least one attached Condition is triggered or the
// timeout elapses, in which case the result is empty. A negative timeout
// waits forever
func (w *WaitSet) Wait(timeout time.Duration) ([]topic.Condition, error) {
	if timeout < 0 {
		return w.WaitContext(context.Background())
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	res, err := w.WaitContext(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, nil
	}
	return res, err
}

// WaitContext blocks until at least one attached Condition is triggered or
// the Context is done. Conditions are evaluated before blocking and again
// after every wakeup, so data buffered before the call returns immediately.
// If a Reader closes while attached, its Condition is dropped and the waiter
// returns with an empty result
func (w *WaitSet) WaitContext(ctx context.Context) ([]topic.Condition, error) {
	if closer.IsClosed(w) {
		return nil, topic.ErrClosed
	}
	if !w.busy.CompareAndSwap(false, true) {
		return nil, topic.ErrWaitSetMisuse
	}
	defer w.busy.Store(false)

	for {
		triggered, released, remaining := w.evaluate()
		switch {
		case len(triggered) != 0:
			return triggered, nil
		case released:
			return nil, nil
		case remaining == 0 && ctx.Done() == nil:
			return nil, topic.ErrNoConditions
		}

		select {
		case <-w.ready.Wait():
			if closer.IsClosed(w) {
				return nil, topic.ErrClosed
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// evaluate drops the Conditions of closed Readers and collects those that
// are triggered
func (w *WaitSet) evaluate() ([]topic.Condition, bool, int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var triggered []topic.Condition
	released := false
	kept := w.conditions[:0]
	for _, rc := range w.conditions {
		if rc.reader.isReleased() {
			rc.reader.observers.remove(w.id)
			released = true
			continue
		}
		kept = append(kept, rc)
		if rc.Triggered() {
			triggered = append(triggered, rc)
		}
	}
	clear(w.conditions[len(kept):])
	w.conditions = kept
	return triggered, released, len(kept)
}

func (w *WaitSet) acquire(c topic.Condition) (*readCondition, error) {
	rc, ok := c.(*readCondition)
	if !ok {
		return nil, topic.ErrForeignCondition
	}
	if closer.IsClosed(w) {
		return nil, topic.ErrClosed
	}
	if !w.busy.CompareAndSwap(false, true) {
		return nil, topic.ErrWaitSetMisuse
	}
	return rc, nil
}

func (w *WaitSet) shutdown() {
	w.mu.Lock()
	for _, rc := range w.conditions {
		rc.reader.observers.remove(w.id)
	}
	w.conditions = nil
	w.mu.Unlock()
	w.ready.Close()
}
