// Package pingpong implements the example applications built on courier: a
// pinger and ponger pair driven by wait sets, and a daemon and responder pair
// driven by listeners
package pingpong

import (
	"context"
	"fmt"
	"time"

	"github.com/kode4food/courier"
	"github.com/kode4food/courier/topic"
)

// endpoints are the handles an application holds for the lifetime of Run
type endpoints struct {
	writer topic.Writer
	reader topic.Reader
}

// open binds a Writer to out and a Reader to in. On error nothing is left
// open
func open(reg topic.Registry, out, in string) (*endpoints, error) {
	w, err := reg.OpenWriter(out)
	if err != nil {
		return nil, fmt.Errorf("open writer on %q: %w", out, err)
	}
	r, err := reg.OpenReader(in)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("open reader on %q: %w", in, err)
	}
	return &endpoints{writer: w, reader: r}, nil
}

// waitSet returns a WaitSet with the Reader's condition attached
func (e *endpoints) waitSet() (topic.WaitSet, error) {
	ws := courier.NewWaitSet()
	if err := ws.Attach(e.reader.Condition()); err != nil {
		ws.Close()
		return nil, err
	}
	return ws, nil
}

func (e *endpoints) Close() {
	e.reader.Close()
	e.writer.Close()
}

// sleep waits for d and reports false if the Context finished first
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
