package topic

import (
	"sync"

	"github.com/kode4food/courier/closer"
)

// Closer closes its channel exactly once, invoking onClose on the goroutine
// that wins the race. Every later call is a no-op
type Closer struct {
	closed  chan struct{}
	onClose func()
	once    sync.Once
}

func makeCloser(onClose func()) closer.Closer {
	return &Closer{
		closed:  make(chan struct{}),
		onClose: onClose,
	}
}

func (c *Closer) Close() {
	c.once.Do(func() {
		close(c.closed)
		if c.onClose != nil {
			c.onClose()
		}
	})
}

func (c *Closer) IsClosed() <-chan struct{} {
	return c.closed
}
