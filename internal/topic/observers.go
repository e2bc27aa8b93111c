package topic

import (
	"sync"

	"github.com/google/uuid"
)

// observers manages a set of wakeup callbacks for a Reader. Callbacks must
// not block, as they are invoked by publishing goroutines
type observers struct {
	callbacks map[uuid.UUID]func()
	mu        sync.RWMutex
}

func makeObservers() *observers {
	return &observers{
		callbacks: map[uuid.UUID]func(){},
	}
}

func (o *observers) add(i uuid.UUID, cb func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.callbacks[i] = cb
}

func (o *observers) remove(i uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.callbacks, i)
}

func (o *observers) notify() {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, cb := range o.callbacks {
		cb()
	}
}
