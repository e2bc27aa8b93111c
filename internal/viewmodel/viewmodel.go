// Package viewmodel holds the observable state of the monitor: a connection
// status derived from matched writers and a bounded, newest-first message log
package viewmodel

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Model is safe for concurrent use. Observers are called after every change,
// on the goroutine that made it, and must not block
type Model struct {
	now       func() time.Time
	observers map[uuid.UUID]func()
	status    string
	messages  []string
	writers   int
	limit     int
	mu        sync.RWMutex
}

// Status values that do not carry a writer count
const (
	StatusDisconnected       = "Disconnected"
	StatusWaiting            = "Waiting for Daemon..."
	StatusDaemonDisconnected = "Daemon disconnected"
)

// DefaultLimit is the number of log entries kept when New is given no limit
const DefaultLimit = 50

const timestampLayout = "15:04:05"

// New returns a Model that keeps at most limit log entries. A nil clock uses
// time.Now
func New(limit int, now func() time.Time) *Model {
	if limit < 1 {
		limit = DefaultLimit
	}
	if now == nil {
		now = time.Now
	}
	return &Model{
		now:       now,
		observers: map[uuid.UUID]func(){},
		status:    StatusDisconnected,
		limit:     limit,
	}
}

// Status returns the current connection status line
func (m *Model) Status() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Writers returns the last reported matched writer count
func (m *Model) Writers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writers
}

// Messages returns a copy of the log, newest entry first
func (m *Model) Messages() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.messages)
}

// Subscribe registers fn to be called after every change. The returned
// function removes it
func (m *Model) Subscribe(fn func()) func() {
	id := uuid.New()
	m.mu.Lock()
	m.observers[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

// Started records that the monitor is up and waiting for a daemon
func (m *Model) Started() {
	m.update(func() {
		m.status = StatusWaiting
		m.prepend("Started. Waiting for Daemon...")
	})
}

// Failed records a startup failure in the status line
func (m *Model) Failed(err error) {
	m.update(func() {
		m.status = fmt.Sprintf("Error: %s", err)
	})
}

// SetWriters updates the status from the number of writers matched to the
// monitored topic
func (m *Model) SetWriters(count int) {
	m.update(func() {
		m.writers = count
		if count > 0 {
			m.status = fmt.Sprintf("Connected (%d writer)", count)
			m.prepend(fmt.Sprintf("Daemon connected! (%d writer)", count))
			return
		}
		m.status = StatusDaemonDisconnected
		m.prepend("Daemon disconnected!")
	})
}

// Log adds a timestamped entry to the top of the log, evicting the oldest
// entry once the limit is exceeded
func (m *Model) Log(msg string) {
	m.update(func() {
		m.prepend(msg)
	})
}

// Logf is Log with formatting
func (m *Model) Logf(format string, args ...any) {
	m.Log(fmt.Sprintf(format, args...))
}

// prepend must be called with the write lock held
func (m *Model) prepend(msg string) {
	entry := m.now().Format(timestampLayout) + " - " + msg
	m.messages = slices.Insert(m.messages, 0, entry)
	if len(m.messages) > m.limit {
		clear(m.messages[m.limit:])
		m.messages = m.messages[:m.limit]
	}
}

func (m *Model) update(fn func()) {
	m.mu.Lock()
	fn()
	callbacks := make([]func(), 0, len(m.observers))
	for _, cb := range m.observers {
		callbacks = append(callbacks, cb)
	}
	m.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}
