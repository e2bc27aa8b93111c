package viewmodel_test

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/courier/internal/viewmodel"
)

func fixedClock() func() time.Time {
	at := time.Date(2024, 5, 1, 9, 3, 7, 0, time.Local)
	return func() time.Time { return at }
}

func TestInitialState(t *testing.T) {
	as := assert.New(t)
	m := viewmodel.New(0, nil)
	as.Equal(viewmodel.StatusDisconnected, m.Status())
	as.Empty(m.Messages())
	as.Equal(0, m.Writers())
}

func TestStatusTransitions(t *testing.T) {
	as := assert.New(t)
	m := viewmodel.New(10, fixedClock())

	m.Started()
	as.Equal(viewmodel.StatusWaiting, m.Status())

	m.SetWriters(1)
	as.Equal("Connected (1 writer)", m.Status())
	as.Equal(1, m.Writers())

	m.SetWriters(2)
	as.Equal("Connected (2 writer)", m.Status())

	m.SetWriters(0)
	as.Equal(viewmodel.StatusDaemonDisconnected, m.Status())

	as.Equal([]string{
		"09:03:07 - Daemon disconnected!",
		"09:03:07 - Daemon connected! (2 writer)",
		"09:03:07 - Daemon connected! (1 writer)",
		"09:03:07 - Started. Waiting for Daemon...",
	}, m.Messages())

	m.Failed(errors.New("boom"))
	as.Equal("Error: boom", m.Status())
}

func TestLogLimit(t *testing.T) {
	as := assert.New(t)
	m := viewmodel.New(viewmodel.DefaultLimit, fixedClock())

	for i := 1; i <= 60; i++ {
		m.Logf("entry %d", i)
	}
	msgs := m.Messages()
	as.Len(msgs, viewmodel.DefaultLimit)
	as.Equal("09:03:07 - entry 60", msgs[0])
	as.Equal(fmt.Sprintf("09:03:07 - entry %d", 60-viewmodel.DefaultLimit+1),
		msgs[len(msgs)-1],
	)
}

func TestMessagesIsCopy(t *testing.T) {
	as := assert.New(t)
	m := viewmodel.New(5, fixedClock())
	m.Log("one")
	msgs := m.Messages()
	msgs[0] = "changed"
	as.Equal("09:03:07 - one", m.Messages()[0])
}

func TestSubscribe(t *testing.T) {
	as := assert.New(t)
	m := viewmodel.New(5, nil)

	var calls atomic.Int32
	cancel := m.Subscribe(func() {
		calls.Add(1)
		_ = m.Status()
	})
	m.Log("one")
	m.SetWriters(1)
	as.Equal(int32(2), calls.Load())

	cancel()
	m.Log("two")
	as.Equal(int32(2), calls.Load())
}

func TestConcurrentUpdates(t *testing.T) {
	as := assert.New(t)
	m := viewmodel.New(20, nil)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				m.Logf("%d/%d", i, j)
				_ = m.Messages()
			}
		}()
	}
	wg.Wait()
	as.Len(m.Messages(), 20)
}
