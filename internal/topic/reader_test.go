package topic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/courier/closer"
	"github.com/kode4food/courier/topic"
	"github.com/kode4food/courier/topic/config"
)

func TestEmptyTake(t *testing.T) {
	as := assert.New(t)
	reg := makeRegistry(t)

	r, _ := reg.OpenReader("Pong")
	defer r.Close()
	msgs, err := r.Take()
	as.NoError(err)
	as.Empty(msgs)
	as.Equal("Pong", r.Topic())
}

func TestReaderClosed(t *testing.T) {
	as := assert.New(t)
	reg := makeRegistry(t)

	w, _ := reg.OpenWriter("Ping")
	defer w.Close()
	r, _ := reg.OpenReader("Ping")
	as.NoError(w.Publish("app1", 1))

	r.Close()
	as.True(closer.IsClosed(r))
	_, err := r.Take()
	as.ErrorIs(err, topic.ErrClosed)
	_, err = r.WaitAndTake(0)
	as.ErrorIs(err, topic.ErrClosed)
	as.ErrorIs(r.SetListener(topic.Listener{}), topic.ErrClosed)
	as.Equal(uint64(0), r.Stats().Buffered)

	r.Close()
	as.True(closer.IsClosed(r)) // still closed
	as.NoError(w.Publish("app1", 2))
	as.Equal(0, w.MatchedReaders())
}

func TestWaitAndTakeTimeout(t *testing.T) {
	as := assert.New(t)
	reg := makeRegistry(t)

	r, _ := reg.OpenReader("Pong")
	defer r.Close()

	start := time.Now()
	msgs, err := r.WaitAndTake(shortWait)
	as.NoError(err)
	as.Empty(msgs)
	as.GreaterOrEqual(time.Since(start), shortWait)
	as.Less(time.Since(start), longWait)

	start = time.Now()
	msgs, err = r.WaitAndTake(0)
	as.NoError(err)
	as.Empty(msgs)
	as.Less(time.Since(start), shortWait)
}

func TestWaitAndTakePrompt(t *testing.T) {
	as := assert.New(t)
	reg := makeRegistry(t)

	w, _ := reg.OpenWriter("Pong")
	defer w.Close()
	r, _ := reg.OpenReader("Pong")
	defer r.Close()

	go func() {
		time.Sleep(shortWait)
		as.NoError(w.Publish("app2", 1))
	}()

	start := time.Now()
	msgs, err := r.WaitAndTake(10 * time.Second)
	as.NoError(err)
	as.Len(msgs, 1)
	as.Less(time.Since(start), 5*time.Second)
}

func TestWaitAndTakeAlreadyBuffered(t *testing.T) {
	as := assert.New(t)
	reg := makeRegistry(t)

	w, _ := reg.OpenWriter("Pong")
	defer w.Close()
	r, _ := reg.OpenReader("Pong")
	defer r.Close()
	as.NoError(w.Publish("app2", 1))

	msgs, err := r.WaitAndTake(topic.Infinite)
	as.NoError(err)
	as.Len(msgs, 1)
}

func TestWaitAndTakeReleasedByClose(t *testing.T) {
	as := assert.New(t)
	reg := makeRegistry(t)

	r, _ := reg.OpenReader("Pong")
	done := make(chan error)
	go func() {
		_, err := r.WaitAndTake(topic.Infinite)
		done <- err
	}()

	time.Sleep(shortWait)
	r.Close()

	select {
	case err := <-done:
		as.ErrorIs(err, topic.ErrClosed)
	case <-time.After(longWait):
		as.Fail("waiter was not released")
	}
}

func TestDropOldest(t *testing.T) {
	as := assert.New(t)
	reg := makeRegistry(t, config.Capacity(3))

	w, _ := reg.OpenWriter("Ping")
	defer w.Close()
	r, _ := reg.OpenReader("Ping")
	defer r.Close()

	for i := int64(1); i <= 5; i++ {
		as.NoError(w.Publish("app1", i))
	}
	msgs, _ := r.Take()
	as.Len(msgs, 3)
	as.Equal(int64(3), msgs[0].Sequence)
	as.Equal(int64(5), msgs[2].Sequence)
	as.Equal(topic.Stats{Delivered: 3, Dropped: 2}, r.Stats())
}

func TestDropNewest(t *testing.T) {
	as := assert.New(t)
	reg := makeRegistry(t)

	w, _ := reg.OpenWriter("Ping")
	defer w.Close()
	r, _ := reg.OpenReader("Ping", config.Capacity(2), config.DropNewest)
	defer r.Close()

	for i := int64(1); i <= 4; i++ {
		as.NoError(w.Publish("app1", i))
	}
	as.Equal(topic.Stats{Buffered: 2, Dropped: 2}, r.Stats())

	msgs, _ := r.Take()
	as.Equal(int64(1), msgs[0].Sequence)
	as.Equal(int64(2), msgs[1].Sequence)
}

func TestUnboundedIgnoresCapacity(t *testing.T) {
	as := assert.New(t)
	reg := makeRegistry(t, config.Capacity(1), config.Unbounded)

	w, _ := reg.OpenWriter("Ping")
	defer w.Close()
	r, _ := reg.OpenReader("Ping")
	defer r.Close()

	for i := int64(1); i <= 3; i++ {
		as.NoError(w.Publish("app1", i))
	}
	as.Equal(uint64(3), r.Stats().Buffered)
}
