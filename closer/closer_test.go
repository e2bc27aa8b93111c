package closer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/courier"
	"github.com/kode4food/courier/closer"
)

func TestIsClosed(t *testing.T) {
	as := assert.New(t)

	reg, err := courier.NewRegistry()
	as.NoError(err)
	w, _ := reg.OpenWriter("Ping")
	r, _ := reg.OpenReader("Ping")
	ws := courier.NewWaitSet()

	for _, c := range []closer.Closer{w, r, ws, reg} {
		as.False(closer.IsClosed(c))
		c.Close()
		as.True(closer.IsClosed(c))
	}
}

func TestIsClosedMultipleCalls(t *testing.T) {
	as := assert.New(t)

	reg, err := courier.NewRegistry()
	as.NoError(err)
	defer reg.Close()

	r, _ := reg.OpenReader("Pong")
	as.False(closer.IsClosed(r))
	as.False(closer.IsClosed(r))

	r.Close()
	r.Close()
	as.True(closer.IsClosed(r))
	as.True(closer.IsClosed(r))
}

func TestIsClosedWithChannelSelect(t *testing.T) {
	as := assert.New(t)

	ws := courier.NewWaitSet()
	select {
	case <-ws.IsClosed():
		as.Fail("Should not be closed yet")
	default:
	}

	ws.Close()
	select {
	case <-ws.IsClosed():
	default:
		as.Fail("Should be closed now")
	}
}
