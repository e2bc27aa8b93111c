package overflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/courier/topic/overflow"
)

func TestParse(t *testing.T) {
	as := assert.New(t)

	for _, p := range []overflow.Policy{
		overflow.Unbounded,
		overflow.DropOldest,
		overflow.DropNewest,
		overflow.Reject,
	} {
		res, err := overflow.Parse(p.Name())
		as.NoError(err)
		as.Equal(p, res)
	}

	_, err := overflow.Parse("drop-everything")
	as.ErrorIs(err, overflow.ErrUnknownPolicy)
}

func TestAdmit(t *testing.T) {
	as := assert.New(t)

	room := &overflow.Statistics{Buffered: 1, Capacity: 2}
	full := &overflow.Statistics{Buffered: 2, Capacity: 2}
	unlimited := &overflow.Statistics{Buffered: 1000}

	as.Equal(overflow.Append, overflow.Unbounded.Admit(full))
	as.Equal(overflow.Append, overflow.DropOldest.Admit(room))
	as.Equal(overflow.EvictOldest, overflow.DropOldest.Admit(full))
	as.Equal(overflow.Discard, overflow.DropNewest.Admit(full))
	as.Equal(overflow.Refuse, overflow.Reject.Admit(full))
	as.Equal(overflow.Append, overflow.Reject.Admit(unlimited))
	as.Equal("evict-oldest", overflow.EvictOldest.String())
}
