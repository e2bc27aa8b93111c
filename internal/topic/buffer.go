package topic

import (
	"github.com/kode4food/courier/message"
	"github.com/kode4food/courier/topic/overflow"
)

// buffer is the FIFO message queue owned by a single Reader. It is only
// accessed while the Reader's lock is held
type buffer struct {
	policy    overflow.Policy
	entries   []message.Message
	capacity  int
	delivered uint64
	dropped   uint64
}

func makeBuffer(capacity int, policy overflow.Policy) *buffer {
	return &buffer{
		policy:   policy,
		capacity: capacity,
	}
}

func (b *buffer) admit() overflow.Action {
	return b.policy.Admit(&overflow.Statistics{
		Buffered: len(b.entries),
		Capacity: b.capacity,
	})
}

// push applies a previously admitted Action, reporting whether the message
// was appended
func (b *buffer) push(msg message.Message, a overflow.Action) bool {
	switch a {
	case overflow.Append:
		b.entries = append(b.entries, msg)
		return true
	case overflow.EvictOldest:
		b.entries[0] = message.Message{}
		b.entries = append(b.entries[1:], msg)
		b.dropped++
		return true
	default:
		b.dropped++
		return false
	}
}

func (b *buffer) drain() []message.Message {
	res := b.entries
	b.entries = nil
	b.delivered += uint64(len(res))
	return res
}

func (b *buffer) length() int {
	return len(b.entries)
}

func (b *buffer) reset() {
	b.entries = nil
}
