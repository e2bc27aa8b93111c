package overflow

import (
	"errors"
	"fmt"
)

type (
	// Policy describes and implements what a bounded Reader buffer does with
	// an incoming message once it is at capacity
	Policy interface {
		Admit(*Statistics) Action
		Name() string
	}

	// Action is the decision a Policy makes for one incoming message
	Action int

	// Statistics provides just enough information about a Reader buffer to
	// be useful to a Policy
	Statistics struct {
		Buffered int
		Capacity int
	}

	unbounded  struct{}
	dropOldest struct{}
	dropNewest struct{}
	reject     struct{}
)

// Action values
const (
	Append Action = iota
	EvictOldest
	Discard
	Refuse
)

// Policy names, as accepted by Parse
const (
	UnboundedName  = "unbounded"
	DropOldestName = "drop-oldest"
	DropNewestName = "drop-newest"
	RejectName     = "reject"
)

var (
	Unbounded  Policy = unbounded{}
	DropOldest Policy = dropOldest{}
	DropNewest Policy = dropNewest{}
	Reject     Policy = reject{}
)

var (
	ErrUnknownPolicy = errors.New("unknown overflow policy")
)

// Parse returns the Policy registered under the given name
func Parse(name string) (Policy, error) {
	switch name {
	case UnboundedName:
		return Unbounded, nil
	case DropOldestName:
		return DropOldest, nil
	case DropNewestName:
		return DropNewest, nil
	case RejectName:
		return Reject, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// IsFull reports whether a buffer described by these Statistics has reached
// its capacity. A zero capacity is never full
func (s *Statistics) IsFull() bool {
	return s.Capacity > 0 && s.Buffered >= s.Capacity
}

func (unbounded) Admit(*Statistics) Action {
	return Append
}

func (unbounded) Name() string {
	return UnboundedName
}

func (dropOldest) Admit(s *Statistics) Action {
	if s.IsFull() {
		return EvictOldest
	}
	return Append
}

func (dropOldest) Name() string {
	return DropOldestName
}

func (dropNewest) Admit(s *Statistics) Action {
	if s.IsFull() {
		return Discard
	}
	return Append
}

func (dropNewest) Name() string {
	return DropNewestName
}

func (reject) Admit(s *Statistics) Action {
	if s.IsFull() {
		return Refuse
	}
	return Append
}

func (reject) Name() string {
	return RejectName
}

func (a Action) String() string {
	switch a {
	case Append:
		return "append"
	case EvictOldest:
		return "evict-oldest"
	case Discard:
		return "discard"
	case Refuse:
		return "refuse"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}
