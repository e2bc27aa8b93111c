package topic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kode4food/courier/closer"
	"github.com/kode4food/courier/message"
	"github.com/kode4food/courier/topic/config"
)

type (
	// Registry owns the mapping of Topic names to their registered Writers
	// and Readers. Topics are created on first reference and removed once
	// their last Writer and Reader are closed
	Registry interface {
		closer.Closer

		// OpenWriter binds a new Writer to the named Topic
		OpenWriter(name string) (Writer, error)

		// OpenReader binds a new Reader to the named Topic. Options override
		// the Registry's configuration for this Reader only
		OpenReader(name string, o ...config.Option) (Reader, error)

		// Lookup describes the named Topic if it is registered
		Lookup(name string) (Info, error)

		// Topics returns the sorted names of all registered Topics
		Topics() []string
	}

	// Writer is bound to a single Topic and publishes messages to every
	// Reader currently registered on that Topic
	Writer interface {
		closer.Closer

		// ID returns the unique identifier of this Writer
		ID() uuid.UUID

		// Topic returns the name of the Topic this Writer is bound to
		Topic() string

		// Publish validates and fans a message out to the buffer of every
		// Reader registered on the Topic. It never blocks
		Publish(senderID string, seq int64) error

		// MatchedReaders returns the number of Readers on the Topic
		MatchedReaders() int
	}

	// Reader is bound to a single Topic and buffers delivered messages until
	// they are taken
	Reader interface {
		closer.Closer

		// ID returns the unique identifier of this Reader
		ID() uuid.UUID

		// Topic returns the name of the Topic this Reader is bound to
		Topic() string

		// Take drains and returns the entire buffer without blocking
		Take() ([]message.Message, error)

		// WaitAndTake blocks until data is buffered or the timeout elapses
		// and then drains the buffer. Infinite waits without a timeout
		WaitAndTake(timeout time.Duration) ([]message.Message, error)

		// SetListener replaces the Reader's Listener. The zero Listener
		// removes any registered callbacks
		SetListener(Listener) error

		// OnData registers a data listener that takes each batch and calls
		// fn once per message, in buffer order
		OnData(fn func(message.Message)) error

		// OnMatchChanged registers a match listener
		OnMatchChanged(fn func(current, delta int)) error

		// Condition returns the read condition of this Reader, triggered
		// whenever its buffer is non-empty
		Condition() Condition

		// MatchedWriters returns the number of Writers on the Topic
		MatchedWriters() int

		// Stats returns counters describing the Reader's buffer
		Stats() Stats
	}

	// Listener is a set of independently optional callbacks. They are always
	// invoked by the dispatcher, never by the publishing goroutine
	Listener struct {
		DataAvailable func(Reader)
		MatchChanged  func(Reader, MatchStatus)
	}

	// MatchStatus describes the number of Writers matched to a Reader and
	// the change that produced it
	MatchStatus struct {
		Current int
		Delta   int
	}

	// Condition is attached to a WaitSet and is triggered when its Reader
	// has buffered data
	Condition interface {
		Reader() Reader
		Triggered() bool
	}

	// WaitSet blocks a single goroutine until at least one of its attached
	// Conditions is triggered. Concurrent Waits are rejected
	WaitSet interface {
		closer.Closer
		Attach(Condition) error
		Detach(Condition) error
		Conditions() []Condition
		Wait(timeout time.Duration) ([]Condition, error)
		WaitContext(ctx context.Context) ([]Condition, error)
	}

	// Info describes a registered Topic
	Info struct {
		Name    string
		Writers int
		Readers int
	}

	// Stats describes the buffer of a Reader
	Stats struct {
		Buffered  uint64
		Delivered uint64
		Dropped   uint64
	}
)

// Infinite is the timeout that waits without limit
const Infinite time.Duration = -1

var (
	ErrUnknownTopic         = errors.New("unknown topic")
	ErrInvalidTopicName     = errors.New("invalid topic name")
	ErrClosed               = errors.New("handle closed")
	ErrWaitSetMisuse        = errors.New("wait set already in use by a waiter")
	ErrNoConditions         = errors.New("wait set has no attached conditions")
	ErrConditionNotAttached = errors.New("condition not attached")
	ErrForeignCondition     = errors.New("condition not created by this package")
	ErrReaderBufferFull     = errors.New("reader buffer full")
	ErrListenerPanic        = errors.New("listener panicked")
)

// IsZero reports whether this Listener registers no callbacks
func (l Listener) IsZero() bool {
	return l.DataAvailable == nil && l.MatchChanged == nil
}
