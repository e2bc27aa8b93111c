package topic

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kode4food/courier/closer"
	"github.com/kode4food/courier/topic"
	"github.com/kode4food/courier/topic/config"
)

type (
	// Registry is the internal implementation of a topic.Registry
	Registry struct {
		closer.Closer
		config     config.Config
		dispatcher *dispatcher
		topics     map[string]*entry
		mu         sync.RWMutex
		seq        uint64
		clock      atomic.Uint64
		closed     bool
	}

	// entry tracks the membership of a single Topic. The readers slice is
	// replaced rather than mutated, so a publish can iterate a snapshot
	entry struct {
		name    string
		writers map[uuid.UUID]uint64
		readers []*reader
		torn    atomic.Bool
	}
)

// MaxTopicNameLength is the longest Topic name a Registry will accept
const MaxTopicNameLength = 255

// Make instantiates a new internal Registry instance
func Make(o ...config.Option) (*Registry, error) {
	cfg, err := config.Make(o...)
	if err != nil {
		return nil, err
	}
	r := &Registry{
		config:     cfg,
		topics:     map[string]*entry{},
		dispatcher: startDispatcher(),
	}
	r.Closer = makeCloser(r.teardown)
	return r, nil
}

// OpenWriter binds a new Writer to the named Topic, creating the Topic if
// necessary. Every Reader on the Topic observes the new match
func (r *Registry) OpenWriter(name string) (topic.Writer, error) {
	if err := ValidateTopicName(name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, topic.ErrClosed
	}
	e := r.resolve(name)
	w := makeWriter(r, e)
	e.writers[w.id] = r.nextSeq()
	r.matchReaders(e, 1)
	r.config.Logger.Debug("writer opened", "topic", name, "id", w.id)
	return w, nil
}

// OpenReader binds a new Reader to the named Topic, creating the Topic if
// necessary. The Reader starts matched to the Topic's current Writers
func (r *Registry) OpenReader(
	name string, o ...config.Option,
) (topic.Reader, error) {
	if err := ValidateTopicName(name); err != nil {
		return nil, err
	}
	cfg, err := config.Apply(r.config, o...)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, topic.ErrClosed
	}
	e := r.resolve(name)
	rd := makeReader(r, e, cfg, r.nextSeq())
	rd.matchedWriters.Store(int64(len(e.writers)))
	e.readers = append(slices.Clip(e.readers), rd)
	r.config.Logger.Debug("reader opened",
		"topic", name, "id", rd.id, "seq", rd.seq,
	)
	return rd, nil
}

// Lookup describes the named Topic if it is registered
func (r *Registry) Lookup(name string) (topic.Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.topics[name]; ok {
		return topic.Info{
			Name:    e.name,
			Writers: len(e.writers),
			Readers: len(e.readers),
		}, nil
	}
	return topic.Info{}, fmt.Errorf("%w: %q", topic.ErrUnknownTopic, name)
}

// Topics returns the sorted names of all registered Topics
func (r *Registry) Topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.topics))
}

func (r *Registry) resolve(name string) *entry {
	if e, ok := r.topics[name]; ok {
		return e
	}
	e := &entry{
		name:    name,
		writers: map[uuid.UUID]uint64{},
	}
	r.topics[name] = e
	return e
}

func (r *Registry) nextSeq() uint64 {
	r.seq++
	return r.seq
}

// tick advances the logical clock used to timestamp messages
func (r *Registry) tick() uint64 {
	return r.clock.Add(1)
}

// snapshot returns the Readers registered on a Topic at this instant. The
// slice must not be modified
func (r *Registry) snapshot(e *entry) []*reader {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return e.readers
}

func (r *Registry) readerCount(e *entry) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(e.readers)
}

// matchReaders must be called with the Registry lock held
func (r *Registry) matchReaders(e *entry, delta int) {
	count := len(e.writers)
	for _, rd := range e.readers {
		rd.matched(count, delta)
	}
}

func (r *Registry) removeWriter(e *entry, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := e.writers[id]; !ok {
		return
	}
	delete(e.writers, id)
	r.matchReaders(e, -1)
	r.collect(e)
	r.config.Logger.Debug("writer closed", "topic", e.name, "id", id)
}

func (r *Registry) removeReader(rd *reader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := rd.entry
	idx := slices.Index(e.readers, rd)
	if idx < 0 {
		return
	}
	e.readers = slices.Delete(slices.Clone(e.readers), idx, idx+1)
	r.collect(e)
	r.config.Logger.Debug("reader closed", "topic", e.name, "id", rd.id)
}

// collect must be called with the Registry lock held
func (r *Registry) collect(e *entry) {
	if len(e.writers) != 0 || len(e.readers) != 0 {
		return
	}
	if r.topics[e.name] == e {
		delete(r.topics, e.name)
	}
}

func (r *Registry) teardown() {
	r.mu.Lock()
	r.closed = true
	topics := r.topics
	r.topics = map[string]*entry{}
	var readers []*reader
	for _, e := range topics {
		e.torn.Store(true)
		readers = append(readers, e.readers...)
	}
	r.mu.Unlock()

	r.dispatcher.stop()
	for _, rd := range readers {
		rd.observers.notify()
	}
	r.config.Logger.Debug("registry closed", "topics", len(topics))
}

// ValidateTopicName reports whether name is acceptable to a Registry
func ValidateTopicName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is required", topic.ErrInvalidTopicName)
	case len(name) > MaxTopicNameLength:
		return fmt.Errorf("%w: name exceeds %d bytes",
			topic.ErrInvalidTopicName, MaxTopicNameLength,
		)
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: name is not valid UTF-8", topic.ErrInvalidTopicName)
	case strings.IndexFunc(name, isIllegalNameRune) >= 0:
		return fmt.Errorf("%w: %q contains whitespace or control characters",
			topic.ErrInvalidTopicName, name,
		)
	}
	return nil
}

func isIllegalNameRune(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsControl(r)
}
