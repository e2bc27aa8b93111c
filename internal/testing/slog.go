package testing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// LogHandler is a slog.Handler that records every enabled Record so tests
// can assert on diagnostics emitted from other goroutines
type LogHandler struct {
	records chan slog.Record
	level   slog.Leveler
	mu      sync.Mutex
	seen    []slog.Record
}

const logHandlerCap = 64

// NewLogHandler returns a LogHandler that records Debug level and above
func NewLogHandler() *LogHandler {
	return &LogHandler{
		records: make(chan slog.Record, logHandlerCap),
		level:   slog.LevelDebug,
	}
}

// NewLogger returns a Logger that writes to a new LogHandler
func NewLogger() (*slog.Logger, *LogHandler) {
	h := NewLogHandler()
	return slog.New(h), h
}

func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LogHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	h.seen = append(h.seen, r)
	h.mu.Unlock()
	select {
	case h.records <- r:
	default:
	}
	return nil
}

func (h *LogHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *LogHandler) WithGroup(_ string) slog.Handler {
	return h
}

// Await returns the first recorded message that satisfies the predicate, or
// false if none arrives before the timeout
func (h *LogHandler) Await(
	pred func(slog.Record) bool, timeout time.Duration,
) (slog.Record, bool) {
	deadline := time.After(timeout)
	for {
		select {
		case r := <-h.records:
			if pred(r) {
				return r, true
			}
		case <-deadline:
			return slog.Record{}, false
		}
	}
}

// Messages returns the message of every record seen so far
func (h *LogHandler) Messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	res := make([]string, len(h.seen))
	for i, r := range h.seen {
		res[i] = r.Message
	}
	return res
}

// Attr returns the value of the named attribute of a Record
func Attr(r slog.Record, key string) (slog.Value, bool) {
	var res slog.Value
	found := false
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			res = a.Value
			found = true
			return false
		}
		return true
	})
	return res, found
}
