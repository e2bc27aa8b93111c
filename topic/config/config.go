package config

import (
	"log/slog"

	"github.com/kode4food/courier/topic/overflow"
)

type (
	// Config conveys the properties of a Registry or Reader that one can
	// configure using Options
	Config struct {
		Overflow    overflow.Policy
		Logger      *slog.Logger
		Diagnostics DiagnosticsFunc
		Capacity    int
	}

	// Option applies an option to a configuration instance
	Option func(*Config) error

	// DiagnosticsFunc receives errors that occur on the delivery path, such
	// as a panicking listener. They are never returned to a publisher
	DiagnosticsFunc func(error)
)

// Defaults
const (
	DefaultCapacity = 0
)

// Apply layers the provided Options over a base Config. Conflicts are only
// detected between the Options of a single call, so a Reader may override
// the overflow policy that its Registry established. A Reader that bounds its
// buffer under an unbounded base without naming a policy gets the default
// policy for bounded buffers
func Apply(base Config, o ...Option) (Config, error) {
	res := base
	res.Overflow = nil
	for _, opt := range o {
		if err := opt(&res); err != nil {
			return Config{}, err
		}
	}
	if res.Overflow == nil && !rebounded(base, res) {
		res.Overflow = base.Overflow
	}
	return res, Defaults(&res)
}

// Make returns a Config built from defaults and the provided Options
func Make(o ...Option) (Config, error) {
	return Apply(Config{}, o...)
}

// rebounded reports whether res bounds a buffer that base left unbounded
func rebounded(base, res Config) bool {
	return base.Overflow == overflow.Unbounded &&
		res.Capacity > 0 && res.Capacity != base.Capacity
}
