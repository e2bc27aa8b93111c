package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/kode4food/courier/topic/overflow"
)

var (
	ErrOverflowAlreadySet = errors.New("overflow policy already set")
	ErrInvalidCapacity    = errors.New("invalid buffer capacity")
	ErrNilLogger          = errors.New("logger must not be nil")
)

// Defaults applies the expected defaults to any unset values. A bounded
// buffer with no explicit overflow policy drops its oldest messages
func Defaults(c *Config) error {
	if c.Overflow == nil {
		if c.Capacity > 0 {
			c.Overflow = overflow.DropOldest
		} else {
			c.Overflow = overflow.Unbounded
		}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// Capacity bounds each Reader buffer to n messages. Zero means unbounded
func Capacity(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidCapacity, n)
		}
		c.Capacity = n
		return nil
	}
}

// OverflowPolicy sets the policy a bounded Reader buffer applies once full
func OverflowPolicy(p overflow.Policy) Option {
	return func(c *Config) error {
		if c.Overflow != nil {
			return ErrOverflowAlreadySet
		}
		c.Overflow = p
		return nil
	}
}

// Unbounded ignores capacity entirely
var Unbounded = OverflowPolicy(overflow.Unbounded)

// DropOldest evicts the oldest buffered message to make room for a new one
var DropOldest = OverflowPolicy(overflow.DropOldest)

// DropNewest discards incoming messages while the buffer is full
var DropNewest = OverflowPolicy(overflow.DropNewest)

// RejectPublish fails the entire publish when any Reader buffer is full
var RejectPublish = OverflowPolicy(overflow.Reject)

// Logger sets the structured logger used for diagnostics
func Logger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return ErrNilLogger
		}
		c.Logger = l
		return nil
	}
}

// Diagnostics registers a function that receives delivery-path errors
func Diagnostics(fn DiagnosticsFunc) Option {
	return func(c *Config) error {
		c.Diagnostics = fn
		return nil
	}
}
