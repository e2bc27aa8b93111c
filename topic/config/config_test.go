package config_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/courier/topic/config"
	"github.com/kode4food/courier/topic/overflow"
)

func TestDefaults(t *testing.T) {
	as := assert.New(t)

	c, err := config.Make()
	as.NoError(err)
	as.Equal(config.DefaultCapacity, c.Capacity)
	as.Equal(overflow.Unbounded, c.Overflow)
	as.NotNil(c.Logger)
	as.Nil(c.Diagnostics)

	c, err = config.Make(config.Capacity(10))
	as.NoError(err)
	as.Equal(overflow.DropOldest, c.Overflow)
}

func TestOverflowConflict(t *testing.T) {
	as := assert.New(t)

	_, err := config.Make(config.DropNewest, config.RejectPublish)
	as.ErrorIs(err, config.ErrOverflowAlreadySet)
}

func TestApplyOverridesBase(t *testing.T) {
	as := assert.New(t)

	base, err := config.Make(config.Capacity(4), config.RejectPublish)
	as.NoError(err)

	c, err := config.Apply(base, config.DropNewest)
	as.NoError(err)
	as.Equal(overflow.DropNewest, c.Overflow)
	as.Equal(4, c.Capacity)

	c, err = config.Apply(base)
	as.NoError(err)
	as.Equal(overflow.Reject, c.Overflow)
}

func TestApplyBoundsUnboundedBase(t *testing.T) {
	as := assert.New(t)

	base, err := config.Make()
	as.NoError(err)
	as.Equal(overflow.Unbounded, base.Overflow)

	c, err := config.Apply(base, config.Capacity(2))
	as.NoError(err)
	as.Equal(overflow.DropOldest, c.Overflow)

	c, err = config.Apply(base, config.Capacity(2), config.DropNewest)
	as.NoError(err)
	as.Equal(overflow.DropNewest, c.Overflow)
}

func TestInvalidOptions(t *testing.T) {
	as := assert.New(t)

	_, err := config.Make(config.Capacity(-1))
	as.ErrorIs(err, config.ErrInvalidCapacity)

	_, err = config.Make(config.Logger(nil))
	as.ErrorIs(err, config.ErrNilLogger)
}

func TestLoggerAndDiagnostics(t *testing.T) {
	as := assert.New(t)

	l := slog.New(slog.DiscardHandler)
	var seen error
	c, err := config.Make(
		config.Logger(l),
		config.Diagnostics(func(err error) { seen = err }),
	)
	as.NoError(err)
	as.Same(l, c.Logger)

	c.Diagnostics(assert.AnError)
	as.Equal(assert.AnError, seen)
}
