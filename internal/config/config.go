// Package config handles configuration loading and validation for the
// pingpong applications.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"

	"github.com/kode4food/courier/message"
	"github.com/kode4food/courier/topic/overflow"

	topiccfg "github.com/kode4food/courier/topic/config"

	internal "github.com/kode4food/courier/internal/topic"
)

// Config holds the application configuration.
type Config struct {
	Topics       Topics        `yaml:"topics"`
	Senders      Senders       `yaml:"senders"`
	Interval     time.Duration `yaml:"interval"`
	PongTimeout  time.Duration `yaml:"pong_timeout"`
	Rounds       int           `yaml:"rounds"` // 0 = run until stopped
	Reader       ReaderConfig  `yaml:"reader"`
	HistoryLimit int           `yaml:"history_limit"`
}

// Topics names the two topics every application exchanges messages on.
type Topics struct {
	Ping string `yaml:"ping"`
	Pong string `yaml:"pong"`
}

// Senders holds the sender identifier stamped on messages by each role.
type Senders struct {
	Pinger    string `yaml:"pinger"`
	Ponger    string `yaml:"ponger"`
	Daemon    string `yaml:"daemon"`
	Responder string `yaml:"responder"`
}

// ReaderConfig bounds the buffer of every reader the applications open.
type ReaderConfig struct {
	Capacity int    `yaml:"capacity"` // 0 = unbounded
	Overflow string `yaml:"overflow"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Topics: Topics{
			Ping: "Ping",
			Pong: "Pong",
		},
		Senders: Senders{
			Pinger:    "app1",
			Ponger:    "app2",
			Daemon:    "Daemon",
			Responder: "Monitor",
		},
		Interval:     time.Second,
		PongTimeout:  2 * time.Second,
		HistoryLimit: 50,
	}
}

// Load reads configuration from the given path. If configPath is empty or
// doesn't exist, returns defaults. The result is not validated.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Topics.Ping == "" {
		c.Topics.Ping = defaults.Topics.Ping
	}
	if c.Topics.Pong == "" {
		c.Topics.Pong = defaults.Topics.Pong
	}
	if c.Senders.Pinger == "" {
		c.Senders.Pinger = defaults.Senders.Pinger
	}
	if c.Senders.Ponger == "" {
		c.Senders.Ponger = defaults.Senders.Ponger
	}
	if c.Senders.Daemon == "" {
		c.Senders.Daemon = defaults.Senders.Daemon
	}
	if c.Senders.Responder == "" {
		c.Senders.Responder = defaults.Senders.Responder
	}
	if c.Interval == 0 {
		c.Interval = defaults.Interval
	}
	if c.PongTimeout == 0 {
		c.PongTimeout = defaults.PongTimeout
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = defaults.HistoryLimit
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if err := internal.ValidateTopicName(c.Topics.Ping); err != nil {
		errs = errs.Append("topics.ping", err)
	}
	if err := internal.ValidateTopicName(c.Topics.Pong); err != nil {
		errs = errs.Append("topics.pong", err)
	}
	if c.Topics.Ping == c.Topics.Pong {
		errs = errs.Append("topics.pong",
			fmt.Errorf("must differ from topics.ping %q", c.Topics.Ping),
		)
	}

	for _, s := range []struct{ field, id string }{
		{"senders.pinger", c.Senders.Pinger},
		{"senders.ponger", c.Senders.Ponger},
		{"senders.daemon", c.Senders.Daemon},
		{"senders.responder", c.Senders.Responder},
	} {
		if err := message.ValidateSender(s.id); err != nil {
			errs = errs.Append(s.field, err)
		}
	}

	if c.Interval <= 0 {
		errs = errs.Append("interval", fmt.Errorf("must be positive"))
	}
	if c.PongTimeout <= 0 {
		errs = errs.Append("pong_timeout", fmt.Errorf("must be positive"))
	}
	if c.Rounds < 0 {
		errs = errs.Append("rounds", fmt.Errorf("must not be negative"))
	}
	if c.HistoryLimit < 1 {
		errs = errs.Append("history_limit", fmt.Errorf("must be at least 1"))
	}
	if c.Reader.Capacity < 0 {
		errs = errs.Append("reader.capacity", fmt.Errorf("must not be negative"))
	}
	if c.Reader.Overflow != "" {
		if _, err := overflow.Parse(c.Reader.Overflow); err != nil {
			errs = errs.Append("reader.overflow", err)
		}
	}

	return errs.ToError()
}

// RegistryOptions translates the reader settings into Registry options.
func (c *Config) RegistryOptions() ([]topiccfg.Option, error) {
	res := []topiccfg.Option{topiccfg.Capacity(c.Reader.Capacity)}
	if c.Reader.Overflow != "" {
		p, err := overflow.Parse(c.Reader.Overflow)
		if err != nil {
			return nil, err
		}
		res = append(res, topiccfg.OverflowPolicy(p))
	}
	return res, nil
}

// WithUniqueSenders suffixes every sender identifier with id, so that several
// instances of the same application can be told apart.
func (c *Config) WithUniqueSenders(id string) {
	c.Senders.Pinger += "-" + id
	c.Senders.Ponger += "-" + id
	c.Senders.Daemon += "-" + id
	c.Senders.Responder += "-" + id
}
