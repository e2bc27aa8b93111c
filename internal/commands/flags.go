package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kode4food/courier"
	"github.com/kode4food/courier/internal/config"
	"github.com/kode4food/courier/topic"

	topiccfg "github.com/kode4food/courier/topic/config"
)

type Flags struct {
	LogLevel      string
	LogFile       string
	ConfigPath    string
	UniqueSenders bool

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "courier", "config.yaml")
}

// LoadConfig reads the configuration named by the flags and applies any
// flag-driven adjustments
func (f *Flags) LoadConfig() error {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if f.UniqueSenders {
		cfg.WithUniqueSenders(xid.New().String())
	}
	f.Config = cfg
	return nil
}

// validConfig returns the loaded configuration if it passes validation
func (f *Flags) validConfig() (*config.Config, error) {
	if f.Config == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	if err := f.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return f.Config, nil
}

// newRegistry creates a Registry configured from cfg. Delivery failures that
// never reach a publisher, such as listener panics, are logged
func newRegistry(cfg *config.Config, logger zerolog.Logger) (topic.Registry, error) {
	o, err := cfg.RegistryOptions()
	if err != nil {
		return nil, err
	}
	o = append(o, topiccfg.Diagnostics(func(err error) {
		logger.Error().Err(err).Msg("delivery failure")
	}))
	return courier.NewRegistry(o...)
}

// componentLogger returns a sub-logger of the global logger
func componentLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
