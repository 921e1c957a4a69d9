// Package config provides runtime configuration for component runtimes
// built on this module: logging level, event transport selection, and
// event subject naming. Loaded from TOML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vinayprograms/componentkit/bus"
	"github.com/vinayprograms/componentkit/events"
	"github.com/vinayprograms/componentkit/logging"
)

// Config is the root runtime configuration.
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Bus     BusConfig     `toml:"bus"`
	Events  EventsConfig  `toml:"events"`
}

// LoggingConfig configures the console logger.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, or error.
	Level string `toml:"level"`
}

// BusConfig selects and configures the event transport.
type BusConfig struct {
	// Backend is "memory" or "nats".
	Backend string `toml:"backend"`

	// BufferSize for subscription channels.
	BufferSize int `toml:"buffer_size"`

	// URL is the NATS server URL. Used only by the nats backend.
	URL string `toml:"url"`

	// Name is the NATS client name.
	Name string `toml:"name"`

	// Token for token-based auth.
	Token string `toml:"token"`

	// User and Password for basic auth.
	User     string `toml:"user"`
	Password string `toml:"password"`

	// ReconnectWaitSeconds between reconnection attempts.
	ReconnectWaitSeconds int `toml:"reconnect_wait_seconds"`

	// MaxReconnects caps reconnection attempts. -1 = unlimited.
	MaxReconnects int `toml:"max_reconnects"`

	// ConnectTimeoutSeconds for the initial connection.
	ConnectTimeoutSeconds int `toml:"connect_timeout_seconds"`
}

// EventsConfig configures lifecycle event publication.
type EventsConfig struct {
	// SubjectPrefix for bus subjects. Defaults to events.SubjectPrefix.
	SubjectPrefix string `toml:"subject_prefix"`
}

const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
)

// Default returns configuration with sensible defaults: info-level logging
// and an in-memory bus.
func Default() Config {
	natsDefaults := bus.DefaultNATSConfig()
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Bus: BusConfig{
			Backend:               BackendMemory,
			BufferSize:            natsDefaults.BufferSize,
			URL:                   natsDefaults.URL,
			ReconnectWaitSeconds:  int(natsDefaults.ReconnectWait / time.Second),
			MaxReconnects:         natsDefaults.MaxReconnects,
			ConnectTimeoutSeconds: int(natsDefaults.ConnectTimeout / time.Second),
		},
		Events: EventsConfig{SubjectPrefix: events.SubjectPrefix},
	}
}

// LoadFile loads configuration from a TOML file. Fields absent from the
// file keep their defaults.
func LoadFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(content)
}

// Parse parses TOML configuration over the defaults.
func Parse(content []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	switch c.Bus.Backend {
	case BackendMemory, BackendNATS:
	default:
		return fmt.Errorf("unknown bus backend %q", c.Bus.Backend)
	}

	if c.Bus.Backend == BackendNATS && c.Bus.URL == "" {
		return fmt.Errorf("nats backend requires a url")
	}
	return nil
}

// LogLevel returns the configured logging level.
func (c *Config) LogLevel() logging.Level {
	switch c.Logging.Level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// NewLogger creates a logger at the configured level.
func (c *Config) NewLogger() *logging.Logger {
	log := logging.New()
	log.SetLevel(c.LogLevel())
	return log
}

// NewBus creates the configured message bus.
func (c *Config) NewBus() (bus.MessageBus, error) {
	base := bus.Config{BufferSize: c.Bus.BufferSize}

	switch c.Bus.Backend {
	case BackendMemory:
		return bus.NewMemoryBus(base), nil

	case BackendNATS:
		return bus.NewNATSBus(bus.NATSConfig{
			Config:         base,
			URL:            c.Bus.URL,
			Name:           c.Bus.Name,
			Token:          c.Bus.Token,
			User:           c.Bus.User,
			Password:       c.Bus.Password,
			ReconnectWait:  time.Duration(c.Bus.ReconnectWaitSeconds) * time.Second,
			MaxReconnects:  c.Bus.MaxReconnects,
			ConnectTimeout: time.Duration(c.Bus.ConnectTimeoutSeconds) * time.Second,
		})

	default:
		return nil, fmt.Errorf("unknown bus backend %q", c.Bus.Backend)
	}
}

// NewNotifier creates a bus-backed notifier on the given bus with the
// configured subject prefix.
func (c *Config) NewNotifier(mb bus.MessageBus) *events.BusNotifier {
	return events.NewBusNotifier(mb, c.Events.SubjectPrefix)
}
