package server

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces the server variables. Each field also falls back to
// its unprefixed name, so PORT works on hosting platforms that set it.
const envPrefix = "xml2postman"

// Config holds the HTTP API settings.
type Config struct {
	Host            string        `envconfig:"HOST"`
	Port            int           `envconfig:"PORT" default:"3000"`
	BodyLimit       string        `envconfig:"BODY_LIMIT" default:"110M"`
	MaxFiles        int           `envconfig:"MAX_FILES" default:"10"`
	MaxFileSize     int64         `envconfig:"MAX_FILE_SIZE" default:"10485760"`
	MaxDepth        int           `envconfig:"MAX_DEPTH" default:"512"`
	Concurrency     int           `envconfig:"CONCURRENCY" default:"4"`
	SamplesDir      string        `envconfig:"SAMPLES_DIR"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
}

// DefaultConfig returns the settings used when no environment is set.
func DefaultConfig() Config {
	return Config{
		Port:            3000,
		BodyLimit:       "110M",
		MaxFiles:        10,
		MaxFileSize:     10 << 20,
		MaxDepth:        512,
		Concurrency:     4,
		ShutdownTimeout: 5 * time.Second,
		LogLevel:        "info",
	}
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxFiles <= 0 {
		return fmt.Errorf("max files must be positive, got %d", c.MaxFiles)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.MaxFileSize)
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ParsedLogLevel maps LogLevel onto a slog level, defaulting to info.
func (c Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
