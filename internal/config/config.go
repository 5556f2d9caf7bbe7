// Package config provides environment-driven configuration for the LifeOS server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// DefaultMaxImportBytes bounds import request bodies (32 MiB).
const DefaultMaxImportBytes int64 = 32 << 20

// Config holds all application configuration values.
type Config struct {
	DatabaseURL    Secret
	Port           string
	ListenHost     string
	MetricsPort    string
	CORSOrigins    []string
	LogLevel       string
	DBMaxConns     int32
	MaxImportBytes int64
	EnableEvents   bool
	EventQueueSize int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:  Secret(envOrDefault("DATABASE_URL", "")),
		Port:         envOrDefault("PORT", "3030"),
		ListenHost:   envOrDefault("LISTEN_HOST", "127.0.0.1"),
		MetricsPort:  envOrDefault("METRICS_PORT", "9091"),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		EnableEvents: envOrDefault("ENABLE_EVENTS", "true") == "true",
	}

	maxConns, err := strconv.Atoi(envOrDefault("DB_MAX_CONNS", "11"))
	if err != nil || maxConns < 2 || maxConns > 200 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be an integer between 2 and 200")
	}
	cfg.DBMaxConns = int32(maxConns) //nolint:gosec // bounded above.

	maxImport, err := strconv.ParseInt(envOrDefault("MAX_IMPORT_BYTES", strconv.FormatInt(DefaultMaxImportBytes, 10)), 10, 64)
	if err != nil || maxImport < 1024 {
		return nil, fmt.Errorf("MAX_IMPORT_BYTES must be an integer of at least 1024")
	}
	cfg.MaxImportBytes = maxImport

	queueSize, err := strconv.Atoi(envOrDefault("EVENT_QUEUE_SIZE", "256"))
	if err != nil || queueSize < 1 || queueSize > 65536 {
		return nil, fmt.Errorf("EVENT_QUEUE_SIZE must be an integer between 1 and 65536")
	}
	cfg.EventQueueSize = queueSize

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3002")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the metrics listen address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
