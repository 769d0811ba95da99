package config

import (
	"fmt"
	"time"
)

// Backend type names accepted by -backend.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds server configuration
type Config struct {
	// Server settings
	Port int
	Host string

	// Storage settings
	BackendType  string // "sqlite" or "memory"
	DatabasePath string

	// Reference data applied at startup (optional)
	SeedDirectory string
	SchemaPath    string

	// Ingestion limits
	MaxConcurrentIngests int64
	MaxUploadBytes       int64

	// Operational settings
	GracefulShutdownTimeout time.Duration
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.BackendType != BackendSQLite && c.BackendType != BackendMemory {
		return fmt.Errorf("backend must be %q or %q", BackendSQLite, BackendMemory)
	}

	if c.BackendType == BackendSQLite && c.DatabasePath == "" {
		return fmt.Errorf("database path required when backend is %q", BackendSQLite)
	}

	if c.MaxConcurrentIngests <= 0 {
		return fmt.Errorf("max concurrent ingests must be positive")
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	return nil
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Port:                    8080,
		Host:                    "0.0.0.0",
		BackendType:             BackendSQLite,
		DatabasePath:            "data/rollup.db",
		SchemaPath:              "schemas/refdata_v1.json",
		MaxConcurrentIngests:    4,
		MaxUploadBytes:          64 << 20,
		GracefulShutdownTimeout: 30 * time.Second,
	}
}
