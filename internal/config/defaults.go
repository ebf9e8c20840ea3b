package config

import (
	"os"
	"strconv"
)

// DefaultBatchSize is the fact-row batch size for the batch loader mode.
const DefaultBatchSize = 5000

// DefaultConfig returns a Config with sensible defaults. Database settings
// honor the conventional PG* environment variables, so a host with a working
// psql setup needs no config file at all.
func DefaultConfig() *Config {
	return &Config{
		LogDir:     "logs",
		OutDir:     "warehouse_data",
		LoaderMode: LoaderCopy,
		BatchSize:  DefaultBatchSize,
		LogLevel:   "info",
		LogJSON:    false,
		Database: Database{
			Host:     envOr("PGHOST", "localhost"),
			Port:     envIntOr("PGPORT", 5432),
			Name:     envOr("PGDATABASE", "logward"),
			User:     envOr("PGUSER", "postgres"),
			Password: os.Getenv("PGPASSWORD"),
			SSLMode:  "disable",
		},
		Serve: Serve{
			Port: 8095,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
