// Package common provides shared utilities for FolioSync
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for FolioSync
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Sync        SyncConfig    `toml:"sync"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the data directory for the embedded store.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Brokerage BrokerageConfig `toml:"brokerage"`
}

// BrokerageConfig holds brokerage API configuration
type BrokerageConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`

	// ExchangeOffsetMinutes is the fixed UTC offset of the brokerage's local
	// exchange timezone, used for all date arguments sent upstream.
	ExchangeOffsetMinutes int `toml:"exchange_offset_minutes"`
}

// GetTimeout parses and returns the timeout duration
func (c *BrokerageConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// SyncConfig holds synchronization tuning parameters.
type SyncConfig struct {
	FullLookbackMonths        int `toml:"full_lookback_months"`
	IncrementalLookbackMonths int `toml:"incremental_lookback_months"`
	MaxChunkDays              int `toml:"max_chunk_days"`
	MaxRetries                int `toml:"max_retries"`
	ChunkDelayMS              int `toml:"chunk_delay_ms"`
	BatchSize                 int `toml:"batch_size"`
	BatchDelayMS              int `toml:"batch_delay_ms"`
	SnapshotRetention         int `toml:"snapshot_retention"`
	SchedulerInterval         string `toml:"scheduler_interval"`
}

// GetChunkDelay returns the inter-request delay between transaction chunks.
func (c *SyncConfig) GetChunkDelay() time.Duration {
	return time.Duration(c.ChunkDelayMS) * time.Millisecond
}

// GetBatchDelay returns the delay between bulk sync batches.
func (c *SyncConfig) GetBatchDelay() time.Duration {
	return time.Duration(c.BatchDelayMS) * time.Millisecond
}

// GetSchedulerInterval parses and returns the background sync interval.
func (c *SyncConfig) GetSchedulerInterval() time.Duration {
	d, err := time.ParseDuration(c.SchedulerInterval)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/foliosync",
		},
		Clients: ClientsConfig{
			Brokerage: BrokerageConfig{
				BaseURL:               "https://api.brokerage.example.com",
				RateLimit:             5,
				Timeout:               "30s",
				ExchangeOffsetMinutes: 600, // +10:00
			},
		},
		Sync: SyncConfig{
			FullLookbackMonths:        6,
			IncrementalLookbackMonths: 1,
			MaxChunkDays:              31,
			MaxRetries:                3,
			ChunkDelayMS:              500,
			BatchSize:                 2,
			BatchDelayMS:              1000,
			SnapshotRetention:         90,
			SchedulerInterval:         "6h",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIOSYNC_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FOLIOSYNC_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FOLIOSYNC_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FOLIOSYNC_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FOLIOSYNC_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if url := os.Getenv("FOLIOSYNC_BROKERAGE_URL"); url != "" {
		config.Clients.Brokerage.BaseURL = url
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
