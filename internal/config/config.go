// Package config handles loading and validating configuration from
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the launch monitor.
type Config struct {
	// Solana endpoints
	RPCURL string
	WSURL  string

	// Watched programs (token program plus AMM program by default)
	WatchedPrograms []string

	// Stream tuning
	MaxReconnectAttempts int // 0 retries forever
	ReconnectInterval    time.Duration
	KeepAliveInterval    time.Duration

	// Poller tuning
	PollInterval   time.Duration
	ScanPageSize   int
	ScanMaxRecords int

	// Listing feed (optional; empty disables the poller)
	ListingURL string

	// Dedup tuning
	MaxTracked int
	TrimSize   int

	// Filter preset file (optional YAML)
	FilterPresetPath string

	// Metrics
	MetricsPort int
}

// Default watched programs.
const (
	TokenProgram = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AMMProgram   = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
)

// Load reads configuration from environment variables with fallback to a
// .env file. Priority order: environment variables > .env file > defaults.
func Load() (*Config, error) {
	// Attempt to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		RPCURL: getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		WSURL:  getEnv("SOLANA_WS_URL", "wss://api.mainnet-beta.solana.com"),

		WatchedPrograms: []string{
			getEnv("TOKEN_PROGRAM_ID", TokenProgram),
			getEnv("AMM_PROGRAM_ID", AMMProgram),
		},

		MaxReconnectAttempts: getEnvInt("MAX_RECONNECT_ATTEMPTS", 0),
		ReconnectInterval:    time.Duration(getEnvInt("RECONNECT_INTERVAL_SECONDS", 5)) * time.Second,
		KeepAliveInterval:    time.Duration(getEnvInt("KEEPALIVE_INTERVAL_SECONDS", 30)) * time.Second,

		PollInterval:   time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 60)) * time.Second,
		ScanPageSize:   getEnvInt("SCAN_PAGE_SIZE", 100),
		ScanMaxRecords: getEnvInt("SCAN_MAX_RECORDS", 500),

		ListingURL: getEnv("LISTING_URL", ""),

		MaxTracked: getEnvInt("DEDUP_MAX_TRACKED", 1000),
		TrimSize:   getEnvInt("DEDUP_TRIM_SIZE", 500),

		FilterPresetPath: getEnv("FILTER_PRESET_PATH", ""),

		MetricsPort: getEnvInt("METRICS_PORT", 9090),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set and valid.
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("SOLANA_RPC_URL is required")
	}

	if c.WSURL == "" {
		return fmt.Errorf("SOLANA_WS_URL is required")
	}

	if c.MaxReconnectAttempts < 0 {
		return fmt.Errorf("MAX_RECONNECT_ATTEMPTS must be >= 0")
	}

	if c.ReconnectInterval <= 0 {
		return fmt.Errorf("RECONNECT_INTERVAL_SECONDS must be positive")
	}

	if c.KeepAliveInterval <= 0 {
		return fmt.Errorf("KEEPALIVE_INTERVAL_SECONDS must be positive")
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL_SECONDS must be positive")
	}

	if c.ScanPageSize < 1 {
		return fmt.Errorf("SCAN_PAGE_SIZE must be at least 1")
	}

	if c.MaxTracked < 1 {
		return fmt.Errorf("DEDUP_MAX_TRACKED must be at least 1")
	}

	if c.TrimSize < 1 || c.TrimSize > c.MaxTracked {
		return fmt.Errorf("DEDUP_TRIM_SIZE must be between 1 and DEDUP_MAX_TRACKED")
	}

	if c.MetricsPort < 1 || c.MetricsPort > 65535 {
		return fmt.Errorf("METRICS_PORT must be between 1 and 65535")
	}

	return nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer or returns a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
