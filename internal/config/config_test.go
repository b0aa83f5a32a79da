package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		RPCURL:            "https://api.mainnet-beta.solana.com",
		WSURL:             "wss://api.mainnet-beta.solana.com",
		WatchedPrograms:   []string{TokenProgram, AMMProgram},
		ReconnectInterval: 5 * time.Second,
		KeepAliveInterval: 30 * time.Second,
		PollInterval:      60 * time.Second,
		ScanPageSize:      100,
		ScanMaxRecords:    500,
		MaxTracked:        1000,
		TrimSize:          500,
		MetricsPort:       9090,
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.RPCURL == "" || cfg.WSURL == "" {
		t.Error("expected default endpoints")
	}
	if len(cfg.WatchedPrograms) != 2 {
		t.Errorf("expected 2 default watched programs, got %d", len(cfg.WatchedPrograms))
	}
	if cfg.MaxTracked != 1000 || cfg.TrimSize != 500 {
		t.Errorf("unexpected dedup defaults: %d/%d", cfg.MaxTracked, cfg.TrimSize)
	}
	if cfg.MaxReconnectAttempts != 0 {
		t.Errorf("default reconnect policy must be unbounded, got %d", cfg.MaxReconnectAttempts)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MAX_RECONNECT_ATTEMPTS", "3")
	t.Setenv("POLL_INTERVAL_SECONDS", "15")
	t.Setenv("LISTING_URL", "https://example.com/tokens")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MaxReconnectAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.MaxReconnectAttempts)
	}
	if cfg.PollInterval != 15*time.Second {
		t.Errorf("expected 15s poll interval, got %v", cfg.PollInterval)
	}
	if cfg.ListingURL != "https://example.com/tokens" {
		t.Errorf("unexpected listing url: %s", cfg.ListingURL)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing rpc url", func(c *Config) { c.RPCURL = "" }},
		{"missing ws url", func(c *Config) { c.WSURL = "" }},
		{"negative attempts", func(c *Config) { c.MaxReconnectAttempts = -1 }},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }},
		{"zero page size", func(c *Config) { c.ScanPageSize = 0 }},
		{"trim above cap", func(c *Config) { c.TrimSize = c.MaxTracked + 1 }},
		{"bad metrics port", func(c *Config) { c.MetricsPort = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
