// Package pipeline coordinates the stream, scan and listing paths and
// gates candidates through dedup and the filter engine.
package pipeline

import (
	"sync/atomic"
	"time"

	"solana-launch-monitor/internal/dedup"
	"solana-launch-monitor/internal/filter"
)

// Tuning holds the externally supplied knobs. Immutable after startup.
type Tuning struct {
	MaxReconnectAttempts int
	ReconnectInterval    time.Duration
	KeepAliveInterval    time.Duration
	PollInterval         time.Duration
	ScanPageSize         int
	ScanMaxRecords       int
	MaxTracked           int
	TrimSize             int
}

// Runtime is the shared pipeline state, passed explicitly to every
// component. It owns the filter config snapshot, the dedup tracker and
// the tuning parameters; there are no package-level globals.
//
// The filter config is copy-on-write: readers take a snapshot pointer for
// one evaluation, writers install a whole new instance atomically.
type Runtime struct {
	cfg atomic.Pointer[filter.Config]

	Tracker *dedup.Tracker
	Tuning  Tuning
}

// NewRuntime creates a Runtime with the permissive default filter config
// installed.
func NewRuntime(tuning Tuning) *Runtime {
	r := &Runtime{
		Tracker: dedup.New(tuning.MaxTracked, tuning.TrimSize),
		Tuning:  tuning,
	}
	r.cfg.Store(filter.Default())
	return r
}

// FilterConfig returns the current snapshot. The returned config must not
// be mutated; derive a new one with Clone and install it via LoadConfig.
func (r *Runtime) FilterConfig() *filter.Config {
	return r.cfg.Load()
}

// LoadConfig validates and installs a new filter config. An invalid
// config is rejected and the prior snapshot stays in effect.
func (r *Runtime) LoadConfig(cfg *filter.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.cfg.Store(cfg)
	return nil
}
