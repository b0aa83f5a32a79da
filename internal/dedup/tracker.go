// Package dedup tracks identifiers that have already been alerted on, with
// a hard memory cap.
package dedup

import (
	"sync"
	"time"
)

// Default capacity values, matching the tuning defaults.
const (
	DefaultMaxTracked = 1000
	DefaultTrimSize   = 500
)

// Tracker is a bounded set of identifiers with first-seen timestamps. When
// the set grows past maxTracked, only the most recently inserted trimSize
// identifiers are retained, in one bulk operation. Eviction is by insertion
// order, not recency of access: evicted identifiers may be re-alerted.
// Safe for concurrent use.
type Tracker struct {
	mu         sync.Mutex
	firstSeen  map[string]int64
	order      []string // insertion order, oldest first
	maxTracked int
	trimSize   int
	now        func() int64
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the timestamp source. Used in tests.
func WithClock(now func() int64) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a Tracker. Non-positive capacities fall back to defaults;
// trimSize is clamped to maxTracked.
func New(maxTracked, trimSize int, opts ...Option) *Tracker {
	if maxTracked <= 0 {
		maxTracked = DefaultMaxTracked
	}
	if trimSize <= 0 {
		trimSize = DefaultTrimSize
	}
	if trimSize > maxTracked {
		trimSize = maxTracked
	}

	t := &Tracker{
		firstSeen:  make(map[string]int64),
		maxTracked: maxTracked,
		trimSize:   trimSize,
		now:        nil,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Seen reports whether id has been marked.
func (t *Tracker) Seen(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.firstSeen[id]
	return ok
}

// MarkSeen records id. Idempotent: marking an already-tracked id does not
// grow the set or refresh its insertion position.
func (t *Tracker) MarkSeen(id string) {
	if id == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.firstSeen[id]; ok {
		return
	}

	t.firstSeen[id] = t.timestamp()
	t.order = append(t.order, id)

	if len(t.order) > t.maxTracked {
		t.trimLocked()
	}
}

// CheckAndMark atomically tests and marks id. Returns true if id was
// already tracked. Used when the stream and scanner paths race on the same
// identifier.
func (t *Tracker) CheckAndMark(id string) bool {
	if id == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.firstSeen[id]; ok {
		return true
	}

	t.firstSeen[id] = t.timestamp()
	t.order = append(t.order, id)
	if len(t.order) > t.maxTracked {
		t.trimLocked()
	}
	return false
}

// Len returns the number of tracked identifiers.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order)
}

// trimLocked retains the most recently inserted trimSize identifiers.
// Caller holds the mutex.
func (t *Tracker) trimLocked() {
	keep := t.order[len(t.order)-t.trimSize:]

	retained := make(map[string]int64, len(keep))
	for _, id := range keep {
		retained[id] = t.firstSeen[id]
	}

	t.firstSeen = retained
	t.order = append([]string(nil), keep...)
}

func (t *Tracker) timestamp() int64 {
	if t.now != nil {
		return t.now()
	}
	return time.Now().UnixMilli()
}
