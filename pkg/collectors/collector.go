// Package collectors runs the dashboard's periodic data sources. Each source
// (the posture status poller, the decorative load ticker) implements
// Collector; a Runner ticks every registered collector on its own interval
// and fans results into a single updates channel consumed by the host's
// event loop.
package collectors

import (
	"context"
	"time"
)

// Collector is the interface all periodic sources implement.
type Collector interface {
	// Name returns a unique identifier (e.g. "posture", "load").
	Name() string

	// Collect performs one cycle. Consumers type-assert the returned value
	// based on the collector name.
	Collect(ctx context.Context) (interface{}, error)

	// Interval returns the fixed period between cycles.
	Interval() time.Duration

	// Healthy reports whether the most recent cycle succeeded.
	Healthy() bool
}

// CollectorStatus tracks the runtime state of a single collector.
type CollectorStatus struct {
	Name        string        `json:"name"`
	Healthy     bool          `json:"healthy"`
	LastRun     time.Time     `json:"last_run"`
	LastError   string        `json:"last_error,omitempty"`
	RunCount    int64         `json:"run_count"`
	ErrorCount  int64         `json:"error_count"`
	InFlight    int64         `json:"in_flight"`
	LastLatency time.Duration `json:"last_latency"`
}

// Update carries the result of one cycle from a collector goroutine to the
// consumer. Updates from overlapping cycles may arrive out of order.
type Update struct {
	Source    string
	Data      interface{}
	Timestamp time.Time
	Error     error
}
