package loadsim

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultInterval is the reference tick period.
const DefaultInterval = 200 * time.Millisecond

// Ticker adapts a Source to the collectors.Collector interface.
type Ticker struct {
	src      Source
	interval time.Duration
	healthy  atomic.Bool
}

// NewTicker wraps src. A non-positive interval uses DefaultInterval.
func NewTicker(src Source, interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := &Ticker{src: src, interval: interval}
	t.healthy.Store(true)
	return t
}

// NewSource returns the source for a configured kind: "host" reads the real
// CPU, anything else is random noise.
func NewSource(kind string, seed int64) Source {
	if kind == "host" {
		return NewHostSource()
	}
	return NewRandomSource(seed)
}

// Name implements collectors.Collector.
func (t *Ticker) Name() string { return CollectorName }

// Interval implements collectors.Collector.
func (t *Ticker) Interval() time.Duration { return t.interval }

// Healthy implements collectors.Collector.
func (t *Ticker) Healthy() bool { return t.healthy.Load() }

// Collect implements collectors.Collector and returns a Sample.
func (t *Ticker) Collect(ctx context.Context) (interface{}, error) {
	s, err := t.src.Next(ctx)
	if err != nil {
		t.healthy.Store(false)
		return nil, err
	}
	t.healthy.Store(true)
	return s, nil
}
