// Package loadsim drives the decorative "system load" readout shown beside
// the posture card. It is deliberately independent of the status poller: it
// has its own interval and no network dependency.
package loadsim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

// CollectorName is the source name the ticker reports under.
const CollectorName = "load"

// Random source constants: on each tick the value changes with probability
// updateChance, to an integer drawn uniformly from [minLoad, maxLoad).
const (
	updateChance = 0.4
	minLoad      = 10
	maxLoad      = 40
)

// Sample is one load reading. Changed is false when the tick kept the
// previous value.
type Sample struct {
	Percent int  `json:"percent"`
	Changed bool `json:"changed"`
}

// Source produces the next load sample.
type Source interface {
	Next(ctx context.Context) (Sample, error)
}

// RandomSource is visually plausible noise. Safe for concurrent use.
type RandomSource struct {
	mu      sync.Mutex
	rng     *rand.Rand
	current int
}

// NewRandomSource creates a noise source. A zero seed uses the clock.
func NewRandomSource(seed int64) *RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomSource{rng: rand.New(rand.NewSource(seed)), current: minLoad}
}

// Next implements Source.
func (s *RandomSource) Next(_ context.Context) (Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rng.Float64() >= updateChance {
		return Sample{Percent: s.current}, nil
	}
	s.current = minLoad + s.rng.Intn(maxLoad-minLoad)
	return Sample{Percent: s.current, Changed: true}, nil
}

// HostSource reports real host CPU utilisation via gopsutil.
type HostSource struct {
	mu   sync.Mutex
	last int
}

// NewHostSource creates a CPU-backed source.
func NewHostSource() *HostSource {
	return &HostSource{last: -1}
}

// Next implements Source. It takes an instantaneous snapshot (interval 0),
// so it never blocks for a sampling window.
func (s *HostSource) Next(ctx context.Context) (Sample, error) {
	pct, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return Sample{}, err
	}
	v := 0
	if len(pct) > 0 {
		v = int(pct[0] + 0.5)
	}
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	changed := v != s.last
	s.last = v
	return Sample{Percent: v, Changed: changed}, nil
}
