// Package sensorsim is a stand-in posture backend for development. It walks
// a smoothed neck angle between upright and slouched episodes and serves it
// on GET /status in the same shape as the real sensor.
package sensorsim

import (
	"math/rand"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/presentation"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/telemetry"
)

// Classification thresholds. Between them the previous status is kept.
const (
	SlouchThreshold   = 145.0
	RecoveryThreshold = 155.0
)

const (
	smoothingWindow = 5
	uprightTarget   = 165.0
	slouchedTarget  = 128.0
	flipChance      = 0.02
	minAngle        = 90.0
	maxAngle        = 180.0
)

// Classify applies the hysteresis rule to a smoothed angle.
func Classify(prev string, angle float64) string {
	switch {
	case angle < SlouchThreshold:
		return presentation.StatusSlouching
	case angle > RecoveryThreshold:
		return presentation.StatusNormal
	}
	if prev == "" {
		return presentation.StatusNormal
	}
	return prev
}

// Sensor produces readings. Safe for concurrent use.
type Sensor struct {
	mu       sync.Mutex
	rng      *rand.Rand
	raw      float64
	target   float64
	history  []float64
	status   string
	smoothed float64
}

// NewSensor creates an upright sensor. A zero seed uses the clock.
func NewSensor(seed int64) *Sensor {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Sensor{
		rng:      rand.New(rand.NewSource(seed)),
		raw:      uprightTarget,
		target:   uprightTarget,
		status:   presentation.StatusNormal,
		smoothed: uprightTarget,
	}
}

// Step advances the walk by one frame and returns the new reading.
func (s *Sensor) Step() telemetry.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rng.Float64() < flipChance {
		if s.target == uprightTarget {
			s.target = slouchedTarget
		} else {
			s.target = uprightTarget
		}
	}
	s.raw += (s.target-s.raw)*0.1 + s.rng.NormFloat64()*2
	if s.raw < minAngle {
		s.raw = minAngle
	}
	if s.raw > maxAngle {
		s.raw = maxAngle
	}
	return s.observe(s.raw)
}

// Observe feeds an externally measured raw angle through the same smoothing
// and classification as Step.
func (s *Sensor) Observe(raw float64) telemetry.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.observe(raw)
}

func (s *Sensor) observe(raw float64) telemetry.Reading {
	s.history = append(s.history, raw)
	if len(s.history) > smoothingWindow {
		s.history = s.history[len(s.history)-smoothingWindow:]
	}
	sum := 0.0
	for _, v := range s.history {
		sum += v
	}
	s.smoothed = sum / float64(len(s.history))
	s.status = Classify(s.status, s.smoothed)
	return s.current()
}

// Current returns the latest reading without advancing.
func (s *Sensor) Current() telemetry.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

// current reports whole degrees, as the real sensor does.
func (s *Sensor) current() telemetry.Reading {
	return telemetry.Reading{Angle: float64(int(s.smoothed)), Status: s.status}
}
