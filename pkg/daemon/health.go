package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/collectors"
)

// DefaultHealthInterval is how often the health file is rewritten.
const DefaultHealthInterval = 5 * time.Second

// Health is the document written to the health file.
type Health struct {
	PID        int                          `json:"pid"`
	StartedAt  time.Time                    `json:"started_at"`
	UpdatedAt  time.Time                    `json:"updated_at"`
	SessionID  string                       `json:"session_id"`
	Variant    string                       `json:"variant"`
	LastStatus string                       `json:"last_status"`
	LastAngle  *float64                     `json:"last_angle,omitempty"`
	LastSeq    uint64                       `json:"last_seq"`
	Load       *int                         `json:"load,omitempty"`
	Clients    int                          `json:"clients"`
	Collectors []collectors.CollectorStatus `json:"collectors"`
}

// Healthy reports whether every collector is healthy.
func (h Health) Healthy() bool {
	for _, c := range h.Collectors {
		if !c.Healthy {
			return false
		}
	}
	return true
}

// WriteHealth stores h as indented JSON at path.
func WriteHealth(path string, h Health) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create health directory: %w", err)
	}
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal health: %w", err)
	}
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("write health file: %w", err)
	}
	return nil
}

// ReadHealth loads a health file.
func ReadHealth(path string) (Health, error) {
	var h Health
	data, err := os.ReadFile(path)
	if err != nil {
		return h, fmt.Errorf("read health file: %w", err)
	}
	if err := json.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("decode health file: %w", err)
	}
	return h, nil
}

// HealthReporter rewrites the health file on an interval.
type HealthReporter struct {
	path     string
	interval time.Duration
	collect  func() Health
	logger   *zap.Logger
	started  time.Time
}

// NewHealthReporter creates a reporter. collect is called from the
// reporter's goroutine and must be safe for that. A non-positive interval
// uses DefaultHealthInterval.
func NewHealthReporter(path string, interval time.Duration, collect func() Health, logger *zap.Logger) *HealthReporter {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthReporter{
		path:     path,
		interval: interval,
		collect:  collect,
		logger:   logger,
		started:  time.Now(),
	}
}

// Report writes one health document.
func (r *HealthReporter) Report() error {
	h := r.collect()
	h.PID = os.Getpid()
	h.StartedAt = r.started
	h.UpdatedAt = time.Now()
	return WriteHealth(r.path, h)
}

// Run reports immediately, then on every tick until ctx ends. The file is
// removed on exit so a stale document never outlives the process.
func (r *HealthReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer os.Remove(r.path)

	for {
		if err := r.Report(); err != nil {
			r.logger.Warn("health report failed", zap.String("path", r.path), zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Start runs the reporter in its own goroutine. The returned channel is
// closed once Run has returned and the file is gone.
func (r *HealthReporter) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx)
	}()
	return done
}
