package collectors

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultUpdateBufferSize is the recommended capacity for the updates
// channel handed to NewRunner.
const DefaultUpdateBufferSize = 64

// Runner drives every registered collector on its own interval. A cycle is
// dispatched on every tick whether or not the previous one has finished, so
// slow endpoints produce overlapping cycles; consumers order results
// themselves (see telemetry.Result.Seq).
type Runner struct {
	registry *Registry
	updates  chan<- Update
	logger   *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger used for per-cycle debug output.
func WithLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner that publishes into updates. The caller owns
// the channel and must keep draining it until Stop returns.
func NewRunner(reg *Registry, updates chan<- Update, opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: reg,
		updates:  updates,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches one loop per registered collector. It returns an error if
// the runner is already running.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return errors.New("runner already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true

	for _, name := range r.registry.List() {
		c, ok := r.registry.Get(name)
		if !ok {
			continue
		}
		r.wg.Add(1)
		go r.loop(ctx, c)
	}
	r.logger.Debug("collector runner started", zap.Strings("collectors", r.registry.List()))
	return nil
}

// Stop cancels all loops and waits for in-flight cycles to return.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.running = false
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Debug("collector runner stopped")
}

// RunOnce performs a single synchronous cycle of the named collector and
// records its status. Nothing is published on the updates channel.
func (r *Runner) RunOnce(ctx context.Context, name string) (interface{}, error) {
	c, ok := r.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("collector %q not registered", name)
	}
	u := r.cycle(ctx, c)
	return u.Data, u.Error
}

// Health returns the current health of every registered collector.
func (r *Runner) Health() map[string]bool {
	out := make(map[string]bool)
	for _, s := range r.registry.AllStatus() {
		out[s.Name] = s.Healthy
	}
	return out
}

func (r *Runner) loop(ctx context.Context, c Collector) {
	defer r.wg.Done()

	interval := c.Interval()
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.dispatch(ctx, c)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.dispatch(ctx, c)
		}
	}
}

// dispatch runs one cycle in its own goroutine and publishes the result.
func (r *Runner) dispatch(ctx context.Context, c Collector) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		u := r.cycle(ctx, c)
		if ctx.Err() != nil {
			return
		}
		select {
		case r.updates <- u:
		case <-ctx.Done():
		}
	}()
}

func (r *Runner) cycle(ctx context.Context, c Collector) Update {
	name := c.Name()
	r.registry.begin(name)

	start := time.Now()
	data, err := c.Collect(ctx)
	latency := time.Since(start)

	r.registry.finish(name, start, latency, err)
	if err != nil {
		r.logger.Debug("collector cycle failed",
			zap.String("collector", name),
			zap.Duration("latency", latency),
			zap.Error(err),
		)
	}
	return Update{
		Source:    name,
		Data:      data,
		Timestamp: start,
		Error:     err,
	}
}
