package telemetry

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// CollectorName is the source name the poller reports under.
const CollectorName = "posture"

// Config controls the Poller.
type Config struct {
	// Endpoint is the full URL of the status resource.
	Endpoint string

	// Interval is the fixed polling period (default 500ms).
	Interval time.Duration

	// Timeout bounds a single request (default 2s).
	Timeout time.Duration
}

// DefaultConfig returns the reference polling behaviour.
func DefaultConfig() Config {
	return Config{
		Endpoint: "http://127.0.0.1:5001/status",
		Interval: 500 * time.Millisecond,
		Timeout:  2 * time.Second,
	}
}

// Poller issues one GET per Poll call. Polls are independent and may run
// concurrently; each is tagged with a sequence number at dispatch.
type Poller struct {
	cfg     Config
	client  *resty.Client
	seq     atomic.Uint64
	healthy atomic.Bool
}

// NewPoller creates a Poller. Zero-value fields in cfg are replaced with
// defaults. A nil logger discards resty's internal diagnostics.
func NewPoller(cfg Config, logger *zap.Logger) *Poller {
	def := DefaultConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetLogger(logger.Named("resty").Sugar())

	p := &Poller{cfg: cfg, client: client}
	p.healthy.Store(true)
	return p
}

// Endpoint returns the polled URL.
func (p *Poller) Endpoint() string { return p.cfg.Endpoint }

// LastSeq returns the sequence number of the most recently dispatched poll.
func (p *Poller) LastSeq() uint64 { return p.seq.Load() }

// Poll performs one request. On failure the returned error is a *PollError;
// the caller decides what, if anything, to do with it.
func (p *Poller) Poll(ctx context.Context) (Result, error) {
	seq := p.seq.Add(1)
	start := time.Now()

	resp, err := p.client.R().SetContext(ctx).Get(p.cfg.Endpoint)
	if err != nil {
		p.healthy.Store(false)
		return Result{}, &PollError{Kind: NetworkFailure, Seq: seq, Err: err}
	}
	if !resp.IsSuccess() {
		p.healthy.Store(false)
		return Result{}, &PollError{
			Kind:       NetworkFailure,
			Seq:        seq,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("unexpected status %s", resp.Status()),
		}
	}

	reading, err := DecodeReading(resp.Body())
	if err != nil {
		p.healthy.Store(false)
		return Result{}, &PollError{Kind: DecodeFailure, Seq: seq, StatusCode: resp.StatusCode(), Err: err}
	}

	p.healthy.Store(true)
	return Result{
		Seq:        seq,
		Reading:    reading,
		Latency:    time.Since(start),
		ReceivedAt: time.Now(),
	}, nil
}

// Name implements collectors.Collector.
func (p *Poller) Name() string { return CollectorName }

// Interval implements collectors.Collector.
func (p *Poller) Interval() time.Duration { return p.cfg.Interval }

// Healthy reports whether the last completed poll succeeded.
func (p *Poller) Healthy() bool { return p.healthy.Load() }

// Collect implements collectors.Collector by delegating to Poll.
func (p *Poller) Collect(ctx context.Context) (interface{}, error) {
	res, err := p.Poll(ctx)
	if err != nil {
		return nil, err
	}
	return res, nil
}
