package sensorsim

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Options tunes the simulated backend.
type Options struct {
	// FrameInterval is how often the sensor advances. Zero means 100ms.
	FrameInterval time.Duration
	// FailRate is the fraction of requests answered with 503.
	FailRate float64
	// MaxLatency adds a random delay in [0, MaxLatency) to each response,
	// so responses can overtake each other.
	MaxLatency time.Duration
	// Seed fixes the random sequence. Zero uses the clock.
	Seed int64
}

// Server serves a Sensor over HTTP.
type Server struct {
	sensor *Sensor
	opts   Options
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewServer creates a simulated backend.
func NewServer(opts Options, logger *zap.Logger) *Server {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 100 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Server{
		sensor: NewSensor(opts.Seed),
		opts:   opts,
		logger: logger,
		rng:    rand.New(rand.NewSource(seed + 1)),
	}
}

// Sensor returns the underlying sensor.
func (s *Server) Sensor() *Sensor { return s.sensor }

// NewRouter builds the routes: GET /status.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	fail, delay := s.roll()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if fail {
		http.Error(w, "sensor unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.sensor.Current())
}

func (s *Server) roll() (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fail := s.opts.FailRate > 0 && s.rng.Float64() < s.opts.FailRate
	var delay time.Duration
	if s.opts.MaxLatency > 0 {
		delay = time.Duration(s.rng.Int63n(int64(s.opts.MaxLatency)))
	}
	return fail, delay
}

// Run advances the sensor and serves addr until ctx ends.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.NewRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		ticker := time.NewTicker(s.opts.FrameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sensor.Step()
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("simulated sensor listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
