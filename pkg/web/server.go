// Package web is the browser host: it applies posture results to its own
// presentation session and pushes every render to connected browsers over a
// websocket.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/collectors"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/loadsim"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/presentation"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/telemetry"
)

//go:embed static
var staticFiles embed.FS

// Message types pushed over the websocket.
const (
	TypeSnapshot = "snapshot"
	TypeRender   = "render"
	TypeLoad     = "load"
)

// Message is the websocket envelope. Exactly one payload field is set.
type Message struct {
	Type     string                     `json:"type"`
	Render   *presentation.RenderResult `json:"render,omitempty"`
	Load     *int                       `json:"load,omitempty"`
	Snapshot *State                     `json:"snapshot,omitempty"`
}

// State is the body of GET /api/state.
type State struct {
	presentation.Snapshot
	Load    *int `json:"load,omitempty"`
	Clients int  `json:"clients"`
}

// Server serialises all session access behind mu; the consumer goroutine and
// the HTTP handlers are the only callers.
type Server struct {
	mu      sync.Mutex
	session *presentation.Session
	load    *int

	hub    *Hub
	health func() map[string]bool
	logger *zap.Logger
}

// NewServer creates a web host around session. health, when set, backs
// GET /healthz.
func NewServer(session *presentation.Session, health func() map[string]bool, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		session: session,
		hub:     NewHub(logger),
		health:  health,
		logger:  logger,
	}
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// NewRouter builds the HTTP routes.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
	r.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	static, _ := fs.Sub(staticFiles, "static")
	r.PathPrefix("/").Handler(http.FileServer(http.FS(static))).Methods(http.MethodGet)
	return r
}

// Consume applies updates until ctx ends or the channel closes.
func (s *Server) Consume(ctx context.Context, updates <-chan collectors.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			s.Handle(u)
		}
	}
}

// Handle applies one collector update and broadcasts the outcome.
func (s *Server) Handle(u collectors.Update) {
	switch u.Source {
	case loadsim.CollectorName:
		sample, ok := u.Data.(loadsim.Sample)
		if !ok || u.Error != nil {
			return
		}
		pct := sample.Percent
		s.mu.Lock()
		s.load = &pct
		s.mu.Unlock()
		s.publish(Message{Type: TypeLoad, Load: &pct})

	case telemetry.CollectorName:
		// The lock covers the broadcast too, so a browser attaching in
		// handleWS either sees this render in its snapshot or receives it.
		s.mu.Lock()
		defer s.mu.Unlock()
		if u.Error != nil {
			s.session.Failure(u.Error)
			return
		}
		res, ok := u.Data.(telemetry.Result)
		if !ok {
			return
		}
		if out, applied := s.session.Apply(res); applied {
			s.publish(Message{Type: TypeRender, Render: &out})
		}
	}
}

func (s *Server) publish(m Message) {
	b, err := json.Marshal(m)
	if err != nil {
		s.logger.Error("encode websocket message", zap.Error(err))
		return
	}
	s.hub.Broadcast(b)
}

// State returns the current session state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Server) stateLocked() State {
	st := State{Snapshot: s.session.Snapshot(), Clients: s.hub.ClientCount()}
	if s.load != nil {
		v := *s.load
		st.Load = &v
	}
	return st
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c := s.hub.upgrade(w, r)
	if c == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked()
	initial, err := json.Marshal(Message{Type: TypeSnapshot, Snapshot: &st})
	if err != nil {
		s.logger.Error("encode snapshot", zap.Error(err))
		c.conn.Close()
		return
	}
	s.hub.attach(c, initial)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.State())
}

type healthResponse struct {
	Status     string          `json:"status"`
	Collectors map[string]bool `json:"collectors,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.health != nil {
		resp.Collectors = s.health()
		for _, ok := range resp.Collectors {
			if !ok {
				resp.Status = "degraded"
			}
		}
	}
	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Run serves addr until ctx ends, consuming updates in the background.
func (s *Server) Run(ctx context.Context, addr string, updates <-chan collectors.Update) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.NewRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.hub.Run(ctx)
	go s.Consume(ctx, updates)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web host listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
