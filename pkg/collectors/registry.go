package collectors

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry manages a set of named collectors. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	collectors map[string]Collector
	statuses   map[string]*CollectorStatus
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		collectors: make(map[string]Collector),
		statuses:   make(map[string]*CollectorStatus),
	}
}

// Register adds a collector. It returns an error if the name is taken.
func (r *Registry) Register(c Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.collectors[name]; exists {
		return fmt.Errorf("collector %q already registered", name)
	}
	r.collectors[name] = c
	r.statuses[name] = &CollectorStatus{Name: name, Healthy: true}
	return nil
}

// Get returns the collector with the given name.
func (r *Registry) Get(name string) (Collector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collectors[name]
	return c, ok
}

// List returns the sorted names of all registered collectors.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.collectors))
	for name := range r.collectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status returns a copy of the named collector's runtime status.
func (r *Registry) Status(name string) (CollectorStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.statuses[name]
	if !ok {
		return CollectorStatus{}, false
	}
	return *s, true
}

// AllStatus returns copies of all statuses sorted by name.
func (r *Registry) AllStatus() []CollectorStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]CollectorStatus, 0, len(r.statuses))
	for _, s := range r.statuses {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// begin marks a cycle as dispatched.
func (r *Registry) begin(name string) {
	r.update(name, func(s *CollectorStatus) { s.InFlight++ })
}

// finish records the outcome of a completed cycle.
func (r *Registry) finish(name string, start time.Time, latency time.Duration, err error) {
	r.update(name, func(s *CollectorStatus) {
		s.InFlight--
		s.RunCount++
		s.LastRun = start
		s.LastLatency = latency
		if err != nil {
			s.ErrorCount++
			s.Healthy = false
			s.LastError = err.Error()
			return
		}
		s.Healthy = true
		s.LastError = ""
	})
}

func (r *Registry) update(name string, fn func(s *CollectorStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.statuses[name]; ok {
		fn(s)
	}
}
