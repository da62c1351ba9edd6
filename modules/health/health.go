// Package health mounts liveness and readiness endpoints. Liveness only
// proves the process is serving; readiness runs registered checks against
// the platform's dependencies and turns the first failure into a 503.
package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/provenhq/platform"
	"github.com/provenhq/platform/cache"
)

// ModuleName identifies the module in registry reports.
const ModuleName = "health"

// Check probes a single dependency. It must respect ctx cancellation and
// return quickly; the module caps every readiness pass with a timeout.
type Check func(ctx context.Context) error

var _ platform.Module[chi.Router] = (*Module)(nil)

// Module serves GET /healthz and GET /readyz.
type Module struct {
	platform.BaseModule[chi.Router]
	container *platform.Container
	timeout   time.Duration

	mu     sync.RWMutex
	checks map[string]Check
	order  []string
}

// Option tunes the module.
type Option func(*Module)

// WithTimeout caps a full readiness pass. Default is 5s.
func WithTimeout(timeout time.Duration) Option {
	return func(m *Module) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

// WithCheck registers an extra named readiness check.
func WithCheck(name string, check Check) Option {
	return func(m *Module) {
		m.AddCheck(name, check)
	}
}

// New creates the health module with database and cache probes built in.
func New(container *platform.Container, opts ...Option) *Module {
	m := &Module{
		BaseModule: platform.NewBaseModule[chi.Router](ModuleName, platform.TokenDatabase, platform.TokenCache),
		container:  container,
		timeout:    5 * time.Second,
		checks:     make(map[string]Check),
	}
	m.AddCheck("database", m.checkDatabase)
	m.AddCheck("cache", m.checkCache)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddCheck registers a named readiness check. A duplicate name replaces the
// earlier check in place.
func (m *Module) AddCheck(name string, check Check) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.checks[name]; !exists {
		m.order = append(m.order, name)
	}
	m.checks[name] = check
}

// RegisterRoutes mounts the probe endpoints.
func (m *Module) RegisterRoutes(r chi.Router) error {
	r.Get("/healthz", m.handleLiveness)
	r.Get("/readyz", m.handleReadiness)
	return nil
}

type probeResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (m *Module) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, probeResponse{Status: "ok"})
}

func (m *Module) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), m.timeout)
	defer cancel()

	m.mu.RLock()
	names := make([]string, len(m.order))
	copy(names, m.order)
	checks := make(map[string]Check, len(m.checks))
	for name, check := range m.checks {
		checks[name] = check
	}
	m.mu.RUnlock()

	resp := probeResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	writeJSON(w, status, resp)
}

func (m *Module) checkDatabase(ctx context.Context) error {
	db, err := platform.As[*sql.DB](ctx, m.container, platform.TokenDatabase)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (m *Module) checkCache(ctx context.Context) error {
	store, err := platform.As[cache.Engine](ctx, m.container, platform.TokenCache)
	if err != nil {
		return err
	}
	return store.Set(ctx, "health:probe", time.Now().UnixMilli(), time.Minute)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
