// Package reqscope opens a container request scope around every HTTP
// request. Handlers resolve request-scoped services through the scope in
// the request context, and the middleware guarantees teardown when the
// handler returns, even on panic further down the chain.
package reqscope

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/provenhq/platform"
)

// ModuleName identifies the module in registry reports.
const ModuleName = "reqscope"

// RequestIDHeader carries the request id in and out. An inbound value is
// reused so ids propagate across services; otherwise a UUID is generated.
const RequestIDHeader = "X-Request-ID"

var (
	_ platform.Module[chi.Router]              = (*Module)(nil)
	_ platform.MiddlewareRegistrar[chi.Router] = (*Module)(nil)
)

// Module installs the scope middleware.
type Module struct {
	platform.BaseModule[chi.Router]
	container *platform.Container
}

// New creates the reqscope module.
func New(container *platform.Container) *Module {
	return &Module{
		BaseModule: platform.NewBaseModule[chi.Router](ModuleName),
		container:  container,
	}
}

// RegisterMiddleware installs the per-request scope wrapper.
func (m *Module) RegisterMiddleware(r chi.Router) error {
	r.Use(m.scoped)
	return nil
}

func (m *Module) scoped(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := m.container.BeginRequest(r.Header.Get(RequestIDHeader))
		defer scope.Close(r.Context())

		w.Header().Set(RequestIDHeader, scope.ID())
		next.ServeHTTP(w, r.WithContext(platform.ContextWithScope(r.Context(), scope)))
	})
}
