// Package authn guards the platform's API routes with bearer tokens. It
// mounts a token issue endpoint and a verify middleware; verified claims
// travel down the request context for handlers to read.
package authn

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/provenhq/platform"
)

// ModuleName identifies the module in registry reports.
const ModuleName = "authn"

var (
	_ platform.Module[chi.Router]              = (*Module)(nil)
	_ platform.Initializer[chi.Router]         = (*Module)(nil)
	_ platform.MiddlewareRegistrar[chi.Router] = (*Module)(nil)
)

// Module issues tokens at POST /auth/token and verifies bearer tokens on
// every request under the configured protected prefixes.
type Module struct {
	platform.BaseModule[chi.Router]
	container *platform.Container

	config  *Config
	service *Service
}

// New creates the authn module.
func New(container *platform.Container) *Module {
	return &Module{
		BaseModule: platform.NewBaseModule[chi.Router](ModuleName, platform.TokenAuthConfig),
		container:  container,
	}
}

// Initialize resolves the auth config and builds the token service.
func (m *Module) Initialize(ctx context.Context, _ chi.Router) error {
	cfg, err := platform.As[*Config](ctx, m.container, platform.TokenAuthConfig)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.config = cfg
	m.service = NewService(cfg)
	return nil
}

// RegisterMiddleware installs the bearer-token verifier.
func (m *Module) RegisterMiddleware(r chi.Router) error {
	r.Use(m.verify)
	return nil
}

// RegisterRoutes mounts the issue endpoint.
func (m *Module) RegisterRoutes(r chi.Router) error {
	r.Post("/auth/token", m.handleIssue)
	return nil
}

// Service exposes the token service for other modules, available after
// Initialize.
func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.protectedPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		raw := bearerToken(r)
		if raw == "" {
			unauthorized(w, "missing bearer token")
			return
		}
		claims, err := m.service.Verify(raw)
		if err != nil {
			unauthorized(w, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func (m *Module) protectedPath(path string) bool {
	for _, prefix := range m.config.Protected {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

type issueRequest struct {
	Subject string         `json:"subject"`
	Key     string         `json:"key"`
	Claims  map[string]any `json:"claims,omitempty"`
}

func (m *Module) handleIssue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Key), []byte(m.config.IssueKey)) != 1 {
		unauthorized(w, "invalid issue key")
		return
	}

	issued, err := m.service.Issue(req.Subject, req.Claims)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(issued)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="platform"`)
	writeError(w, http.StatusUnauthorized, message)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

type claimsContextKey struct{}

func withClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext returns the verified claims attached by the middleware.
func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(jwt.MapClaims)
	return claims, ok
}
