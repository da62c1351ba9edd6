package platform

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// RequestScope is a handle over one request id's slice of the container.
// Resolves through the scope share request-scoped instances, and Close
// tears them down. The reqscope module opens one per HTTP request; anything
// with a request-shaped lifetime (a job run, a message handled) can do the
// same.
type RequestScope struct {
	container *Container
	id        string
	closed    atomic.Bool
}

// BeginRequest opens a scope for requestID. An empty requestID gets a
// generated UUID. Opening a scope allocates nothing in the container;
// request-scoped instances appear as they are first resolved.
func (c *Container) BeginRequest(requestID string) *RequestScope {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return &RequestScope{container: c, id: requestID}
}

// ID returns the request id the scope resolves under.
func (s *RequestScope) ID() string {
	return s.id
}

// Resolve resolves token with the scope's request id in effect. After Close
// it fails with ErrScopeClosed.
func (s *RequestScope) Resolve(ctx context.Context, token Token) (any, error) {
	if s.closed.Load() {
		return nil, ErrScopeClosed
	}
	return s.container.ResolveRequest(ctx, token, s.id)
}

// Close destroys every instance cached under the scope's request id, in
// reverse creation order, and marks the scope unusable. Close is idempotent;
// only the first call tears down.
func (s *RequestScope) Close(ctx context.Context) {
	if s.closed.Swap(true) {
		return
	}
	s.container.ClearRequestScope(ctx, s.id)
}

// scopeContextKey carries a *RequestScope through request contexts.
type scopeContextKey struct{}

// ContextWithScope returns a context carrying the scope, for handlers
// downstream of middleware that opened it.
func ContextWithScope(ctx context.Context, scope *RequestScope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext extracts the RequestScope placed in ctx by
// ContextWithScope, if any.
func ScopeFromContext(ctx context.Context) (*RequestScope, bool) {
	scope, ok := ctx.Value(scopeContextKey{}).(*RequestScope)
	return scope, ok
}
