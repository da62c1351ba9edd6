// Package platform provides the dependency injection container and module
// registry that provenhq services are assembled from.
//
// The two halves are deliberately small and composable:
//
//   - Container binds opaque string tokens to constructors, factories, or
//     ready-made instances, and resolves them on demand with singleton,
//     transient, or per-request caching, cycle detection, and lifecycle
//     hooks.
//   - Registry collects feature modules and bootstraps them against a host
//     in four phases (validate, initialize, middleware, routes), isolating
//     each module's failures so one broken feature cannot take down the
//     rest.
//
// A service binary wires both in its composition root: register every
// service into a Container, register every feature into a Registry, then
// Bootstrap against the HTTP router (or any other host type) and inspect
// the returned Report.
package platform

import (
	"context"
	"slices"
)

// Module is a self-contained feature that plugs into a host of type H. The
// host is whatever the application bootstraps modules against; for provenhq
// HTTP services it is a chi.Router, but the registry never looks inside it.
//
// Name must be unique within a registry and stable across restarts, since
// it keys duplicate detection and bootstrap reporting. Dependencies lists
// the container tokens the module consumes; the registry verifies all of
// them exist before any module initializes. RegisterRoutes is the only
// mandatory behavior, and a module with nothing to mount simply returns
// nil.
//
// Modules that need the optional bootstrap phases implement Initializer or
// MiddlewareRegistrar as well; the registry detects those by type
// assertion.
type Module[H any] interface {
	// Name returns the module's unique, human-readable identifier.
	Name() string

	// Dependencies returns the container tokens the module requires.
	Dependencies() []Token

	// RegisterRoutes attaches the module's endpoints to the host.
	RegisterRoutes(host H) error
}

// Initializer is the optional first active bootstrap phase: acquiring
// connections, warming caches, registering event observers. Initialize runs
// before any module's middleware or routes, and an error (or panic) marks
// the module failed and skips its remaining phases.
type Initializer[H any] interface {
	Initialize(ctx context.Context, host H) error
}

// MiddlewareRegistrar is the optional middleware phase. The registry runs
// all middleware registration before any route registration, matching hosts
// like chi that reject middleware added after routes.
type MiddlewareRegistrar[H any] interface {
	RegisterMiddleware(host H) error
}

// BaseModule carries the name and dependency list shared by every module
// implementation, plus a no-op RegisterRoutes for modules with nothing to
// mount. Embed it and override what the feature needs.
type BaseModule[H any] struct {
	name string
	deps []Token
}

// NewBaseModule creates the embeddable core of a module.
func NewBaseModule[H any](name string, deps ...Token) BaseModule[H] {
	return BaseModule[H]{name: name, deps: deps}
}

// Name returns the module's identifier.
func (m BaseModule[H]) Name() string { return m.name }

// Dependencies returns a copy of the module's required tokens.
func (m BaseModule[H]) Dependencies() []Token {
	return slices.Clone(m.deps)
}

// RegisterRoutes mounts nothing. Modules with endpoints override it.
func (m BaseModule[H]) RegisterRoutes(H) error { return nil }
