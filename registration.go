package platform

import (
	"context"
)

// Constructor builds a service instance from its resolved dependencies.
// The container resolves the tokens declared with WithDependencies and
// passes the instances in declaration order. Returning an error aborts the
// resolve that triggered construction.
type Constructor func(deps ...any) (any, error)

// Factory builds a service instance with direct access to the container.
// Factories are for services whose wiring cannot be expressed as a flat
// dependency list: conditional lookups, late binding, or per-call decisions.
// Resolutions performed through c inside the factory stay part of the
// calling resolve, so circular dependencies are still detected and request
// ids still propagate.
type Factory func(ctx context.Context, c *Container) (any, error)

// Lifecycle carries optional hooks run around a service instance's life.
//
// OnInit runs synchronously after the container constructs an instance and
// before the instance is cached or returned; an error fails the resolve and
// the instance is discarded. For instances bound with RegisterInstance the
// hook runs once at registration instead, and its error fails the
// registration.
//
// OnDestroy runs when the container discards an instance during Clear,
// ClearRequestScope, or a WithReplace registration. OnDestroy failures are
// logged and joined into Clear's return value; they never abort teardown.
type Lifecycle struct {
	OnInit    func(ctx context.Context, instance any) error
	OnDestroy func(ctx context.Context, instance any) error
}

// registration is the container's record for one token. Exactly one of
// ctor, factory, or instance is set. Records are immutable once inserted;
// WithReplace swaps the whole record rather than mutating it.
type registration struct {
	token     Token
	scope     Scope
	ctor      Constructor
	deps      []Token
	factory   Factory
	instance  any
	lifecycle Lifecycle
	replace   bool
}

// RegisterOption customizes a single registration.
type RegisterOption func(*registration)

// WithScope sets the caching scope for the registration. The default is
// ScopeSingleton.
func WithScope(scope Scope) RegisterOption {
	return func(r *registration) {
		r.scope = scope
	}
}

// WithDependencies declares the tokens a Constructor needs, in the order
// the constructor expects them. Factories and instances ignore it.
func WithDependencies(tokens ...Token) RegisterOption {
	return func(r *registration) {
		r.deps = tokens
	}
}

// WithLifecycle attaches OnInit and OnDestroy hooks to the registration.
func WithLifecycle(lc Lifecycle) RegisterOption {
	return func(r *registration) {
		r.lifecycle = lc
	}
}

// WithReplace allows the registration to overwrite an existing one for the
// same token. Without it, duplicate tokens fail with
// ErrTokenAlreadyRegistered. Replacing discards any instance the previous
// registration had cached, running its OnDestroy hook.
func WithReplace() RegisterOption {
	return func(r *registration) {
		r.replace = true
	}
}
