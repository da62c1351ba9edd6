package platform

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// resolutionKey carries a *resolution through the context so factory
// callbacks stay part of the resolve that invoked them.
type resolutionKey struct{}

// resolution is the per-call state of one top-level resolve: the set of
// tokens currently being constructed (for cycle detection), the path that
// led here (for error messages), and the request id in effect.
type resolution struct {
	requestID string
	resolving map[Token]struct{}
	chain     []Token
}

func newResolution(requestID string) *resolution {
	return &resolution{
		requestID: requestID,
		resolving: make(map[Token]struct{}),
	}
}

// Resolve returns the instance registered under token, constructing it and
// any declared dependencies as needed. Scope decides whether the result
// comes from a cache: singletons are built once, transients every time, and
// request-scoped services behave as transient here because no request id is
// in effect (use ResolveRequest or a RequestScope for those).
//
// Construction inside a resolve is depth-first: dependencies are fully
// resolved, in declaration order, before the dependent's constructor runs.
// A token that is part of its own dependency chain fails with
// ErrCircularDependency naming the full chain.
func (c *Container) Resolve(ctx context.Context, token Token) (any, error) {
	return c.resolveEntry(ctx, token, "")
}

// ResolveRequest is Resolve with a request id in effect: request-scoped
// services resolved anywhere in the dependency tree are cached under
// requestID and shared by later resolves carrying the same id, until
// ClearRequestScope discards them. An empty requestID behaves like Resolve.
func (c *Container) ResolveRequest(ctx context.Context, token Token, requestID string) (any, error) {
	return c.resolveEntry(ctx, token, requestID)
}

// MustResolve is Resolve for wiring that cannot meaningfully continue on
// failure, such as composition-root startup. It panics on error.
func (c *Container) MustResolve(ctx context.Context, token Token) any {
	instance, err := c.Resolve(ctx, token)
	if err != nil {
		panic(err)
	}
	return instance
}

// ResolveMany resolves every token in order, failing fast on the first
// error. The returned slice lines up with tokens.
func (c *Container) ResolveMany(ctx context.Context, tokens ...Token) ([]any, error) {
	instances := make([]any, len(tokens))
	for i, token := range tokens {
		instance, err := c.Resolve(ctx, token)
		if err != nil {
			return nil, err
		}
		instances[i] = instance
	}
	return instances, nil
}

// As resolves token from c and type-asserts the instance to T.
func As[T any](ctx context.Context, c *Container, token Token) (T, error) {
	var zero T
	instance, err := c.Resolve(ctx, token)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q is %T, want %s",
			ErrIncompatibleType, token, instance, reflect.TypeOf((*T)(nil)).Elem())
	}
	return typed, nil
}

// resolveEntry picks up an in-flight resolution from the context or starts
// a fresh one. A factory that calls back into the container inherits the
// caller's resolution, keeping cycle detection and request ids intact
// across the callback boundary.
func (c *Container) resolveEntry(ctx context.Context, token Token, requestID string) (any, error) {
	res, ok := ctx.Value(resolutionKey{}).(*resolution)
	if !ok || (requestID != "" && res.requestID != requestID) {
		res = newResolution(requestID)
		ctx = context.WithValue(ctx, resolutionKey{}, res)
	}
	return c.resolve(ctx, token, res)
}

func (c *Container) resolve(ctx context.Context, token Token, res *resolution) (any, error) {
	if _, active := res.resolving[token]; active {
		return nil, fmt.Errorf("%w: %s", ErrCircularDependency, res.describeCycle(token))
	}
	res.resolving[token] = struct{}{}
	res.chain = append(res.chain, token)
	defer func() {
		delete(res.resolving, token)
		res.chain = res.chain[:len(res.chain)-1]
	}()

	c.mu.RLock()
	reg, registered := c.registrations[token]
	c.mu.RUnlock()
	if !registered {
		if n := len(res.chain); n > 1 {
			return nil, fmt.Errorf("%w: %q (required by %q)", ErrTokenNotRegistered, token, res.chain[n-2])
		}
		return nil, fmt.Errorf("%w: %q", ErrTokenNotRegistered, token)
	}

	if instance, hit := c.cached(reg, res.requestID); hit {
		return instance, nil
	}

	instance, err := c.build(ctx, reg, res)
	if err != nil {
		return nil, err
	}

	// Bound instances already ran OnInit at registration.
	if reg.lifecycle.OnInit != nil && reg.instance == nil {
		if err := reg.lifecycle.OnInit(ctx, instance); err != nil {
			return nil, fmt.Errorf("%w: onInit for %q: %w", ErrLifecycleHook, token, err)
		}
	}

	return c.cache(reg, res.requestID, instance), nil
}

// describeCycle renders the dependency path that closed the loop, e.g.
// "a -> b -> c -> a".
func (res *resolution) describeCycle(token Token) string {
	parts := make([]string, 0, len(res.chain)+1)
	for _, tok := range res.chain {
		parts = append(parts, string(tok))
	}
	parts = append(parts, string(token))
	return strings.Join(parts, " -> ")
}

// cached consults the scope-appropriate cache for reg.
func (c *Container) cached(reg *registration, requestID string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case reg.instance != nil, reg.scope == ScopeSingleton:
		instance, hit := c.singletons[reg.token]
		return instance, hit
	case reg.scope == ScopeRequest && requestID != "":
		instance, hit := c.requests[requestID][reg.token]
		return instance, hit
	default:
		return nil, false
	}
}

// build constructs a new instance for reg, resolving declared dependencies
// depth-first through the same resolution state.
func (c *Container) build(ctx context.Context, reg *registration, res *resolution) (any, error) {
	if reg.instance != nil {
		return reg.instance, nil
	}
	if reg.factory != nil {
		instance, err := reg.factory(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("factory for %q: %w", reg.token, err)
		}
		return instance, nil
	}

	args := make([]any, len(reg.deps))
	for i, dep := range reg.deps {
		instance, err := c.resolve(ctx, dep, res)
		if err != nil {
			return nil, err
		}
		args[i] = instance
	}
	instance, err := reg.ctor(args...)
	if err != nil {
		return nil, fmt.Errorf("constructor for %q: %w", reg.token, err)
	}
	return instance, nil
}

// cache stores instance per the registration's scope and returns the value
// future resolves will see. Under concurrent resolves of the same singleton
// the first write wins and later builders adopt the cached instance, so all
// callers agree on one value.
func (c *Container) cache(reg *registration, requestID string, instance any) any {
	switch {
	case reg.scope == ScopeSingleton:
		c.mu.Lock()
		defer c.mu.Unlock()
		if prior, hit := c.singletons[reg.token]; hit {
			return prior
		}
		c.singletons[reg.token] = instance
		c.order = append(c.order, reg.token)
		c.logger.Debug("Cached singleton", "token", reg.token)
	case reg.scope == ScopeRequest && requestID != "":
		c.mu.Lock()
		defer c.mu.Unlock()
		bucket := c.requests[requestID]
		if bucket == nil {
			bucket = make(map[Token]any)
			c.requests[requestID] = bucket
		}
		if prior, hit := bucket[reg.token]; hit {
			return prior
		}
		bucket[reg.token] = instance
		c.requestOrder[requestID] = append(c.requestOrder[requestID], reg.token)
		c.logger.Debug("Cached request-scoped instance", "token", reg.token, "requestID", requestID)
	}
	return instance
}
