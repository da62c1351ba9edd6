package platform

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Container is a token-addressed dependency injection container. Services
// are registered under opaque string tokens and resolved on demand; the
// container tracks scope-appropriate caches and runs lifecycle hooks as
// instances appear and disappear.
//
// All methods are safe for concurrent use. Registration is expected to
// happen up front in the composition root, but nothing prevents registering
// while other goroutines resolve.
type Container struct {
	mu     sync.RWMutex
	logger Logger

	registrations map[Token]*registration

	// singletons caches one instance per singleton token; order remembers
	// creation order so Clear can destroy in reverse.
	singletons map[Token]any
	order      []Token

	// requests caches request-scoped instances per request id, with a
	// parallel creation-order list per id.
	requests     map[string]map[Token]any
	requestOrder map[string][]Token
}

// ContainerOption customizes a Container at construction time.
type ContainerOption func(*Container)

// WithLogger sets the logger the container uses for registration and
// lifecycle events. Containers without one log nowhere.
func WithLogger(logger Logger) ContainerOption {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an empty container.
func New(opts ...ContainerOption) *Container {
	c := &Container{
		logger:        noopLogger{},
		registrations: make(map[Token]*registration),
		singletons:    make(map[Token]any),
		requests:      make(map[string]map[Token]any),
		requestOrder:  make(map[string][]Token),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register binds token to a constructor. The constructor runs lazily on
// first resolve (or on every resolve, depending on scope), receiving the
// instances for the tokens declared via WithDependencies in order.
//
// Registering an already-registered token fails with
// ErrTokenAlreadyRegistered unless WithReplace is given.
func (c *Container) Register(token Token, ctor Constructor, opts ...RegisterOption) error {
	if ctor == nil {
		return fmt.Errorf("%w: %q", ErrNilConstructor, token)
	}
	reg := &registration{token: token, scope: ScopeSingleton, ctor: ctor}
	for _, opt := range opts {
		opt(reg)
	}
	if !reg.scope.IsValid() {
		return fmt.Errorf("%w: %q for token %q", ErrInvalidScope, reg.scope, token)
	}
	return c.insert(reg)
}

// RegisterFactory binds token to a factory invoked according to the
// registration's scope. Unlike constructors, factories receive the container
// itself and perform their own lookups, so WithDependencies has no effect on
// them.
func (c *Container) RegisterFactory(token Token, factory Factory, opts ...RegisterOption) error {
	if factory == nil {
		return fmt.Errorf("%w: %q", ErrNilFactory, token)
	}
	reg := &registration{token: token, scope: ScopeSingleton, factory: factory}
	for _, opt := range opts {
		opt(reg)
	}
	if !reg.scope.IsValid() {
		return fmt.Errorf("%w: %q for token %q", ErrInvalidScope, reg.scope, token)
	}
	return c.insert(reg)
}

// RegisterInstance binds token to an already-constructed instance; every
// resolve returns the same value. An OnInit hook runs synchronously here,
// at registration, and its error fails the registration with nothing
// stored. Instance registrations are inherently singleton; requesting
// another scope fails with ErrInstanceScope.
func (c *Container) RegisterInstance(token Token, instance any, opts ...RegisterOption) error {
	if instance == nil {
		return fmt.Errorf("%w: %q", ErrNilInstance, token)
	}
	reg := &registration{token: token, scope: ScopeSingleton, instance: instance}
	for _, opt := range opts {
		opt(reg)
	}
	if reg.scope != ScopeSingleton {
		return fmt.Errorf("%w: token %q requested %q", ErrInstanceScope, token, reg.scope)
	}
	if c.Has(token) && !reg.replace {
		return fmt.Errorf("%w: %q", ErrTokenAlreadyRegistered, token)
	}
	if reg.lifecycle.OnInit != nil {
		if err := reg.lifecycle.OnInit(context.Background(), instance); err != nil {
			return fmt.Errorf("%w: onInit for %q: %w", ErrLifecycleHook, token, err)
		}
	}
	return c.insert(reg)
}

// insert adds a fully-built registration record under the container lock.
func (c *Container) insert(reg *registration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prior, exists := c.registrations[reg.token]; exists {
		if !reg.replace {
			return fmt.Errorf("%w: %q", ErrTokenAlreadyRegistered, reg.token)
		}
		c.discardLocked(context.Background(), prior)
		c.logger.Debug("Replacing service registration", "token", reg.token)
	}

	c.registrations[reg.token] = reg
	if reg.instance != nil {
		// Bound instances count as instantiated from the moment of
		// registration, so Clear can destroy them without a prior resolve.
		c.singletons[reg.token] = reg.instance
		c.order = append(c.order, reg.token)
	}
	c.logger.Debug("Registered service", "token", reg.token, "scope", reg.scope)
	return nil
}

// discardLocked drops every cached instance for prior's token, running its
// OnDestroy hook. Callers hold the write lock.
func (c *Container) discardLocked(ctx context.Context, prior *registration) {
	if inst, ok := c.singletons[prior.token]; ok {
		delete(c.singletons, prior.token)
		for i, tok := range c.order {
			if tok == prior.token {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
		c.destroy(ctx, prior, inst)
	}
	for id, bucket := range c.requests {
		if inst, ok := bucket[prior.token]; ok {
			delete(bucket, prior.token)
			order := c.requestOrder[id]
			for i, tok := range order {
				if tok == prior.token {
					c.requestOrder[id] = append(order[:i], order[i+1:]...)
					break
				}
			}
			c.destroy(ctx, prior, inst)
		}
	}
}

// destroy runs a registration's OnDestroy hook for one instance. Hook
// errors and panics are logged and returned, never propagated as panics,
// so teardown always makes it through the full instance list.
func (c *Container) destroy(ctx context.Context, reg *registration, instance any) (err error) {
	if reg == nil || reg.lifecycle.OnDestroy == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("onDestroy for %q panicked: %v", reg.token, r)
			c.logger.Error("OnDestroy panicked", "token", reg.token, "panic", r)
		}
	}()
	if err := reg.lifecycle.OnDestroy(ctx, instance); err != nil {
		c.logger.Error("OnDestroy failed", "token", reg.token, "error", err)
		return fmt.Errorf("onDestroy for %q: %w", reg.token, err)
	}
	return nil
}

// Has reports whether token is registered. It never triggers instantiation.
func (c *Container) Has(token Token) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.registrations[token]
	return ok
}

// Tokens returns all registered tokens in lexical order.
func (c *Container) Tokens() []Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tokens := make([]Token, 0, len(c.registrations))
	for tok := range c.registrations {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })
	return tokens
}

// Clear fully resets the container: every request scope is cleared, every
// instantiated singleton is destroyed in reverse creation order, and all
// registrations are removed. OnDestroy failures never abort the sweep; the
// returned error joins them. The container is reusable afterwards.
func (c *Container) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for id := range c.requests {
		errs = append(errs, c.clearRequestLocked(ctx, id))
	}
	for i := len(c.order) - 1; i >= 0; i-- {
		tok := c.order[i]
		errs = append(errs, c.destroy(ctx, c.registrations[tok], c.singletons[tok]))
		delete(c.singletons, tok)
	}
	c.order = nil
	c.registrations = make(map[Token]*registration)
	c.logger.Debug("Container cleared")
	return errors.Join(errs...)
}

// ClearRequestScope destroys every instance cached under requestID, in
// reverse creation order, and forgets the request. Unknown request ids are
// a no-op. Registrations are untouched.
func (c *Container) ClearRequestScope(ctx context.Context, requestID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.clearRequestLocked(ctx, requestID); err != nil {
		c.logger.Error("Request scope teardown errors", "requestID", requestID, "error", err)
	}
}

func (c *Container) clearRequestLocked(ctx context.Context, requestID string) error {
	bucket, ok := c.requests[requestID]
	if !ok {
		return nil
	}
	var errs []error
	order := c.requestOrder[requestID]
	for i := len(order) - 1; i >= 0; i-- {
		tok := order[i]
		errs = append(errs, c.destroy(ctx, c.registrations[tok], bucket[tok]))
	}
	delete(c.requests, requestID)
	delete(c.requestOrder, requestID)
	c.logger.Debug("Request scope cleared", "requestID", requestID)
	return errors.Join(errs...)
}

// CreateChild returns a new container seeded with a snapshot of the
// parent's current registrations. Instances the parent has already resolved
// do not carry over, and later registrations on either container are
// invisible to the other. Children are how tests override individual tokens
// without disturbing shared wiring.
func (c *Container) CreateChild() *Container {
	c.mu.RLock()
	defer c.mu.RUnlock()

	child := New(WithLogger(c.logger))
	for tok, reg := range c.registrations {
		cp := *reg
		child.registrations[tok] = &cp
	}
	return child
}
