package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Registry collects modules and bootstraps them against a host of type H.
// Bootstrap runs in four phases across all enabled modules: dependency
// validation, initialization, middleware registration, then route
// registration. Each phase completes for every module before the next phase
// starts, so no module mounts routes before every module's middleware is in
// place.
//
// A module failing any phase is reported and skipped for the remaining
// phases; the other modules continue. Bootstrap never panics and never
// returns an error: the Report carries the per-module outcomes.
type Registry[H any] struct {
	mu        sync.Mutex
	container *Container
	logger    Logger
	subject   Subject
	entries   []moduleEntry[H]
	index     map[string]int
	report    *Report
}

type moduleEntry[H any] struct {
	module   Module[H]
	disabled bool
}

// RegistryOption customizes a Registry at construction time.
type RegistryOption[H any] func(*Registry[H])

// WithSubject attaches an event subject; the registry then emits module
// registration, module failure, and bootstrap completion events through it.
func WithSubject[H any](subject Subject) RegistryOption[H] {
	return func(r *Registry[H]) {
		r.subject = subject
	}
}

// NewRegistry creates a registry that validates module dependencies against
// container and logs through logger.
func NewRegistry[H any](container *Container, logger Logger, opts ...RegistryOption[H]) *Registry[H] {
	if logger == nil {
		logger = noopLogger{}
	}
	r := &Registry[H]{
		container: container,
		logger:    logger,
		index:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// moduleSettings holds per-registration flags.
type moduleSettings struct {
	disabled bool
}

// ModuleOption customizes one module registration.
type ModuleOption func(*moduleSettings)

// WithDisabled registers the module but excludes it from bootstrap. Feature
// flags use this to keep wiring declarative while turning features off.
func WithDisabled() ModuleOption {
	return func(s *moduleSettings) {
		s.disabled = true
	}
}

// Register adds a module. Names must be unique within the registry; a
// duplicate fails with ErrModuleAlreadyRegistered and leaves the original
// in place. Registration order is preserved and drives bootstrap order.
func (r *Registry[H]) Register(module Module[H], opts ...ModuleOption) error {
	if module == nil {
		return ErrModuleNil
	}
	name := module.Name()
	if name == "" {
		return ErrModuleNameEmpty
	}
	var settings moduleSettings
	for _, opt := range opts {
		opt(&settings)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.index[name]; exists {
		return fmt.Errorf("%w: %q", ErrModuleAlreadyRegistered, name)
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, moduleEntry[H]{module: module, disabled: settings.disabled})

	r.logger.Debug("Registered module", "module", name, "disabled", settings.disabled)
	r.emit(context.Background(), EventTypeModuleRegistered, moduleEventData{Module: name})
	return nil
}

// RegisterAll registers modules in order. A failing registration does not
// stop the rest; the returned error joins the individual failures.
func (r *Registry[H]) RegisterAll(modules ...Module[H]) error {
	var errs []error
	for _, module := range modules {
		if err := r.Register(module); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Enabled returns the enabled modules in registration order.
func (r *Registry[H]) Enabled() []Module[H] {
	r.mu.Lock()
	defer r.mu.Unlock()
	enabled := make([]Module[H], 0, len(r.entries))
	for _, entry := range r.entries {
		if !entry.disabled {
			enabled = append(enabled, entry.module)
		}
	}
	return enabled
}

// Get returns the module registered under name, enabled or not.
func (r *Registry[H]) Get(name string) (Module[H], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.entries[i].module, true
}

// Has reports whether a module with name is registered.
func (r *Registry[H]) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.index[name]
	return ok
}

// Clear empties the registry and forgets any previous bootstrap, making the
// registry reusable. Tests lean on this for isolation.
func (r *Registry[H]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.index = make(map[string]int)
	r.report = nil
}

// Bootstrap runs the four bootstrap phases over every enabled module and
// returns the outcome. It runs at most once per registry: repeated calls
// log a warning and return the original report unchanged.
//
// Phase errors and panics are contained per module. A module that fails
// validation never initializes; a module that fails initialization never
// sees the middleware or routes phases.
func (r *Registry[H]) Bootstrap(ctx context.Context, host H) *Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.report != nil {
		r.logger.Warn("Bootstrap skipped", "error", ErrBootstrapAlreadyRun)
		return r.report
	}

	enabled := make([]Module[H], 0, len(r.entries))
	for _, entry := range r.entries {
		if entry.disabled {
			r.logger.Info("Skipping disabled module", "module", entry.module.Name())
			continue
		}
		enabled = append(enabled, entry.module)
	}

	failed := make(map[string]struct{}, len(enabled))
	var failures []ModuleFailure
	fail := func(name string, phase BootstrapPhase, err error) {
		failed[name] = struct{}{}
		failures = append(failures, ModuleFailure{Module: name, Phase: phase, Err: err})
		r.logger.Error("Module failed", "module", name, "phase", phase, "error", err)
		r.emit(ctx, EventTypeModuleFailed, moduleEventData{Module: name, Phase: string(phase), Error: err.Error()})
	}

	// Phase 1: every declared dependency must already be registered.
	for _, module := range enabled {
		var missing []string
		for _, token := range module.Dependencies() {
			if !r.container.Has(token) {
				missing = append(missing, string(token))
			}
		}
		if len(missing) > 0 {
			fail(module.Name(), PhaseValidate,
				fmt.Errorf("%w: %s", ErrMissingDependencies, strings.Join(missing, ", ")))
		}
	}

	// Phase 2: initialize modules that opt in.
	for _, module := range enabled {
		if _, skip := failed[module.Name()]; skip {
			continue
		}
		init, ok := module.(Initializer[H])
		if !ok {
			continue
		}
		r.logger.Debug("Initializing module", "module", module.Name())
		if err := safeInvoke(func() error { return init.Initialize(ctx, host) }); err != nil {
			fail(module.Name(), PhaseInitialize, err)
		}
	}

	// Phase 3: all middleware before any routes.
	for _, module := range enabled {
		if _, skip := failed[module.Name()]; skip {
			continue
		}
		mw, ok := module.(MiddlewareRegistrar[H])
		if !ok {
			continue
		}
		r.logger.Debug("Registering middleware", "module", module.Name())
		if err := safeInvoke(func() error { return mw.RegisterMiddleware(host) }); err != nil {
			fail(module.Name(), PhaseMiddleware, err)
		}
	}

	// Phase 4: routes.
	for _, module := range enabled {
		if _, skip := failed[module.Name()]; skip {
			continue
		}
		r.logger.Debug("Registering routes", "module", module.Name())
		if err := safeInvoke(func() error { return module.RegisterRoutes(host) }); err != nil {
			fail(module.Name(), PhaseRoutes, err)
		}
	}

	report := &Report{Failed: failures}
	for _, module := range enabled {
		if _, wasFailed := failed[module.Name()]; !wasFailed {
			report.Initialized = append(report.Initialized, module.Name())
		}
	}
	r.report = report

	r.logger.Info("Bootstrap complete",
		"initialized", report.Initialized, "failed", report.FailedNames())
	r.emit(ctx, EventTypeBootstrapCompleted, bootstrapEventData{
		Initialized: len(report.Initialized), Failed: len(report.Failed)})
	return report
}

// emit sends an event through the subject, if one is attached. Emission
// problems are logged and swallowed; eventing never disturbs bootstrap.
func (r *Registry[H]) emit(ctx context.Context, eventType string, data any) {
	if r.subject == nil {
		return
	}
	event := NewEvent(eventType, registryEventSource, data)
	if err := r.subject.NotifyObservers(ctx, event); err != nil {
		r.logger.Warn("Event emission failed", "type", eventType, "error", err)
	}
}

// safeInvoke runs fn, converting a panic into an error so one module's
// bug cannot unwind the whole bootstrap.
func safeInvoke(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrModulePanicked, rec)
		}
	}()
	return fn()
}
