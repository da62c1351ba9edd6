package platform

import (
	"errors"
)

// Container errors
var (
	ErrTokenNotRegistered     = errors.New("token not registered")
	ErrTokenAlreadyRegistered = errors.New("token already registered")
	ErrCircularDependency     = errors.New("circular dependency detected")
	ErrNilConstructor         = errors.New("constructor is nil")
	ErrNilFactory             = errors.New("factory is nil")
	ErrNilInstance            = errors.New("instance is nil")
	ErrInvalidScope           = errors.New("invalid service scope")
	ErrInstanceScope          = errors.New("instance registrations are always singleton scoped")
	ErrLifecycleHook          = errors.New("lifecycle hook failed")
	ErrIncompatibleType       = errors.New("service has incompatible type")
	ErrScopeClosed            = errors.New("request scope already closed")
)

// Registry errors
var (
	ErrModuleNil               = errors.New("module is nil")
	ErrModuleNameEmpty         = errors.New("module name is empty")
	ErrModuleAlreadyRegistered = errors.New("module already registered")
	ErrMissingDependencies     = errors.New("missing dependencies")
	ErrModulePanicked          = errors.New("module panicked")
	ErrBootstrapAlreadyRun     = errors.New("bootstrap already run")
)

// Config errors
var (
	ErrConfigNotPointer       = errors.New("config must be a non-nil struct pointer")
	ErrUnsupportedDefaultType = errors.New("unsupported type for default value")
	ErrDefaultValueParse      = errors.New("failed to parse default value")
)

// Event errors
var (
	ErrObserverNil               = errors.New("observer is nil")
	ErrObserverAlreadyRegistered = errors.New("observer already registered")
)
