package platform

// Scope defines the lifecycle and instantiation behavior of services
// resolved from a Container.
//
// The scope determines how many instances of a service can exist, when they
// are created, and how long the container caches them.
type Scope string

const (
	// ScopeSingleton creates a single instance that is shared for the
	// lifetime of the container. The instance is created on first resolve
	// and reused for all subsequent resolves.
	ScopeSingleton Scope = "singleton"

	// ScopeTransient creates a new instance on every resolve. No caching is
	// performed and each instance is independent.
	ScopeTransient Scope = "transient"

	// ScopeRequest creates one instance per request id. Resolves carrying
	// the same request id share the instance until the request scope is
	// cleared. Resolves without a request id fall back to transient
	// behavior.
	ScopeRequest Scope = "request"
)

// String returns the string representation of the scope.
func (s Scope) String() string {
	return string(s)
}

// IsValid returns true if the scope is one of the defined constants.
func (s Scope) IsValid() bool {
	switch s {
	case ScopeSingleton, ScopeTransient, ScopeRequest:
		return true
	default:
		return false
	}
}
