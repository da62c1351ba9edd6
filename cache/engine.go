// Package cache provides the cache store platformd shares across feature
// modules: a single Engine interface with in-memory and Redis backends.
// The composition root picks a backend from configuration and binds it
// into the container; modules only ever see the interface.
package cache

import (
	"context"
	"time"
)

// Engine is the contract cache backends implement. All operations are
// context-first; Connect must be called before use and Close releases the
// backend when the container tears the engine down.
type Engine interface {
	// Connect establishes the connection to the cache backend.
	Connect(ctx context.Context) error

	// Close releases the connection to the cache backend.
	Close(ctx context.Context) error

	// Get retrieves an item. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) (any, bool)

	// Set stores an item with a TTL. A zero ttl uses the configured
	// default; a negative ttl stores without expiry.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes an item. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Flush removes all items.
	Flush(ctx context.Context) error
}

// New builds the engine selected by cfg.Engine ("memory" or "redis").
func New(cfg *Config) (Engine, error) {
	switch cfg.Engine {
	case "", EngineMemory:
		return NewMemory(cfg), nil
	case EngineRedis:
		return NewRedis(cfg), nil
	default:
		return nil, ErrUnknownEngine
	}
}
