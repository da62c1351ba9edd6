package cache

import (
	"context"
	"sync"
	"time"
)

// Memory implements Engine with an in-process map and a background sweep
// of expired items. It is the default backend for single-node deployments
// and tests.
type Memory struct {
	config *Config

	mu    sync.RWMutex
	items map[string]memoryItem

	cancelSweep context.CancelFunc
}

type memoryItem struct {
	value      any
	expiration time.Time
}

// NewMemory creates an unconnected memory engine.
func NewMemory(cfg *Config) *Memory {
	return &Memory{
		config: cfg,
		items:  make(map[string]memoryItem),
	}
}

// Connect starts the expiry sweep goroutine.
func (m *Memory) Connect(_ context.Context) error {
	sweepCtx, cancel := context.WithCancel(context.Background())
	m.cancelSweep = cancel
	go m.sweep(sweepCtx)
	return nil
}

// Close stops the expiry sweep.
func (m *Memory) Close(_ context.Context) error {
	if m.cancelSweep != nil {
		m.cancelSweep()
	}
	return nil
}

// Get retrieves an unexpired item.
func (m *Memory) Get(_ context.Context, key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, found := m.items[key]
	if !found {
		return nil, false
	}
	if !item.expiration.IsZero() && time.Now().After(item.expiration) {
		return nil, false
	}
	return item.value, true
}

// Set stores an item, rejecting new keys once MaxItems is reached.
func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config.MaxItems > 0 && len(m.items) >= m.config.MaxItems {
		if _, exists := m.items[key]; !exists {
			return ErrCacheFull
		}
	}

	var exp time.Time
	if effective := m.config.ttlOrDefault(ttl); effective > 0 {
		exp = time.Now().Add(effective)
	}
	m.items[key] = memoryItem{value: value, expiration: exp}
	return nil
}

// Delete removes an item.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Flush removes all items.
func (m *Memory) Flush(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]memoryItem)
	return nil
}

// sweep drops expired items on the configured interval until Close.
func (m *Memory) sweep(ctx context.Context) {
	interval := m.config.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for key, item := range m.items {
				if !item.expiration.IsZero() && now.After(item.expiration) {
					delete(m.items, key)
				}
			}
			m.mu.Unlock()
		}
	}
}
