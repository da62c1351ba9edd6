// Package configwatch emits a platform event whenever a watched config
// file changes on disk, so operators can see stale-config drift and other
// modules can react without polling. The watcher lives in the container;
// its Close rides the container teardown.
package configwatch

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/provenhq/platform"
)

// ModuleName identifies the module in registry reports.
const ModuleName = "configwatch"

var (
	_ platform.Module[chi.Router]      = (*Module)(nil)
	_ platform.Initializer[chi.Router] = (*Module)(nil)
)

// Module points the shared watcher at the config files named at
// construction and starts it.
type Module struct {
	platform.BaseModule[chi.Router]
	container *platform.Container
	paths     []string
}

// New creates the configwatch module for the given file paths.
func New(container *platform.Container, paths ...string) *Module {
	return &Module{
		BaseModule: platform.NewBaseModule[chi.Router](ModuleName, platform.TokenWatcher),
		container:  container,
		paths:      paths,
	}
}

// Initialize resolves the watcher, registers every path, and starts the
// event loop. A path whose directory cannot be watched fails the module.
func (m *Module) Initialize(ctx context.Context, _ chi.Router) error {
	watcher, err := platform.As[*Watcher](ctx, m.container, platform.TokenWatcher)
	if err != nil {
		return err
	}
	for _, path := range m.paths {
		if err := watcher.Watch(path); err != nil {
			return err
		}
	}
	watcher.Start()
	return nil
}
