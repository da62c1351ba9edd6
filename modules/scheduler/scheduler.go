// Package scheduler runs background jobs on cron schedules. The module owns
// job registration during bootstrap; the runner itself lives in the
// container so teardown happens with every other managed service.
package scheduler

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/provenhq/platform"
)

// ModuleName identifies the module in registry reports.
const ModuleName = "scheduler"

var (
	_ platform.Module[chi.Router]      = (*Module)(nil)
	_ platform.Initializer[chi.Router] = (*Module)(nil)
)

type jobSpec struct {
	name string
	spec string
	job  Job
}

// Module registers its configured jobs with the shared runner and starts it.
type Module struct {
	platform.BaseModule[chi.Router]
	container *platform.Container
	jobs      []jobSpec
}

// Option adds jobs to the module before bootstrap.
type Option func(*Module)

// WithJob schedules job under name on the given cron spec.
func WithJob(name, spec string, job Job) Option {
	return func(m *Module) {
		m.jobs = append(m.jobs, jobSpec{name: name, spec: spec, job: job})
	}
}

// New creates the scheduler module.
func New(container *platform.Container, opts ...Option) *Module {
	m := &Module{
		BaseModule: platform.NewBaseModule[chi.Router](ModuleName, platform.TokenScheduler),
		container:  container,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize resolves the runner, adds every configured job, and starts
// dispatching. A bad cron spec fails the module during bootstrap rather
// than at first fire.
func (m *Module) Initialize(ctx context.Context, _ chi.Router) error {
	runner, err := platform.As[*Runner](ctx, m.container, platform.TokenScheduler)
	if err != nil {
		return err
	}
	for _, j := range m.jobs {
		if err := runner.AddJob(j.name, j.spec, j.job); err != nil {
			return err
		}
	}
	runner.Start()
	return nil
}
