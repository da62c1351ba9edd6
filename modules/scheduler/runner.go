package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/provenhq/platform"
)

var ErrJobAlreadyScheduled = errors.New("job already scheduled")

// Job is one unit of background work. The ctx is canceled when the runner
// stops, so long-running jobs should watch it.
type Job func(ctx context.Context)

// Runner drives scheduled jobs on a cron timetable. It is registered in the
// container so its shutdown rides the container's OnDestroy sweep.
type Runner struct {
	logger platform.Logger
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
	names   []string
	entries map[string]cron.EntryID
}

// NewRunner creates a stopped runner. Specs use the standard five-field
// cron syntax plus descriptors like "@every 5m".
func NewRunner(logger platform.Logger) *Runner {
	if logger == nil {
		logger = platform.NopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		logger:  logger,
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger{logger: logger}))),
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]cron.EntryID),
	}
}

// AddJob schedules job under a unique name. Jobs can be added while the
// runner is live.
func (r *Runner) AddJob(name, spec string, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %q", ErrJobAlreadyScheduled, name)
	}

	id, err := r.cron.AddFunc(spec, func() {
		r.logger.Debug("Running job", "job", name)
		job(r.ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", name, err)
	}
	r.entries[name] = id
	r.names = append(r.names, name)
	r.logger.Info("Scheduled job", "job", name, "spec", spec)
	return nil
}

// Start begins dispatching. Starting a started runner is a no-op.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return
	}
	r.cron.Start()
	r.started = true
	r.logger.Info("Scheduler started", "jobs", len(r.entries))
}

// Stop cancels job contexts and waits for in-flight jobs to finish, up to
// ctx's deadline.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return nil
	}
	r.cancel()

	select {
	case <-r.cron.Stop().Done():
		r.logger.Info("Scheduler stopped")
	case <-ctx.Done():
		r.logger.Warn("Scheduler shutdown timed out")
		return fmt.Errorf("scheduler shutdown: %w", ctx.Err())
	}
	r.started = false
	return nil
}

// Jobs returns the scheduled job names in registration order.
func (r *Runner) Jobs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.names)
}

// cronLogger adapts the platform logger to cron's logging interface. Cron's
// informational chatter lands at debug.
type cronLogger struct {
	logger platform.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
