// Command platformd runs the provenhq platform daemon: it assembles the
// service container, bootstraps the feature modules against a chi router,
// and serves HTTP until signaled to stop.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/provenhq/platform"
	"github.com/provenhq/platform/cache"
	"github.com/provenhq/platform/chain"
	"github.com/provenhq/platform/database"
	"github.com/provenhq/platform/logging"
	"github.com/provenhq/platform/modules/authn"
	"github.com/provenhq/platform/modules/configwatch"
	"github.com/provenhq/platform/modules/health"
	"github.com/provenhq/platform/modules/metrics"
	"github.com/provenhq/platform/modules/reqscope"
	"github.com/provenhq/platform/modules/scheduler"
)

func main() {
	configPath := flag.String("config", "", "path to a yaml, toml, or json config file")
	addr := flag.String("addr", "", "listen address override")
	flag.Parse()

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintln(os.Stderr, "platformd:", err)
		os.Exit(1)
	}
}

func run(configPath, addrOverride string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if addrOverride != "" {
		cfg.Server.Addr = addrOverride
	}

	logger, err := logging.NewZap(cfg.Environment)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	broker := platform.NewBroker(logger)
	if err := broker.RegisterObserver(eventLogObserver(logger)); err != nil {
		return err
	}

	ctx := context.Background()
	container := platform.New(platform.WithLogger(logger))
	if err := populateContainer(container, cfg, logger, broker); err != nil {
		return fmt.Errorf("populate container: %w", err)
	}
	defer func() {
		teardownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := container.Clear(teardownCtx); err != nil {
			logger.Error("Container teardown failed", "error", err)
		}
	}()

	router := chi.NewRouter()
	registry := platform.NewRegistry[chi.Router](container, logger, platform.WithSubject[chi.Router](broker))
	if err := registry.RegisterAll(
		reqscope.New(container),
		metrics.New(container),
		authn.New(container),
		health.New(container, health.WithCheck("chain", chainCheck(container))),
		scheduler.New(container,
			scheduler.WithJob("db-checkpoint", "@every 1h", checkpointJob(container, logger)),
		),
		configwatch.New(container, watchPaths(configPath)...),
	); err != nil {
		return fmt.Errorf("register modules: %w", err)
	}

	report := registry.Bootstrap(ctx, router)
	for _, failure := range report.Failed {
		logger.Error("Module failed to bootstrap",
			"module", failure.Module, "phase", string(failure.Phase), "error", failure.Err)
	}
	if len(report.Initialized) == 0 {
		return errors.New("no modules initialized")
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", cfg.Server.Addr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case sig := <-sigCh:
		logger.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// populateContainer registers every service the modules depend on.
func populateContainer(c *platform.Container, cfg *appConfig, logger platform.Logger, broker *platform.Broker) error {
	if err := c.RegisterInstance(platform.TokenLogger, logger); err != nil {
		return err
	}
	if err := c.RegisterInstance(platform.TokenConfig, platform.NewStdConfigProvider(cfg)); err != nil {
		return err
	}
	if err := c.RegisterInstance(platform.TokenEvents, broker); err != nil {
		return err
	}
	if err := c.RegisterInstance(platform.TokenAuthConfig, &cfg.Auth); err != nil {
		return err
	}
	if err := c.RegisterInstance(platform.TokenMetrics, prometheus.NewRegistry()); err != nil {
		return err
	}
	if err := c.RegisterInstance(platform.TokenChain, chain.NewNoop()); err != nil {
		return err
	}

	err := c.RegisterFactory(platform.TokenCache, func(ctx context.Context, _ *platform.Container) (any, error) {
		engine, err := cache.New(&cfg.Cache)
		if err != nil {
			return nil, err
		}
		if err := engine.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		return engine, nil
	}, platform.WithLifecycle(platform.Lifecycle{
		OnDestroy: func(ctx context.Context, instance any) error {
			return instance.(cache.Engine).Close(ctx)
		},
	}))
	if err != nil {
		return err
	}

	err = c.RegisterFactory(platform.TokenDatabase, func(_ context.Context, _ *platform.Container) (any, error) {
		return database.Open(&cfg.Database)
	}, platform.WithLifecycle(platform.Lifecycle{
		OnDestroy: func(_ context.Context, instance any) error {
			return instance.(*sql.DB).Close()
		},
	}))
	if err != nil {
		return err
	}

	runner := scheduler.NewRunner(logger)
	err = c.RegisterInstance(platform.TokenScheduler, runner, platform.WithLifecycle(platform.Lifecycle{
		OnDestroy: func(ctx context.Context, instance any) error {
			return instance.(*scheduler.Runner).Stop(ctx)
		},
	}))
	if err != nil {
		return err
	}

	watcher, err := configwatch.NewWatcher(logger, broker)
	if err != nil {
		return err
	}
	return c.RegisterInstance(platform.TokenWatcher, watcher, platform.WithLifecycle(platform.Lifecycle{
		OnDestroy: func(_ context.Context, instance any) error {
			return instance.(*configwatch.Watcher).Close()
		},
	}))
}

// eventLogObserver surfaces platform events in the logs: config drift at
// info, the bootstrap chatter at debug.
func eventLogObserver(logger platform.Logger) platform.ObserverFunc {
	return platform.ObserverFunc{
		ID: "platformd.eventlog",
		Fn: func(_ context.Context, event cloudevents.Event) error {
			if event.Type() == platform.EventTypeConfigChanged {
				var change configwatch.ChangeData
				_ = event.DataAs(&change)
				logger.Info("Config file changed on disk, restart to apply", "path", change.Path)
				return nil
			}
			logger.Debug("Platform event", "type", event.Type(), "source", event.Source())
			return nil
		},
	}
}

// chainCheck verifies the chain client answers status queries.
func chainCheck(c *platform.Container) health.Check {
	return func(ctx context.Context) error {
		client, err := platform.As[chain.Client](ctx, c, platform.TokenChain)
		if err != nil {
			return err
		}
		_, err = client.AssetStatus(ctx, "health-probe")
		return err
	}
}

// checkpointJob folds the sqlite WAL back into the main database file so
// the log cannot grow unbounded between deploys.
func checkpointJob(c *platform.Container, logger platform.Logger) scheduler.Job {
	return func(ctx context.Context) {
		db, err := platform.As[*sql.DB](ctx, c, platform.TokenDatabase)
		if err != nil {
			logger.Error("Checkpoint skipped", "error", err)
			return
		}
		if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			logger.Error("WAL checkpoint failed", "error", err)
			return
		}
		logger.Debug("WAL checkpoint complete")
	}
}

func watchPaths(configPath string) []string {
	if configPath == "" {
		return nil
	}
	return []string{configPath}
}
