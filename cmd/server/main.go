// Command server runs the DagFlow workflow engine with its HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	appengine "github.com/dagflow-io/dagflow/internal/application/engine"
	"github.com/dagflow-io/dagflow/internal/application/observer"
	"github.com/dagflow-io/dagflow/internal/application/trigger"
	"github.com/dagflow-io/dagflow/internal/config"
	"github.com/dagflow-io/dagflow/internal/domain/repository"
	"github.com/dagflow-io/dagflow/internal/infrastructure/api/rest"
	rediscache "github.com/dagflow-io/dagflow/internal/infrastructure/cache"
	"github.com/dagflow-io/dagflow/internal/infrastructure/logger"
	"github.com/dagflow-io/dagflow/internal/infrastructure/storage"
	dagcache "github.com/dagflow-io/dagflow/pkg/cache"
	"github.com/dagflow-io/dagflow/pkg/engine"
	"github.com/dagflow-io/dagflow/pkg/executor"
	"github.com/dagflow-io/dagflow/pkg/executor/builtin"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logger.SetDefault(log)

	// Storage: Postgres when a database URL is configured, in-memory
	// otherwise.
	var store repository.Store
	if cfg.Database.URL != "" {
		db := storage.NewDB(cfg.Database)
		defer db.Close()

		if err := storage.Migrate(context.Background(), db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		store = storage.NewPostgresStore(db)
		log.Info("using postgres storage")
	} else {
		store = storage.NewMemoryStore()
		log.Info("using in-memory storage")
	}

	// Node registry: built-ins only; embedders register their own kinds.
	registry := executor.NewRegistry()
	builtin.MustRegisterBuiltins(registry)

	// Result cache: Redis when enabled, in-process LRU otherwise.
	var resultCache dagcache.ResultCache
	if cfg.Redis.Enabled {
		redisCache, err := rediscache.NewRedisCache(rediscache.Config{
			URL:      cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return fmt.Errorf("redis cache: %w", err)
		}
		defer redisCache.Close()
		resultCache = redisCache
		log.Info("using redis result cache")
	} else {
		resultCache = dagcache.NewMemoryCache(cfg.Engine.CacheMaxEntries)
	}

	observers := observer.NewManager(log)
	if err := observers.Register(observer.NewLoggerObserver(log)); err != nil {
		return err
	}

	opts := &engine.Options{
		WorkerCount:      cfg.Engine.WorkerCount,
		ExecutionTimeout: cfg.Engine.ExecutionTimeout,
		ContinueOnError:  cfg.Engine.ContinueOnError,
		CacheEnabled:     cfg.Engine.CacheEnabled,
		CacheTTL:         cfg.Engine.CacheDefaultTTL,
	}

	executions := appengine.NewExecutionManager(store, registry, resultCache, observers, opts, log)
	workflows := appengine.NewWorkflowService(store, registry)

	// Executions that were in flight when the previous process stopped are
	// not recoverable; mark them failed.
	if err := executions.Recover(context.Background()); err != nil {
		log.Warn("recovery pass failed", "error", err)
	}

	scheduler := trigger.NewCronScheduler(executions, log)
	scheduler.Start()
	defer scheduler.Stop()

	router := rest.NewRouter(rest.RouterConfig{
		Workflows:  workflows,
		Executions: executions,
		Registry:   registry,
		Scheduler:  scheduler,
		Logger:     log,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	executions.Wait()
	return nil
}
