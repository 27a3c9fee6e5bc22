// pathwayd wires the learning orchestration service: storage backend,
// repositories, event hooks, catalog ingestion, and signal-driven shutdown.
// Transport layers (HTTP, gRPC) mount on top of the constructed service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pathwayhq/pathway/internal/cache"
	"github.com/pathwayhq/pathway/internal/catalog"
	"github.com/pathwayhq/pathway/internal/config"
	"github.com/pathwayhq/pathway/internal/domain"
	"github.com/pathwayhq/pathway/internal/events"
	"github.com/pathwayhq/pathway/internal/feedback"
	"github.com/pathwayhq/pathway/internal/learning"
	"github.com/pathwayhq/pathway/internal/repository"
	"github.com/pathwayhq/pathway/internal/storage"
	"github.com/pathwayhq/pathway/internal/storage/local"
	"github.com/pathwayhq/pathway/internal/storage/memory"
	"github.com/pathwayhq/pathway/internal/storage/postgres"
	"github.com/pathwayhq/pathway/internal/storage/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx := context.Background()

	port, closePort, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer closePort()

	scenarios := repository.NewScenarioRepository(port)
	programs := repository.NewProgramRepository(port)
	tasks := repository.NewTaskRepository(port)
	evaluations := repository.NewEvaluationRepository(port)

	svc := learning.NewService(scenarios, programs, tasks, evaluations)
	svc.SetLogger(slog.Default())

	if cfg.FeedbackEnabled {
		generator := feedback.NewResilient(feedback.NewTemplateGenerator(), feedback.DefaultResilientConfig())
		defer generator.Close()
		svc.SetFeedbackGenerator(generator)
	}

	if cfg.EventsEnabled {
		conn, err := events.NewConnection(cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		defer conn.Close()
		svc.SetHooks(events.NewPublisher(conn))
	}

	cacheStore, err := openCacheStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	readCache := cache.New(cacheStore, slog.Default())
	catalogSvc := catalog.NewService(scenarios, readCache, cfg.CatalogCacheTTL, cfg.CatalogCacheSWR)

	if _, err := os.Stat(cfg.ScenariosPath); err == nil {
		loader, err := catalog.NewLoader(cfg.ScenariosPath, scenarios)
		if err != nil {
			return fmt.Errorf("create catalog loader: %w", err)
		}
		if _, err := loader.LoadAll(ctx); err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
	} else {
		slog.Warn("scenarios path missing, skipping catalog ingestion", "path", cfg.ScenariosPath)
	}

	// Warm the public catalog cache so first readers never miss.
	for _, mode := range []domain.Mode{domain.ModePBL, domain.ModeAssessment, domain.ModeDiscovery} {
		if _, err := catalogSvc.ListByMode(ctx, mode, "en"); err != nil {
			slog.Warn("catalog warmup failed", "mode", mode, "error", err)
		}
	}

	slog.Info("pathwayd ready",
		"storage_backend", cfg.StorageBackend,
		"events_enabled", cfg.EventsEnabled,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig.String())

	return nil
}

// openStorage constructs the configured storage port and its cleanup.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Port, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return memory.NewStore(), func() {}, nil
	case config.BackendLocal:
		store, err := local.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case config.BackendPostgres:
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// openCacheStore picks Redis when configured, the in-process store otherwise.
func openCacheStore(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	if cfg.RedisURL == "" {
		return cache.NewMemoryStore(), nil
	}
	return cache.NewRedisStore(ctx, cfg.RedisURL, "pathway")
}
