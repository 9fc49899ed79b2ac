// Command docreview runs the documentation review service: the REST
// API, the WebSocket hub and the asynchronous review pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	drhttp "github.com/docreview/docreview/internal/adapter/http"
	"github.com/docreview/docreview/internal/adapter/memory"
	drnats "github.com/docreview/docreview/internal/adapter/nats"
	"github.com/docreview/docreview/internal/adapter/openai"
	"github.com/docreview/docreview/internal/adapter/otel"
	"github.com/docreview/docreview/internal/adapter/postgres"
	"github.com/docreview/docreview/internal/adapter/ristretto"
	"github.com/docreview/docreview/internal/adapter/ws"
	"github.com/docreview/docreview/internal/config"
	"github.com/docreview/docreview/internal/logger"
	"github.com/docreview/docreview/internal/port/cache"
	"github.com/docreview/docreview/internal/port/queue"
	"github.com/docreview/docreview/internal/port/store"
	"github.com/docreview/docreview/internal/resilience"
	"github.com/docreview/docreview/internal/reviewer"
	"github.com/docreview/docreview/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"queue", cfg.Queue.Driver,
		"workers", cfg.Pipeline.Workers,
	)

	ctx := context.Background()

	// --- Telemetry ---
	shutdownTelemetry, err := otel.Setup(ctx, cfg.Telemetry, cfg.Logging.Service)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	var metrics *otel.Metrics
	if cfg.Telemetry.Enabled {
		metrics, err = otel.NewMetrics()
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	// --- Store ---
	var taskStore store.Store
	switch cfg.Store.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		slog.Info("postgres connected, migrations applied")
		taskStore = postgres.NewStore(pool)
	default:
		taskStore = memory.NewStore()
	}

	// --- Queue ---
	var taskQueue queue.Queue
	switch cfg.Queue.Driver {
	case "nats":
		natsQueue, err := drnats.Connect(ctx, cfg.NATS.URL, cfg.Queue.Capacity)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		taskQueue = natsQueue
	default:
		taskQueue = memory.NewQueue(cfg.Queue.Capacity)
	}
	defer func() { _ = taskQueue.Close() }()

	// --- Report cache ---
	var reportCache cache.Cache
	if cfg.Cache.MaxSizeMB > 0 {
		rc, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
		if err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		defer rc.Close()
		reportCache = rc
	}

	// --- Completion backend ---
	completionClient := openai.NewClient(cfg.OpenAI)
	completionClient.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	// --- Pipeline ---
	hub := ws.NewHub()
	registry := reviewer.NewRegistry(completionClient)

	reviews := service.NewReviewService(
		taskStore,
		taskQueue,
		hub,
		service.NewStrategist(completionClient, registry, cfg.Pipeline),
		service.NewCoordinator(registry),
		service.NewAdjudicator(cfg.Pipeline.FindingBonusOver),
		service.NewSynthesizer(),
		reportCache,
		cfg.Pipeline,
		cfg.Cache.TTL,
		metrics,
	)

	pool := service.NewWorkerPool(taskQueue, reviews, cfg.Pipeline)
	cancelWorkers, err := pool.Start(ctx)
	if err != nil {
		return fmt.Errorf("worker pool: %w", err)
	}
	defer cancelWorkers()

	// --- HTTP ---
	r := chi.NewRouter()
	r.Use(drhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(drhttp.RequestID)
	r.Use(drhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	if cfg.Telemetry.Enabled {
		r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	}

	drhttp.MountRoutes(r, drhttp.NewHandlers(reviews, hub))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
