package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/intent-solutions/foreman/internal/adapter/cardfs"
	"github.com/intent-solutions/foreman/internal/adapter/cardhttp"
	fhttp "github.com/intent-solutions/foreman/internal/adapter/http"
	"github.com/intent-solutions/foreman/internal/adapter/localinvoke"
	"github.com/intent-solutions/foreman/internal/adapter/natsinvoke"
	fotel "github.com/intent-solutions/foreman/internal/adapter/otel"
	"github.com/intent-solutions/foreman/internal/adapter/postgres"
	"github.com/intent-solutions/foreman/internal/adapter/ws"
	"github.com/intent-solutions/foreman/internal/config"
	"github.com/intent-solutions/foreman/internal/logger"
	"github.com/intent-solutions/foreman/internal/port/cardsource"
	"github.com/intent-solutions/foreman/internal/port/invoker"
	"github.com/intent-solutions/foreman/internal/service"
)

const version = "0.1.0"

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

	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"invoker_mode", cfg.Invoker.Mode,
		"card_dir", cfg.Registry.CardDir,
	)

	ctx := context.Background()

	// --- Observability ---
	var metrics *fotel.Metrics
	if cfg.Otel.Enabled {
		shutdown, err := fotel.Init(ctx, cfg.Logging.Service, cfg.Otel.Endpoint)
		if err != nil {
			return fmt.Errorf("otel: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()

		metrics, err = fotel.NewMetrics()
		if err != nil {
			return fmt.Errorf("otel metrics: %w", err)
		}
	}

	// --- Infrastructure ---

	// PostgreSQL audit trail (optional)
	var auditStore *postgres.AuditStore
	if cfg.Postgres.DSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		auditStore = postgres.NewAuditStore(pool)
		slog.Info("audit persistence enabled")
	}

	// Invocation strategy
	var strategy invoker.Strategy
	var natsInv *natsinvoke.Invoker
	switch cfg.Invoker.Mode {
	case "nats":
		natsInv, err = natsinvoke.Connect(cfg.NATS.URL, cfg.Invoker.Timeout, cfg.Breaker)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer natsInv.Close()
		strategy = natsInv
	case "local":
		strategy = localinvoke.New()
	default:
		return fmt.Errorf("unknown invoker mode %q", cfg.Invoker.Mode)
	}

	// Capability registry
	sources := []cardsource.Source{cardfs.New(cfg.Registry.CardDir)}
	if len(cfg.Registry.SpecialistURLs) > 0 {
		remote, err := cardhttp.New(cfg.Registry.SpecialistURLs, 10*time.Second,
			cfg.Registry.CacheTTL, cfg.Registry.CacheMaxBytes)
		if err != nil {
			return fmt.Errorf("card cache: %w", err)
		}
		defer remote.Close()
		sources = append(sources, remote)
	}

	registry := service.NewRegistry(cfg.Registry.Strict, sources...)
	if _, err := registry.Discover(ctx); err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	slog.Info("registry populated", "specialists", registry.Len())

	// --- Services ---
	hub := ws.NewHub()

	dispatcher := service.NewDispatcher(registry, strategy)
	dispatcher.SetHub(hub)
	if auditStore != nil {
		dispatcher.AddAuditSink(auditStore)
	}
	if metrics != nil {
		dispatcher.SetMetrics(metrics)
	}

	delegationSvc := service.NewDelegationService(dispatcher, registry,
		cfg.Delegation.Identity, cfg.Delegation.MaxParallel)

	// Periodic re-discovery
	if cfg.Registry.ReloadInterval > 0 {
		go reloadLoop(ctx, registry, hub, cfg.Registry.ReloadInterval)
	}

	// --- HTTP ---
	handlers := &fhttp.Handlers{
		Delegation: delegationSvc,
		Registry:   registry,
		Card: fhttp.CardInfo{
			Name:        cfg.Logging.Service,
			Description: "A2A delegation gateway routing tasks to registered specialist agents",
			Version:     version,
			BaseURL:     "http://localhost:" + cfg.Server.Port,
			Identity:    cfg.Delegation.Identity,
		},
	}
	if auditStore != nil {
		handlers.Audit = auditStore
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(fhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(fhttp.RequestID)
	r.Use(fhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(2 * cfg.Invoker.Timeout))
	if cfg.Otel.Enabled {
		r.Use(fotel.HTTPMiddleware(cfg.Logging.Service))
	}

	// Health endpoint with service status
	r.Get("/health", healthHandler(registry, natsInv, auditStore))

	// WebSocket endpoint
	r.Get("/ws", hub.HandleWS)

	// API routes
	fhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2*cfg.Invoker.Timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// reloadLoop re-runs capability discovery on a fixed interval so new
// descriptors are picked up without a restart. A failed reload keeps the
// previous registry contents.
func reloadLoop(ctx context.Context, registry *service.Registry, hub *ws.Hub, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := registry.Reload(ctx); err != nil {
				slog.Error("registry reload failed", "error", err)
				continue
			}
			slog.Info("registry reloaded", "specialists", registry.Len())
			hub.BroadcastEvent(ctx, ws.EventRegistryReloaded, ws.RegistryReloadedEvent{
				Specialists: registry.Len(),
			})
		}
	}
}

// healthHandler returns an http.HandlerFunc that reports service health.
func healthHandler(registry *service.Registry, natsInv *natsinvoke.Invoker, auditStore *postgres.AuditStore) http.HandlerFunc {
	type healthStatus struct {
		Status      string `json:"status"`
		Specialists int    `json:"specialists"`
		NATS        string `json:"nats"`
		Audit       string `json:"audit"`
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		status := healthStatus{
			Status:      "ok",
			Specialists: registry.Len(),
			NATS:        "disabled",
			Audit:       "disabled",
		}
		if natsInv != nil {
			status.NATS = "disconnected"
			if natsInv.IsConnected() {
				status.NATS = "connected"
			}
		}
		if auditStore != nil {
			status.Audit = "enabled"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	}
}
