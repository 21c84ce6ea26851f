// Command inventoryd runs the inventory state store against a backend and
// serves the local bridge a UI talks to.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/micro-nova/inventory-go/internal/api"
	"github.com/micro-nova/inventory-go/internal/auth"
	"github.com/micro-nova/inventory-go/internal/backend"
	"github.com/micro-nova/inventory-go/internal/events"
	"github.com/micro-nova/inventory-go/internal/identity"
	"github.com/micro-nova/inventory-go/internal/inventory"
	"github.com/micro-nova/inventory-go/internal/maintenance"
	"github.com/micro-nova/inventory-go/internal/settings"
	"github.com/micro-nova/inventory-go/internal/storage"
	"github.com/micro-nova/inventory-go/internal/zeroconf"
)

func main() {
	var (
		envFile    = flag.String("env-file", ".env", "optional .env file")
		backendURL = flag.String("backend", "", "backend base URL, e.g. http://host:8080/api (default: discover over mDNS)")
		addr       = flag.String("addr", "", "bridge listen address")
		stateDir   = flag.String("state-dir", "", "state directory (default: ~/.config/inventory)")
		driver     = flag.String("storage", "", "storage driver: json, sqlite, redis, memory")
		debug      = flag.Bool("debug", false, "enable debug logging")
		noFetch    = flag.Bool("no-fetch", false, "do not fetch items at startup")
	)
	flag.Parse()

	cfg, err := settings.Load(*envFile)
	if err != nil {
		slog.Error("cannot load settings", "err", err)
		os.Exit(1)
	}
	if *backendURL != "" {
		cfg.Backend.URL = *backendURL
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	if *stateDir != "" {
		cfg.Storage.Dir = *stateDir
	}
	if *driver != "" {
		cfg.Storage.Driver = *driver
	}
	if *debug {
		cfg.Log.Debug = true
	}

	// Configure logging
	logLevel := slog.LevelInfo
	if cfg.Log.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid settings", "err", err)
		os.Exit(1)
	}
	if cfg.Storage.Dir != "" {
		if err := os.MkdirAll(cfg.Storage.Dir, 0755); err != nil {
			slog.Error("cannot create state directory", "path", cfg.Storage.Dir, "err", err)
			os.Exit(1)
		}
	}

	// Graceful shutdown context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	id := identity.Load(cfg.Storage.Dir)

	// Backend
	if cfg.Backend.URL == "" {
		slog.Info("no backend configured, browsing mDNS", "type", zeroconf.ServiceType)
		found, err := zeroconf.Discover(ctx, cfg.Backend.DiscoverTimeout)
		if err != nil {
			slog.Error("backend discovery failed; pass --backend", "err", err)
			os.Exit(1)
		}
		cfg.Backend.URL = found
	}
	opts := []backend.Option{
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithUserAgent(id.UserAgent("inventoryd")),
		backend.WithRateLimit(cfg.Backend.RateLimit, cfg.Backend.RateBurst),
	}
	if cfg.Backend.APIKey != "" {
		opts = append(opts, backend.WithHeaders(http.Header{"Api-Key": {cfg.Backend.APIKey}}))
	}
	be, err := backend.New(cfg.Backend.URL, opts...)
	if err != nil {
		slog.Error("invalid backend URL", "url", cfg.Backend.URL, "err", err)
		os.Exit(1)
	}

	// Storage
	store, err := storage.Open(ctx, cfg.StorageConfig())
	if err != nil {
		slog.Error("storage initialization failed", "driver", cfg.Storage.Driver, "err", err)
		os.Exit(1)
	}

	// Event bus + store
	bus := events.NewBus()
	inv, err := inventory.New(ctx, be, store, bus)
	if err != nil {
		slog.Error("inventory initialization failed", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := inv.Close(); err != nil {
			slog.Warn("failed to close storage", "err", err)
		}
	}()

	// Another process sharing the state dir rewrote the snapshot.
	if js, ok := store.(*storage.JSONStore); ok {
		err := storage.Watch(ctx, js.Path(), func() {
			if err := inv.Rehydrate(ctx); err != nil {
				slog.Warn("rehydrate failed", "err", err)
			}
		})
		if err != nil {
			slog.Warn("cannot watch snapshot file", "err", err)
		}
	}

	if !*noFetch {
		if err := inv.FetchItems(ctx); err != nil {
			slog.Warn("initial fetch failed, serving persisted items", "err", err)
		}
	}

	// Access keys
	guard, err := auth.NewService(cfg.Storage.Dir)
	if err != nil {
		slog.Error("auth service initialization failed", "err", err)
		os.Exit(1)
	}
	defer guard.Close()

	// Maintenance goroutines (backend probe, backups)
	backupDir := ""
	if cfg.Backup.Enabled {
		backupDir = cfg.BackupDir()
	}
	probeAddr, err := maintenance.BackendAddr(cfg.Backend.URL)
	if err != nil {
		slog.Warn("backend probe disabled", "err", err)
	}
	maint := maintenance.New(backupDir, probeAddr, inv, func(reachable bool) {
		slog.Info("backend reachability changed", "reachable", reachable)
	})
	go maint.Start(ctx)

	var backups api.Backups
	if backupDir != "" {
		backups = maint
	}
	router := api.NewRouter(inv, guard, bus, backups)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // 0 = no timeout (needed for SSE)
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("inventoryd listening",
			"addr", cfg.HTTP.Addr,
			"backend", be.BaseURL(),
			"storage", store.Path(),
			"version", id.Version,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Warn("server shutdown error", "err", err)
	}
	bus.Close()

	slog.Info("shutdown complete")
}
