// Command inventory-mock serves an in-memory inventory REST API and
// advertises it over mDNS, for development without a real backend.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/micro-nova/inventory-go/internal/identity"
	"github.com/micro-nova/inventory-go/internal/mockserver"
	"github.com/micro-nova/inventory-go/internal/settings"
	"github.com/micro-nova/inventory-go/internal/zeroconf"
)

func main() {
	var (
		envFile  = flag.String("env-file", ".env", "optional .env file")
		addr     = flag.String("addr", "", "listen address")
		noAdvert = flag.Bool("no-advertise", false, "do not register the service over mDNS")
		debug    = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	cfg, err := settings.Load(*envFile)
	if err != nil {
		slog.Error("cannot load settings", "err", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Mock.Addr = *addr
	}
	if *noAdvert {
		cfg.Mock.Advertise = false
	}
	if *debug {
		cfg.Log.Debug = true
	}

	logLevel := slog.LevelInfo
	if cfg.Log.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mock := mockserver.New()
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Mount("/", mock.Handler())

	if cfg.Mock.Advertise {
		id := identity.Load("")
		zc := zeroconf.New(id.Hostname, listenPort(cfg.Mock.Addr), id.Version, mockserver.PathPrefix)
		go func() {
			if err := zc.Start(ctx); err != nil {
				slog.Warn("zeroconf failed", "err", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:        cfg.Mock.Addr,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
	go func() {
		slog.Info("mock backend listening", "addr", cfg.Mock.Addr, "base", mockserver.PathPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Warn("server shutdown error", "err", err)
	}
}

// listenPort extracts the port from a listen address, defaulting to 80.
func listenPort(addr string) int {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 80
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return 80
	}
	return port
}
