package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/code-deck/collab-service/config"
	"github.com/code-deck/collab-service/internal/service"
	"github.com/code-deck/collab-service/internal/store"
	httpx "github.com/code-deck/collab-service/internal/transport/http"
	"github.com/code-deck/collab-service/internal/transport/ws"
	"github.com/code-deck/collab-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting collab-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- core state ---
	session := service.NewSessionService(
		store.NewRegistry(),
		store.NewPolicyStore(),
		store.NewPendingQueue(),
	)

	// --- WS Hub & Server ---
	hub := ws.NewHub()
	wsServer := ws.NewServer(hub, session, ws.Options{
		PingInterval: cfg.WS.PingInterval,
		ReadLimit:    cfg.WS.ReadLimit,
		RateLimit:    cfg.WS.RateLimit,
		RateBurst:    cfg.WS.RateBurst,
	})

	// --- HTTP ---
	router := httpx.NewRouter(wsServer, cfg.HTTP.CORSOrigins, cfg.HTTP.StaticDir)
	httpSrv := &http.Server{
		Addr:        cfg.HTTP.Addr,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
