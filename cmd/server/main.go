// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/twilightcoders/cardgames/internal/app"
	"github.com/twilightcoders/cardgames/internal/auth"
	"github.com/twilightcoders/cardgames/internal/config"
	"github.com/twilightcoders/cardgames/internal/graph"
	"github.com/twilightcoders/cardgames/internal/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := app.NewStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("store: %v", err)
	}
	defer closeStore()

	if cfg.SeedFile != "" {
		if _, err := app.SeedFromFile(ctx, store, cfg.SeedFile, false); err != nil {
			logger.Fatalf("seed: %v", err)
		}
	}

	expiry, err := auth.ParseTokenExpireTime(cfg.TokenExpireTime)
	if err != nil {
		logger.Fatalf("auth: %v", err)
	}
	signer, err := auth.NewSigner(cfg.JWTSeed, expiry)
	if err != nil {
		logger.Fatalf("auth: %v", err)
	}
	if cfg.MutationsEnabled && cfg.JWTSeed == "" {
		logger.Warn("MUTATIONS_ENABLED without JWT_SEED: no externally minted admin token will verify")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := handlers.NewRouter(handlers.Deps{
		Logger:         logger,
		Store:          store,
		Schema:         graph.NewSchema(store, logger, cfg.MutationsEnabled),
		Signer:         signer,
		Registry:       registry,
		PublicBaseURL:  cfg.PublicBaseURL,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("graceful shutdown failed")
		}
	}()

	logger.Infof("Running on %s", cfg.Addr())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
	logger.Info("server stopped")
}
