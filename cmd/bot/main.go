package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/campus-hub/campus-content-bot/config"
	"github.com/campus-hub/campus-content-bot/internal/application/broadcast"
	"github.com/campus-hub/campus-content-bot/internal/application/importer"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/external/telegram"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/metrics"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/docstore"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/file"
	opshttp "github.com/campus-hub/campus-content-bot/internal/interface/http"
	bottg "github.com/campus-hub/campus-content-bot/internal/interface/telegram"
	"github.com/campus-hub/campus-content-bot/pkg/logger"
)

func main() {
	// Missing .env is fine; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Default().Fatal("loading configuration failed", logger.Err(err))
	}

	log := logger.New(logger.Options{
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.IsDevelopment(),
	}).With(
		logger.String("app", cfg.App.Name),
		logger.String("version", cfg.App.Version),
	)
	log.Info("starting", logger.String("environment", string(cfg.App.Environment)))

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		log.Fatal("creating data directory failed", logger.Err(err))
	}

	stores := file.NewStores(cfg.Storage.DataDir, docstore.LockOptions{
		Timeout:    cfg.Storage.LockTimeout,
		Poll:       cfg.Storage.LockPoll,
		StaleAfter: cfg.Storage.LockStaleAfter,
	}, cfg.Telegram.OwnerID)

	// Drop malformed login lines left by a crash, then warm the admin
	// roster cache.
	if err := stores.Logins.Repair(); err != nil {
		log.Fatal("repairing login log failed", logger.Err(err))
	}
	if err := stores.Admins.Load(); err != nil {
		log.Fatal("loading admin roster failed", logger.Err(err))
	}

	clientCfg := telegram.DefaultClientConfig(cfg.Telegram.Token)
	clientCfg.Logger = slog.Default()
	clientCfg.Debug = cfg.App.Debug
	client := telegram.NewClient(clientCfg)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	dispatcher := bottg.NewDispatcher(
		client,
		stores,
		importer.New(stores.Enrollment),
		broadcast.NewEngine(client, cfg.Broadcast.PacingDelay, log),
		m,
		cfg.Telegram.OwnerID,
		cfg.Telegram.MaxUploadSize,
		log,
	)
	bot := bottg.NewBot(client, dispatcher, stores, m, cfg.Telegram.OwnerID, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	var ops *opshttp.Server
	if cfg.Observability.MetricsEnabled {
		ops = opshttp.NewServer(cfg.Observability.MetricsPort, registry, log)
		go func() { errCh <- ops.ListenAndServe() }()
	}
	go func() { errCh <- bot.Run(ctx) }()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && ctx.Err() == nil {
			log.Error("component failed", logger.Err(err))
		}
	}
	stop()

	if ops != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		if err := ops.Shutdown(shutdownCtx); err != nil {
			log.Error("ops server shutdown failed", logger.Err(err))
		}
	}
	log.Info("stopped")
}
