package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/edgechat/edgechat/pkg/ai"
	"github.com/edgechat/edgechat/pkg/api"
	"github.com/edgechat/edgechat/pkg/auth"
	"github.com/edgechat/edgechat/pkg/config"
	"github.com/edgechat/edgechat/pkg/observability"
	"github.com/edgechat/edgechat/pkg/storage"
	"github.com/edgechat/edgechat/pkg/storage/postgres"
	"github.com/edgechat/edgechat/pkg/usage"
)

func main() {
	if err := run(); err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).
			WithError(err).
			Error("server exited")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.LogLevel, os.Stdout)
	metrics := observability.NewMetrics(nil)

	ctx := context.Background()

	db, err := postgres.Connect(cfg.Storage.PostgresURL, cfg.Storage.PostgresTimeout)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("postgres ready")

	redisClient, err := storage.NewRedisClient(cfg.Storage.RedisURL)
	if err != nil {
		// The limiter fails open without Redis; degraded is better than down.
		logger.WithError(err).Warn("redis unavailable, rate limiting degraded")
	}
	defer func() {
		if redisClient != nil {
			redisClient.Close()
		}
	}()

	users := postgres.NewUserStore(db)
	usageStore := postgres.NewUsageStore(db)
	chats := storage.NewMemoryChatStore()

	var counters storage.CounterStore
	if redisClient != nil {
		counters = storage.NewRedisCounterStore(redisClient)
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	recorder := usage.NewRecorder(usageStore, logger, metrics)

	var provider ai.Provider
	if cfg.AI.GeminiAPIKey != "" {
		gemini, err := ai.NewGemini(ctx, cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel, logger, metrics)
		if err != nil {
			return err
		}
		provider = gemini
		logger.WithField("model", gemini.Model()).Info("gemini provider ready")
	} else {
		logger.Warn("EDGECHAT_GEMINI_API_KEY not set, AI endpoints disabled")
	}

	server := api.NewServer(api.Options{
		AppName:          cfg.AppName,
		Logger:           logger,
		Metrics:          metrics,
		Tokens:           tokens,
		Hasher:           auth.NewPasswordHasher(),
		Users:            users,
		Chats:            chats,
		Counters:         counters,
		Recorder:         recorder,
		Provider:         provider,
		RateLimitCeiling: cfg.RateLimit.Requests,
		RateLimitWindow:  cfg.RateLimit.Window,
	})

	apiServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	health := observability.NewHealthChecker(db, redisClient)
	opsMux := http.NewServeMux()
	opsMux.HandleFunc("/healthz", health.Liveness)
	opsMux.HandleFunc("/readyz", health.Readiness)
	opsMux.Handle("/metrics", metrics.Handler())
	opsServer := &http.Server{
		Addr:    cfg.Server.OpsAddr,
		Handler: opsMux,
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout)
	shutdown.RegisterServer(apiServer)
	shutdown.RegisterServer(opsServer)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return recorder.Close(cfg.Server.ShutdownTimeout)
	})

	var g errgroup.Group
	g.Go(func() error {
		logger.WithField("addr", cfg.Server.Addr).Info("API server listening")
		if err := apiServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("API server failed")
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", cfg.Server.OpsAddr).Info("ops server listening")
		if err := opsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("ops server failed")
			return err
		}
		return nil
	})
	g.Go(shutdown.WaitForShutdown)

	return g.Wait()
}
