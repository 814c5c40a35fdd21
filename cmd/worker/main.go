package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mintlite/internal/channel"
	"mintlite/internal/config"
	"mintlite/internal/pkg/backoff"
	"mintlite/internal/pkg/logger"
	"mintlite/internal/pkg/ratelimit"
	"mintlite/internal/repository"
	"mintlite/internal/service/dispatcher"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	zlog := logger.New(cfg.Environment)
	defer zlog.Sync()

	zlog.Info("starting notification worker")

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	repos := repository.NewRepositories(db)

	adapters := []channel.Adapter{
		channel.NewEmailAdapter(cfg.ResendAPIKey, cfg.FromEmail, repos.User),
		channel.NewPushAdapter(cfg.FCMServerKey, cfg.FCMEndpoint, repos.User),
		channel.NewInAppAdapter(rdb),
	}

	limiter := ratelimit.NewLimiter(rdb, "notify:ratelimit", cfg.RateLimitMax, cfg.RateLimitWindow, zlog)

	disp := dispatcher.New(dispatcher.Config{
		Workers:        cfg.DispatchWorkers,
		PollInterval:   cfg.QueuePollInterval,
		LeaseTTL:       cfg.QueueLeaseTTL,
		AttemptTimeout: cfg.DispatchTimeout,
		Policy: backoff.Policy{
			MaxAttempts: cfg.QueueMaxAttempts,
			BaseDelay:   cfg.QueueBaseDelay,
			MaxDelay:    cfg.QueueMaxDelay,
			Factor:      2.0,
		},
	}, repos.Notification, repos.DeliveryAttempt, adapters, limiter, zlog)

	// Side server for scrapes and liveness probes.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	metricsSrv := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: mux,
	}
	go func() {
		zlog.Info("metrics server starting", zap.String("port", cfg.MetricsPort))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("metrics server failed", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		disp.Run(ctx)
		close(done)
	}()

	zlog.Info("worker running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down worker")
	cancel()
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("metrics server shutdown", zap.Error(err))
	}

	zlog.Info("worker shutdown complete")
}
