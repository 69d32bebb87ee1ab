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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mk-ui-dev/renovation-concierge/internal/config"
	"github.com/mk-ui-dev/renovation-concierge/internal/notifications"
	"github.com/mk-ui-dev/renovation-concierge/internal/observability"
	"github.com/mk-ui-dev/renovation-concierge/internal/queue"
	"github.com/mk-ui-dev/renovation-concierge/internal/queue/redisclient"
	"github.com/mk-ui-dev/renovation-concierge/internal/queue/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()

	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisCli := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	pingCtx, cancel := config.WithTimeout(3 * time.Second)
	pingErr := redisCli.Ping(pingCtx)
	cancel()

	if pingErr != nil {
		log.Error("redis unreachable", "addr", cfg.RedisAddr, "err", pingErr)
		os.Exit(1)
	}

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerMetricsPort),
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "err", err)
		}
	}()

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(log),
		notifications.ProtectedNotifierConfig{
			Timeout:          3 * time.Second,
			FailureThreshold: 3,
			Cooldown:         15 * time.Second,
			HalfOpenMaxCalls: 1,
		},
	)

	hostname, _ := os.Hostname()

	w := worker.New(
		worker.Config{WorkerID: hostname},
		queue.New(redisCli),
		notifier,
		prom,
		log,
	)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)

	log.Info("worker exited")
}
