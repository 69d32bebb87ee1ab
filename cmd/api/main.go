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

	"github.com/mk-ui-dev/renovation-concierge/internal/auth"
	"github.com/mk-ui-dev/renovation-concierge/internal/cache"
	"github.com/mk-ui-dev/renovation-concierge/internal/config"
	"github.com/mk-ui-dev/renovation-concierge/internal/db"
	apphttp "github.com/mk-ui-dev/renovation-concierge/internal/http"
	"github.com/mk-ui-dev/renovation-concierge/internal/http/handlers"
	"github.com/mk-ui-dev/renovation-concierge/internal/observability"
	"github.com/mk-ui-dev/renovation-concierge/internal/queue"
	"github.com/mk-ui-dev/renovation-concierge/internal/queue/redisclient"
	"github.com/mk-ui-dev/renovation-concierge/internal/repo/postgres"
	"github.com/mk-ui-dev/renovation-concierge/internal/session"
)

func main() {
	// .env is a dev convenience; absence is fine
	_ = godotenv.Load()

	cfg, err := config.Load()

	if err != nil {
		// Refusing to start beats running with a guessable signing key.
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, traceErr := observability.InitTracer(ctx, "renovation-concierge-api", cfg.OTLPEndpoint)

		if traceErr != nil {
			log.Error("tracer init failed, continuing without traces", "err", traceErr)
		} else {
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdownTracer(flushCtx)
			}()
		}
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.EnsureAdminUser(ctx, pool, cfg); err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	codec, err := auth.NewCodec(cfg.JWTSecret, cfg.JWTTTL)

	if err != nil {
		log.Error("token codec init failed", "err", err)
		os.Exit(1)
	}

	sess := session.NewAccessor(codec, cfg.CookieName)

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	redisCli := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	jobQueue := queue.New(redisCli)

	users := postgres.NewUsersRepo(pool, prom)
	projects := postgres.NewProjectsRepo(pool, prom)
	milestones := postgres.NewMilestonesRepo(pool, prom)
	defects := postgres.NewDefectsRepo(pool, prom)
	deliveries := postgres.NewDeliveriesRepo(pool, prom)
	visits := postgres.NewVisitsRepo(pool, prom)
	reports := postgres.NewReportsRepo(pool, prom)

	secureCookies := cfg.Env == "production"

	router := apphttp.NewRouter(apphttp.RouterDeps{
		Cfg:     cfg,
		Log:     log,
		Prom:    prom,
		Session: sess,

		Auth:       handlers.NewAuthHandler(users, codec, sess, secureCookies, prom, log),
		Pages:      handlers.NewPagesHandler(sess),
		Projects:   handlers.NewProjectsHandler(projects, sess, cache.New(10*time.Second), log),
		Milestones: handlers.NewMilestonesHandler(milestones, projects, sess, log),
		Defects:    handlers.NewDefectsHandler(defects, projects, users, sess, jobQueue, log),
		Deliveries: handlers.NewDeliveriesHandler(deliveries, projects, sess, log),
		Visits:     handlers.NewVisitsHandler(visits, projects, sess, log),
		Reports:    handlers.NewReportsHandler(reports, projects, users, sess, jobQueue, log),
		Health: handlers.NewHealthHandler(func() error {
			pingCtx, cancel := config.WithTimeout(2 * time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		}),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("api listening", "port", cfg.Port, "env", cfg.Env)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
}
