package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"regbot/internal/audit"
	"regbot/internal/platform/config"
	"regbot/internal/platform/httpserver"
	"regbot/internal/platform/logger"
	"regbot/internal/platform/metrics"
	"regbot/internal/platform/postgres"
	platformredis "regbot/internal/platform/redis"
	profileservice "regbot/internal/profile/service"
	profilestore "regbot/internal/profile/store"
	"regbot/internal/referral"
	"regbot/internal/registration"
	"regbot/internal/registration/session"
	"regbot/internal/transport/ops"
	"regbot/internal/transport/telegram"
)

// main wires dependencies and keeps the process lifecycle small. Business
// logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db, profilestore.Schema, audit.Schema); err != nil {
		log.Error("bootstrap schema", "error", err)
		os.Exit(1)
	}

	cache, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect to redis", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
	}

	m := metrics.New()
	profiles := profilestore.NewPostgres(db, m)

	var sessions session.Store = session.NewInMemory()
	if cache != nil {
		sessions = session.NewRedis(cache.Client, cfg.SessionTTL)
		log.Info("using redis-backed sessions", "ttl", cfg.SessionTTL)
	}

	publisher := audit.NewPublisher(256, log)
	worker := audit.NewWorker(audit.NewPostgresStore(db), publisher.Events(), log)

	machine := registration.New(sessions, profiles, referral.NewGenerator(profiles, referral.WithMetrics(m)),
		registration.WithLogger(log),
		registration.WithMetrics(m),
		registration.WithAuditor(publisher),
	)

	bot, err := telegram.New(cfg.BotToken, machine, profileservice.New(profiles), log)
	if err != nil {
		log.Error("connect to telegram", "error", err)
		os.Exit(1)
	}

	opsSrv := httpserver.New(cfg.OpsAddr, ops.NewRouter(db, cache, log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		return bot.Run(gctx)
	})
	g.Go(func() error {
		log.Info("ops server listening", "addr", cfg.OpsAddr)
		if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return opsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
