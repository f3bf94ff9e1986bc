package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgerkit/banking-ledger/internal/api"
	"github.com/ledgerkit/banking-ledger/internal/api/handlers"
	"github.com/ledgerkit/banking-ledger/internal/cache"
	"github.com/ledgerkit/banking-ledger/internal/config"
	"github.com/ledgerkit/banking-ledger/internal/db"
	"github.com/ledgerkit/banking-ledger/internal/events"
	"github.com/ledgerkit/banking-ledger/internal/ledger"
	"github.com/ledgerkit/banking-ledger/internal/logger"
	"github.com/ledgerkit/banking-ledger/internal/metrics"
	"github.com/ledgerkit/banking-ledger/internal/repository/postgres"
	"github.com/ledgerkit/banking-ledger/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, dbPool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	rdb, err := cache.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Error("redis connect", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	bus := events.NewConn(cfg.AMQPURL, log)
	if err := bus.Start(ctx); err != nil {
		log.Error("event bus connect", "err", err)
		os.Exit(1)
	}
	defer bus.Close()

	metrics.Init()

	repos := postgres.NewRepositories(dbPool, cfg.LockTimeout)
	accountCache := cache.NewAccountCache(rdb, cfg.CacheTTL, log)
	publisher := events.NewPublisher(bus)

	wp := worker.NewPool(4)
	defer wp.Stop()

	engine := ledger.NewEngine(repos.Accounts, accountCache, publisher, wp, log)
	reader := ledger.NewReader(repos.Accounts, accountCache, log)

	h := handlers.NewAccountsHandler(engine, reader, repos.Accounts)
	r := api.NewRouter(cfg, h)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
