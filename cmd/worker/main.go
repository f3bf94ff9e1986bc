package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ledgerkit/banking-ledger/internal/config"
	"github.com/ledgerkit/banking-ledger/internal/db"
	"github.com/ledgerkit/banking-ledger/internal/events"
	"github.com/ledgerkit/banking-ledger/internal/logger"
	"github.com/ledgerkit/banking-ledger/internal/metrics"
	"github.com/ledgerkit/banking-ledger/internal/repository/postgres"
	"github.com/ledgerkit/banking-ledger/internal/worker"
)

// Consumer process for the audit-log and notifications queues. Runs
// separately from the API so a slow consumer never backs up mutations.
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

	bus := events.NewConn(cfg.AMQPURL, log)
	if err := bus.Start(ctx); err != nil {
		log.Error("event bus connect", "err", err)
		os.Exit(1)
	}
	defer bus.Close()

	metrics.Init()

	repos := postgres.NewRepositories(dbPool, cfg.LockTimeout)
	audit := worker.NewAudit(repos.AuditLogs, log)
	notify := worker.NewNotification(log)

	consumers := []*events.Consumer{
		events.NewConsumer(bus, events.QueueAuditLog, audit.Handle, log),
		events.NewConsumer(bus, events.QueueNotifications, notify.Handle, log),
	}

	var wg sync.WaitGroup
	for _, c := range consumers {
		wg.Add(1)
		go func(c *events.Consumer) {
			defer wg.Done()
			if err := c.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error("consumer stopped", "err", err)
			}
		}(c)
	}

	<-ctx.Done()
	log.Info("shutting down...")
	wg.Wait()
}
