package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopnotify_backend/internal/commerce"
	"shopnotify_backend/internal/dispatch"
	"shopnotify_backend/internal/reminders"
	"shopnotify_backend/internal/scheduler"
	"shopnotify_backend/internal/stores"
	"shopnotify_backend/internal/templates"
	"shopnotify_backend/internal/whatsapp"
	"shopnotify_backend/internal/workflows"
	"shopnotify_backend/platform/config"
	"shopnotify_backend/platform/db"
	"shopnotify_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	// Worker-side dispatch wiring (no HTTP handlers required).
	whatsappClient := whatsapp.NewClient(cfg, log)
	storesRepo := stores.New(pool)
	templatesRepo := templates.NewRepository(pool)
	workflowsRepo := workflows.NewRepository(pool)
	commerceRepo := commerce.NewRepository(pool)

	dispatchSvc := dispatch.NewService(workflowsRepo, templatesRepo, whatsappClient, dispatch.NewRing(1), log)
	remindersSvc := reminders.NewService(commerceRepo, storesRepo, workflowsRepo, dispatchSvc, cfg.GetReminderScanBatchSize(), log)

	scanDispatcher, err := scheduler.NewScanDispatcher(cfg, log)
	if err != nil {
		log.Error("failed to initialize scan dispatcher", "error", err)
		panic("failed to initialize scan dispatcher: " + err.Error())
	}
	defer func() { _ = scanDispatcher.Close() }()
	go scanDispatcher.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, remindersSvc, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
