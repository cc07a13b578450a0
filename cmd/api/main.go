package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopnotify_backend/internal/commerce"
	"shopnotify_backend/internal/dispatch"
	"shopnotify_backend/internal/events"
	apphttp "shopnotify_backend/internal/http"
	"shopnotify_backend/internal/http/router"
	"shopnotify_backend/internal/reminders"
	"shopnotify_backend/internal/stores"
	"shopnotify_backend/internal/templates"
	"shopnotify_backend/internal/webhook"
	"shopnotify_backend/internal/whatsapp"
	"shopnotify_backend/internal/workflows"
	"shopnotify_backend/platform/config"
	"shopnotify_backend/platform/db"
	"shopnotify_backend/platform/logger"
	"shopnotify_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Provider client for outbound template sends
	whatsappClient := whatsapp.NewClient(cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	storesModule := stores.NewModule(pool, eventBus, val, log)
	templatesModule := templates.NewModule(pool, val, log)

	workflowsModule := workflows.NewModule(pool, val, log)
	workflowsModule.RegisterHandlers(eventBus)

	// Deleting a template (or one of its snapshots) detaches the workflows
	// pointing at it instead of cascading the delete.
	templatesModule.Service().SetWorkflowUnlinker(workflowsModule.Service())

	commerceRepo := commerce.NewRepository(pool)

	dispatchModule := dispatch.NewModule(
		workflowsModule.Repository(),
		templatesModule.Repository(),
		whatsappClient,
		storesModule.Repository(),
		val,
		log,
	)
	dispatchModule.RegisterHandlers(eventBus)

	remindersModule := reminders.NewModule(
		commerceRepo,
		storesModule.Repository(),
		workflowsModule.Repository(),
		dispatchModule.Service(),
		cfg,
		log,
	)

	webhookService := webhook.NewService(commerceRepo, dispatchModule.Service(), eventBus, log)
	webhookModule := webhook.NewModule(storesModule.Repository(), webhookService, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			storesModule,
			templatesModule,
			workflowsModule,
			dispatchModule,
			remindersModule,
			webhookModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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

	return fmt.Errorf("%s: %w", name, lastErr)
}
