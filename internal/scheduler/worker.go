package scheduler

import (
	"context"
	"fmt"

	"shopnotify_backend/internal/reminders"
	"shopnotify_backend/platform/config"
	"shopnotify_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes queued scan tasks and runs the reminder service.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	reminders *reminders.Service
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, remindersSvc *reminders.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		reminders: remindersSvc,
		log:       log,
	}

	mux.HandleFunc(TaskReminderScan, w.handleReminderScan)

	return w, nil
}

func (w *Worker) handleReminderScan(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseReminderScanPayload(task)
	if err != nil {
		return err
	}

	result, err := w.reminders.Scan(ctx)
	if err != nil {
		return err
	}

	if _, err := w.reminders.Cleanup(ctx); err != nil {
		// The next pass retries cleanup; sends already happened.
		w.log.Warn("reminder cleanup failed", "error", err)
	}

	w.log.Info("reminder scan task done",
		"trigger", payload.Trigger,
		"checkouts", result.CheckoutsScanned,
		"delivered", result.DeliveredScanned,
		"sent", result.Sent)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
