package scheduler

import (
	"context"
	"time"

	"shopnotify_backend/platform/config"
	"shopnotify_backend/platform/logger"
)

// ScanDispatcher enqueues a reminder scan on a fixed interval. A tick that
// finds the previous scan still queued simply adds another pass; the flag
// compare-and-set keeps duplicate passes harmless.
type ScanDispatcher struct {
	client   *Client
	interval time.Duration
	log      *logger.Logger
}

func NewScanDispatcher(cfg config.SchedulerConfig, log *logger.Logger) (*ScanDispatcher, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	interval := cfg.GetReminderScanInterval()
	if interval <= 0 {
		interval = time.Minute
	}

	return &ScanDispatcher{
		client:   client,
		interval: interval,
		log:      log,
	}, nil
}

func (d *ScanDispatcher) Close() error {
	if d == nil {
		return nil
	}
	return d.client.Close()
}

func (d *ScanDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := d.client.EnqueueReminderScan(ctx, ReminderScanPayload{Trigger: "ticker"}); err != nil {
			d.log.Warn("enqueue scan failed", "error", err)
		}
	}
}
