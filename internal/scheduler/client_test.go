package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
	queue    string
}

func (c testSchedulerConfig) GetRedisURL() string                    { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool              { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string              { return c.queue }
func (c testSchedulerConfig) GetAsynqConcurrency() int               { return 1 }
func (c testSchedulerConfig) GetReminderScanInterval() time.Duration { return time.Minute }
func (c testSchedulerConfig) GetReminderScanBatchSize() int          { return 100 }

func TestReminderScanPayloadRoundTrip(t *testing.T) {
	task, err := NewReminderScanTask(ReminderScanPayload{Trigger: "ticker"})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if task.Type() != TaskReminderScan {
		t.Fatalf("task type = %q", task.Type())
	}

	payload, err := ParseReminderScanPayload(task)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.Trigger != "ticker" {
		t.Fatalf("trigger = %q", payload.Trigger)
	}
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("redis://:pass@localhost:6380/2", false)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if opt.Addr != "localhost:6380" || opt.Password != "pass" || opt.DB != 2 {
		t.Fatalf("parsed opt wrong: %+v", opt)
	}
	if opt.TLSConfig != nil {
		t.Fatal("plain redis url should not carry tls config")
	}

	opt, err = redisClientOpt("rediss://localhost:6380", true)
	if err != nil {
		t.Fatalf("parse tls url: %v", err)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("tls insecure flag not applied")
	}

	if _, err := redisClientOpt("://bad", false); err == nil {
		t.Fatal("malformed url should error")
	}
}

func TestClientEnqueueReminderScan(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testSchedulerConfig{redisURL: "redis://" + mr.Addr(), queue: "reminders"}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	if err := client.EnqueueReminderScan(context.Background(), ReminderScanPayload{Trigger: "cron"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListPendingTasks("reminders")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(tasks))
	}
	if tasks[0].Type != TaskReminderScan {
		t.Fatalf("task type = %q", tasks[0].Type)
	}

	payload, err := ParseReminderScanPayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.Trigger != "cron" {
		t.Fatalf("trigger = %q", payload.Trigger)
	}
}

func TestClientMissingRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("empty redis url should error")
	}
}
