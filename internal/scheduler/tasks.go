package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskReminderScan = "reminders.scan"

// ReminderScanPayload carries one scan request. The trigger names the source
// for log correlation: "ticker" or "cron".
type ReminderScanPayload struct {
	Trigger string `json:"trigger"`
}

func NewReminderScanTask(payload ReminderScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReminderScan, data), nil
}

func ParseReminderScanPayload(task *asynq.Task) (ReminderScanPayload, error) {
	var payload ReminderScanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ReminderScanPayload{}, err
	}
	return payload, nil
}
