package commerce

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CheckoutSession is an abandoned cart awaiting recovery reminders.
// The updated_at column is the anchor every reminder delay is measured from;
// it moves forward whenever the shopper touches the cart again.
type CheckoutSession struct {
	ID            uuid.UUID
	StoreID       uuid.UUID
	CheckoutToken string
	CustomerName  string
	Phone         string
	CountryCode   string
	Email         *string
	TotalPrice    string
	Currency      string
	LineItems     json.RawMessage
	RecoveryURL   string
	Reminder1Sent bool
	Reminder2Sent bool
	Reminder3Sent bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReminderSent reports whether the given abandoned cart stage already fired.
func (c CheckoutSession) ReminderSent(stage ReminderStage) bool {
	switch stage {
	case StageReminder1:
		return c.Reminder1Sent
	case StageReminder2:
		return c.Reminder2Sent
	case StageReminder3:
		return c.Reminder3Sent
	}
	return true
}

// DeliveredOrder tracks a delivered order for post-purchase messaging.
// delivered_at is the anchor for the feedback and reorder delays.
type DeliveredOrder struct {
	ID                  uuid.UUID
	StoreID             uuid.UUID
	OrderID             int64
	OrderNumber         string
	CustomerName        string
	Phone               string
	CountryCode         string
	TotalPrice          string
	Currency            string
	LineItems           json.RawMessage
	TrackingURL         string
	OrderFeedbackSent   bool
	ReorderReminderSent bool
	DeliveredAt         time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// FlagSent reports whether the given post-purchase flag already fired.
func (d DeliveredOrder) FlagSent(flag DeliveredFlag) bool {
	switch flag {
	case FlagOrderFeedback:
		return d.OrderFeedbackSent
	case FlagReorderReminder:
		return d.ReorderReminderSent
	}
	return true
}

// ReminderStage identifies one of the abandoned cart reminder flags.
type ReminderStage int

const (
	StageReminder1 ReminderStage = iota + 1
	StageReminder2
	StageReminder3
)

// DeliveredFlag identifies one of the post-purchase flags.
type DeliveredFlag int

const (
	FlagOrderFeedback DeliveredFlag = iota + 1
	FlagReorderReminder
)

// reminderStageColumns maps each stage to its flag column. Flag columns are
// only ever flipped through this table, never built from request input.
var reminderStageColumns = map[ReminderStage]string{
	StageReminder1: "reminder_1_sent",
	StageReminder2: "reminder_2_sent",
	StageReminder3: "reminder_3_sent",
}

var deliveredFlagColumns = map[DeliveredFlag]string{
	FlagOrderFeedback:   "order_feedback_sent",
	FlagReorderReminder: "reorder_reminder_sent",
}
