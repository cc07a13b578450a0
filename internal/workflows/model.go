package workflows

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowEvent is one configured automation stage for one store and sender
// phone number: a trigger topic tied to a template, optionally delayed.
type WorkflowEvent struct {
	ID             uuid.UUID
	StoreID        uuid.UUID
	PhoneNumber    string
	Category       string
	Title          string
	Subtitle       string
	Delay          *string // raw delay expression as stored, e.g. "30 minutes", "2", nil
	Enabled        bool
	TriggerTopic   string
	TemplateID     *uuid.UUID
	TemplateDataID *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasTemplate reports whether the stage is fully linked to a template snapshot.
func (w WorkflowEvent) HasTemplate() bool {
	return w.TemplateID != nil && w.TemplateDataID != nil
}

// DelayMinutes returns the stage delay normalized to minutes.
func (w WorkflowEvent) DelayMinutes() int {
	return ParseDelayToMinutes(w.Delay)
}
