// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"encoding/json"

	"shopnotify_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Store Domain Events
// =============================================================================

// StoreProvisioned is published when a store finishes onboarding.
// The workflows module seeds the default automation catalog in response.
type StoreProvisioned struct {
	BaseEvent
	StoreID     uuid.UUID `json:"storeId"`
	PhoneNumber string    `json:"phoneNumber"`
}

func (e StoreProvisioned) EventName() string { return "stores.provisioned" }

// =============================================================================
// Commerce Domain Events
// =============================================================================

// CommerceEventReceived is published by the webhook module after a verified
// Shopify webhook has been parsed and persisted. Dispatch itself happens
// synchronously on the webhook path; subscribers are observers only (the
// dispatch module feeds its recent-events buffer from this).
type CommerceEventReceived struct {
	BaseEvent
	StoreID uuid.UUID       `json:"storeId"`
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

func (e CommerceEventReceived) EventName() string { return "commerce.event.received" }
