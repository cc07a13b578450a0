// Package dispatch resolves inbound commerce events to workflow template
// sends: matching topics to workflow titles, mapping record fields into
// template slots, and delivering through the provider client.
package dispatch

import (
	"context"
	"time"

	"shopnotify_backend/internal/events"
	apphttp "shopnotify_backend/internal/http"
	"shopnotify_backend/platform/logger"
	"shopnotify_backend/platform/validator"
)

// ringCapacity bounds the debug buffer of recently seen events.
const ringCapacity = 100

// Module is the dispatch bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates and initializes the dispatch module with its dependencies.
func NewModule(wf WorkflowFinder, ts TemplateStore, sender Sender, storeReader StoreReader, val *validator.Validator, log *logger.Logger) *Module {
	svc := NewService(wf, ts, sender, NewRing(ringCapacity), log)
	h := NewHandler(svc, storeReader, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "dispatch"
}

// Service returns the orchestrator for the webhook and reminder modules.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts dispatch routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/dispatch")
	group.POST("/test-send", m.handler.HandleTestSend)
	group.GET("/recent-events", m.handler.HandleRecentEvents)
}

// RegisterHandlers subscribes to domain events. Received commerce events only
// feed the debug ring; dispatch itself is invoked directly by the webhook
// module so the HTTP response can carry the per-title summary.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.CommerceEventReceived{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(_ context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.CommerceEventReceived:
		m.service.Ring().Add(RingEntry{
			StoreID:    e.StoreID,
			Topic:      e.Topic,
			ReceivedAt: time.Now().UTC(),
		})
	}
	return nil
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
