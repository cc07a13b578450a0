// Package workflows provides the workflow catalog bounded context module.
// A workflow event is one automation stage (abandoned cart reminder, order
// lifecycle message, COD confirmation) that a store can enable and link to a
// WhatsApp template.
package workflows

import (
	"context"

	"shopnotify_backend/internal/events"
	apphttp "shopnotify_backend/internal/http"
	"shopnotify_backend/platform/logger"
	"shopnotify_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the workflows bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
	repo    *Repository
}

// NewModule creates and initializes the workflows module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, log)
	h := NewHandler(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "workflows"
}

// Service returns the service layer for cross-module use.
func (m *Module) Service() *Service {
	return m.service
}

// Repository returns the repository for the dispatch and reminder modules.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts workflow routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/workflows")
	group.GET("", m.handler.HandleList)
	group.PUT("/:workflowId", m.handler.HandleUpdate)
	group.PATCH("/:workflowId/toggle", m.handler.HandleToggle)
	group.DELETE("/:workflowId", m.handler.HandleDelete)
}

// RegisterHandlers subscribes to domain events for seeding store defaults.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.StoreProvisioned{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.StoreProvisioned:
		return m.service.SeedDefaults(ctx, e.StoreID, e.PhoneNumber)
	default:
		return nil
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
