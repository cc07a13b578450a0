// Package stores provides the store settings bounded context module.
// A store is one connected Shopify shop with its WhatsApp provider credentials.
package stores

import (
	apphttp "shopnotify_backend/internal/http"
	"shopnotify_backend/internal/events"
	"shopnotify_backend/platform/logger"
	"shopnotify_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the stores bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
	repo    *Repository
}

// NewModule creates and initializes the stores module with all its dependencies.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := New(pool)
	svc := NewService(repo, bus, log)
	h := NewHandler(repo, svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "stores"
}

// Repository returns the repository for cross-module reads.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts store settings routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/store")
	group.GET("", m.handler.HandleGetStore)
	group.PUT("/credentials", m.handler.HandleUpdateCredentials)
	group.PUT("/brand", m.handler.HandleUpdateBrand)
	group.POST("/provision", m.handler.HandleProvision)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
