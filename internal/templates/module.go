// Package templates provides the message template bounded context module:
// provider-synced template structures, per-slot mapping configuration, and
// the content builder that turns a snapshot into a provider payload.
package templates

import (
	apphttp "shopnotify_backend/internal/http"
	"shopnotify_backend/platform/logger"
	"shopnotify_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the templates bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
	repo    *Repository
}

// NewModule creates and initializes the templates module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, log)
	h := NewHandler(svc, repo, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "templates"
}

// Service returns the service layer for external wiring.
func (m *Module) Service() *Service {
	return m.service
}

// Repository returns the repository for cross-module reads.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts template routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/templates")
	group.GET("", m.handler.HandleList)
	group.POST("/sync", m.handler.HandleSync)
	group.GET("/data/:dataId/variables", m.handler.HandleListVariables)
	group.PUT("/variables/:variableId", m.handler.HandleUpdateVariable)
	group.DELETE("/data/:dataId", m.handler.HandleDeleteData)
	group.DELETE("/:templateId", m.handler.HandleDeleteTemplate)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
