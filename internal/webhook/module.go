// Package webhook ingests Shopify webhooks: store resolution by shop domain,
// HMAC signature verification, payload parsing, and handoff to dispatch.
package webhook

import (
	apphttp "shopnotify_backend/internal/http"
	"shopnotify_backend/platform/logger"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler  *Handler
	service  *Service
	resolver StoreResolver
}

// NewModule creates and initializes the webhook module.
func NewModule(resolver StoreResolver, service *Service, log *logger.Logger) *Module {
	return &Module{
		handler:  NewHandler(service),
		service:  service,
		resolver: resolver,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the webhook endpoint. The group already carries the
// webhook rate limiter; signature verification runs per route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Webhooks.POST("/shopify", VerifyMiddleware(m.resolver), m.handler.HandleShopify)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
