// Package reminders runs the timed stage engine: the periodic scan that
// fires abandoned cart and post-purchase messages once their configured
// delay elapses, and the cleanup of fully processed records.
package reminders

import (
	apphttp "shopnotify_backend/internal/http"
	"shopnotify_backend/platform/config"
	"shopnotify_backend/platform/logger"
)

// Module is the reminders bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates and initializes the reminders module.
func NewModule(cs CommerceStore, sr StoreReader, wr WorkflowReader, sender WorkflowSender, cfg interface {
	config.CronConfig
	config.SchedulerConfig
}, log *logger.Logger) *Module {
	svc := NewService(cs, sr, wr, sender, cfg.GetReminderScanBatchSize(), log)
	h := NewHandler(svc, cfg)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reminders"
}

// Service returns the scan service for the queue worker.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts the cron entry point. It sits outside the JWT
// dashboard group and is guarded by the shared scheduler token instead.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/cron", m.handler.CronAuth())
	group.POST("/reminders/scan", m.handler.HandleScan)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
