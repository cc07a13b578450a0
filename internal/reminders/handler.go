package reminders

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"shopnotify_backend/platform/config"
	"shopnotify_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler exposes the scan to external schedulers.
type Handler struct {
	service *Service
	cfg     config.CronConfig
}

// NewHandler creates a new reminders handler.
func NewHandler(service *Service, cfg config.CronConfig) *Handler {
	return &Handler{service: service, cfg: cfg}
}

// CronAuth guards the cron entry point with the shared scheduler token.
func (h *Handler) CronAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		expected := h.cfg.GetCronAuthToken()
		if expected == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// HandleScan runs one scan pass followed by cleanup and returns the result.
// POST /api/v1/cron/reminders/scan
func (h *Handler) HandleScan(c *gin.Context) {
	result, err := h.service.Scan(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	cleanup, err := h.service.Cleanup(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"scan": result, "cleanup": cleanup})
}
