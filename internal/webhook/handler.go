package webhook

import (
	"net/http"

	"shopnotify_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler receives verified Shopify webhooks.
type Handler struct {
	service *Service
}

// NewHandler creates a new webhook handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleShopify processes one webhook delivery. The verify middleware has
// already resolved the store and checked the signature; the response carries
// the per-title dispatch summary so delivery logs show what fired.
// POST /api/v1/webhooks/shopify
func (h *Handler) HandleShopify(c *gin.Context) {
	store, ok := storeFromContext(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "unverified webhook", nil)
		return
	}
	body, ok := bodyFromContext(c)
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, "missing payload", nil)
		return
	}

	topic := c.GetHeader(headerTopic)
	if topic == "" {
		httpkit.Error(c, http.StatusBadRequest, "missing topic header", nil)
		return
	}

	summary, err := h.service.Process(c.Request.Context(), store, topic, body)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, summary)
}
