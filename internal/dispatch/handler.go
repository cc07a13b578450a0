package dispatch

import (
	"context"
	"net/http"

	"shopnotify_backend/internal/stores"
	"shopnotify_backend/platform/httpkit"
	"shopnotify_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StoreReader loads the caller's store for credentials and branding.
type StoreReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (stores.Store, error)
}

// Handler handles dashboard dispatch requests.
type Handler struct {
	service *Service
	stores  StoreReader
	val     *validator.Validator
}

// NewHandler creates a new dispatch handler.
func NewHandler(service *Service, storeReader StoreReader, val *validator.Validator) *Handler {
	return &Handler{service: service, stores: storeReader, val: val}
}

// TestSendRequest is a manual template send from the dashboard.
type TestSendRequest struct {
	TemplateID     uuid.UUID         `json:"templateId" validate:"required"`
	TemplateDataID uuid.UUID         `json:"templateDataId" validate:"required"`
	Phone          string            `json:"phone" validate:"required,max=20"`
	Values         map[string]string `json:"values"`
	HeaderMediaID  string            `json:"headerMediaId"`
	ButtonLink     string            `json:"buttonLink" validate:"omitempty,url"`
}

// HandleTestSend sends one template with literal values to one number.
// POST /api/v1/dispatch/test-send
func (h *Handler) HandleTestSend(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req TestSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	store, err := h.stores.GetByID(c.Request.Context(), id.StoreID())
	if httpkit.HandleError(c, err) {
		return
	}

	err = h.service.TestSend(c.Request.Context(), store, TestSendParams{
		TemplateID:     req.TemplateID,
		TemplateDataID: req.TemplateDataID,
		Phone:          req.Phone,
		Values:         req.Values,
		HeaderMediaID:  req.HeaderMediaID,
		ButtonLink:     req.ButtonLink,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "test message sent"})
}

// HandleRecentEvents returns the debug buffer of recently received events.
// GET /api/v1/dispatch/recent-events
func (h *Handler) HandleRecentEvents(c *gin.Context) {
	if id := httpkit.MustGetIdentity(c); id == nil {
		return
	}
	httpkit.OK(c, h.service.Ring().Recent())
}
