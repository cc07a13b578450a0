package workflows

import (
	"net/http"

	"shopnotify_backend/platform/httpkit"
	"shopnotify_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles dashboard requests for workflow configuration.
type Handler struct {
	service *Service
	val     *validator.Validator
}

// NewHandler creates a new workflows handler.
func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// WorkflowResponse is the dashboard view of one stage.
type WorkflowResponse struct {
	ID             uuid.UUID  `json:"id"`
	Category       string     `json:"category"`
	Title          string     `json:"title"`
	Subtitle       string     `json:"subtitle"`
	Delay          *string    `json:"delay"`
	DelayMinutes   int        `json:"delayMinutes"`
	Enabled        bool       `json:"enabled"`
	TriggerTopic   string     `json:"triggerTopic"`
	TemplateID     *uuid.UUID `json:"templateId"`
	TemplateDataID *uuid.UUID `json:"templateDataId"`
}

// HandleList lists the caller's workflow stages.
// GET /api/v1/workflows
func (h *Handler) HandleList(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	list, err := h.service.List(c.Request.Context(), id.StoreID())
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]WorkflowResponse, len(list))
	for i, w := range list {
		result[i] = toWorkflowResponse(w)
	}
	httpkit.OK(c, result)
}

// ToggleRequest flips a stage on or off.
type ToggleRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// HandleToggle enables or disables a stage.
// PATCH /api/v1/workflows/:workflowId/toggle
func (h *Handler) HandleToggle(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	workflowID, err := uuid.Parse(c.Param("workflowId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid workflow ID", nil)
		return
	}

	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	if err := h.service.SetEnabled(c.Request.Context(), id.StoreID(), workflowID, *req.Enabled); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "workflow updated"})
}

// UpdateRequest edits a stage.
type UpdateRequest struct {
	Subtitle       *string    `json:"subtitle" validate:"omitempty,max=200"`
	Delay          *string    `json:"delay" validate:"omitempty,max=40"`
	TemplateID     *uuid.UUID `json:"templateId"`
	TemplateDataID *uuid.UUID `json:"templateDataId"`
}

// HandleUpdate edits a stage's delay, subtitle, and template linkage.
// PUT /api/v1/workflows/:workflowId
func (h *Handler) HandleUpdate(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	workflowID, err := uuid.Parse(c.Param("workflowId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid workflow ID", nil)
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	err = h.service.Update(c.Request.Context(), id.StoreID(), workflowID, UpdateParams{
		Subtitle:       req.Subtitle,
		Delay:          req.Delay,
		TemplateID:     req.TemplateID,
		TemplateDataID: req.TemplateDataID,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "workflow updated"})
}

// HandleDelete removes a stage entirely.
// DELETE /api/v1/workflows/:workflowId
func (h *Handler) HandleDelete(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	workflowID, err := uuid.Parse(c.Param("workflowId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid workflow ID", nil)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id.StoreID(), workflowID); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "workflow deleted"})
}

func toWorkflowResponse(w WorkflowEvent) WorkflowResponse {
	return WorkflowResponse{
		ID:             w.ID,
		Category:       w.Category,
		Title:          w.Title,
		Subtitle:       w.Subtitle,
		Delay:          w.Delay,
		DelayMinutes:   w.DelayMinutes(),
		Enabled:        w.Enabled,
		TriggerTopic:   w.TriggerTopic,
		TemplateID:     w.TemplateID,
		TemplateDataID: w.TemplateDataID,
	}
}
