package templates

import (
	"context"
	"net/http"

	"shopnotify_backend/platform/httpkit"
	"shopnotify_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const errInvalidID = "invalid id"

// TemplateReader reads templates and their slots for the dashboard. Every
// read is scoped to the caller's store.
type TemplateReader interface {
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]Template, error)
	ListVariables(ctx context.Context, storeID, dataID uuid.UUID) ([]Variable, error)
}

// ConfigService mutates template configuration on behalf of one store.
type ConfigService interface {
	Sync(ctx context.Context, storeID uuid.UUID, synced []SyncedTemplate) (int, error)
	UpdateVariableMapping(ctx context.Context, storeID, variableID uuid.UUID, mappingField, fallbackValue *string) error
	DeleteData(ctx context.Context, storeID, dataID uuid.UUID) error
	DeleteTemplate(ctx context.Context, storeID, templateID uuid.UUID) error
}

// Handler handles dashboard requests for template configuration.
type Handler struct {
	service ConfigService
	repo    TemplateReader
	val     *validator.Validator
}

// NewHandler creates a new templates handler.
func NewHandler(service ConfigService, repo TemplateReader, val *validator.Validator) *Handler {
	return &Handler{service: service, repo: repo, val: val}
}

// TemplateResponse is the dashboard view of a template.
type TemplateResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Language string    `json:"language"`
	Status   string    `json:"status"`
}

// HandleList lists the caller's templates.
// GET /api/v1/templates
func (h *Handler) HandleList(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	list, err := h.repo.ListByStore(c.Request.Context(), id.StoreID())
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]TemplateResponse, len(list))
	for i, t := range list {
		result[i] = TemplateResponse{ID: t.ID, Name: t.Name, Language: t.Language, Status: t.Status}
	}
	httpkit.OK(c, result)
}

// SyncRequest carries the provider's template structures.
type SyncRequest struct {
	Templates []SyncTemplateRequest `json:"templates" validate:"required,min=1,dive"`
}

// SyncTemplateRequest is one template in a sync request.
type SyncTemplateRequest struct {
	Name       string      `json:"name" validate:"required"`
	Language   string      `json:"language" validate:"required"`
	Status     string      `json:"status" validate:"required"`
	ProviderID string      `json:"providerId"`
	Components []Component `json:"components" validate:"required,min=1"`
}

// HandleSync records fresh template snapshots from the provider.
// POST /api/v1/templates/sync
func (h *Handler) HandleSync(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	synced := make([]SyncedTemplate, len(req.Templates))
	for i, t := range req.Templates {
		synced[i] = SyncedTemplate{
			Name:       t.Name,
			Language:   t.Language,
			Status:     t.Status,
			ProviderID: t.ProviderID,
			Components: t.Components,
		}
	}

	count, err := h.service.Sync(c.Request.Context(), id.StoreID(), synced)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"synced": count})
}

// VariableResponse is the dashboard view of one template slot.
type VariableResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Component     string    `json:"component"`
	MappingField  *string   `json:"mappingField"`
	FallbackValue *string   `json:"fallbackValue"`
}

// HandleListVariables lists the slots of one snapshot.
// GET /api/v1/templates/data/:dataId/variables
func (h *Handler) HandleListVariables(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	dataID, err := uuid.Parse(c.Param("dataId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidID, nil)
		return
	}

	vars, err := h.repo.ListVariables(c.Request.Context(), id.StoreID(), dataID)
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]VariableResponse, len(vars))
	for i, v := range vars {
		result[i] = VariableResponse{
			ID:            v.ID,
			Name:          v.Name,
			Component:     v.Component.String(),
			MappingField:  v.MappingField,
			FallbackValue: v.FallbackValue,
		}
	}
	httpkit.OK(c, result)
}

// UpdateVariableRequest edits the mapping of one slot.
type UpdateVariableRequest struct {
	MappingField  *string `json:"mappingField" validate:"omitempty,max=60"`
	FallbackValue *string `json:"fallbackValue" validate:"omitempty,max=500"`
}

// HandleUpdateVariable edits the mapping field and fallback value of a slot.
// PUT /api/v1/templates/variables/:variableId
func (h *Handler) HandleUpdateVariable(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	variableID, err := uuid.Parse(c.Param("variableId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidID, nil)
		return
	}

	var req UpdateVariableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	if err := h.service.UpdateVariableMapping(c.Request.Context(), id.StoreID(), variableID, req.MappingField, req.FallbackValue); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "variable updated"})
}

// HandleDeleteData removes one snapshot and clears workflow linkage to it.
// DELETE /api/v1/templates/data/:dataId
func (h *Handler) HandleDeleteData(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	dataID, err := uuid.Parse(c.Param("dataId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidID, nil)
		return
	}

	if err := h.service.DeleteData(c.Request.Context(), id.StoreID(), dataID); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "template snapshot deleted"})
}

// HandleDeleteTemplate removes a template entirely.
// DELETE /api/v1/templates/:templateId
func (h *Handler) HandleDeleteTemplate(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	templateID, err := uuid.Parse(c.Param("templateId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidID, nil)
		return
	}

	if err := h.service.DeleteTemplate(c.Request.Context(), id.StoreID(), templateID); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "template deleted"})
}
