package stores

import (
	"net/http"

	"shopnotify_backend/platform/httpkit"
	"shopnotify_backend/platform/phone"
	"shopnotify_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles dashboard requests for store settings.
type Handler struct {
	repo *Repository
	svc  *Service
	val  *validator.Validator
}

// NewHandler creates a new stores handler.
func NewHandler(repo *Repository, svc *Service, val *validator.Validator) *Handler {
	return &Handler{repo: repo, svc: svc, val: val}
}

// StoreResponse is the dashboard view of a store. Credentials are masked.
type StoreResponse struct {
	ID            uuid.UUID `json:"id"`
	ShopDomain    string    `json:"shopDomain"`
	BrandName     string    `json:"brandName"`
	OnlineShopURL string    `json:"onlineShopUrl"`
	PhoneNumber   string    `json:"phoneNumber"`
	CountryCode   string    `json:"countryCode"`
	PhoneNumberID string    `json:"phoneNumberId"`
	HasAPIKey     bool      `json:"hasApiKey"`
	Active        bool      `json:"active"`
}

// HandleGetStore returns the caller's store settings.
// GET /api/v1/store
func (h *Handler) HandleGetStore(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	store, err := h.repo.GetByID(c.Request.Context(), id.StoreID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toStoreResponse(store))
}

// UpdateCredentialsRequest is the request body for replacing provider credentials.
type UpdateCredentialsRequest struct {
	APIKey        string `json:"apiKey" validate:"required,min=10"`
	CompanyID     string `json:"companyId" validate:"required"`
	PhoneNumberID string `json:"phoneNumberId" validate:"required"`
}

// HandleUpdateCredentials replaces the provider credentials for the caller's store.
// PUT /api/v1/store/credentials
func (h *Handler) HandleUpdateCredentials(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req UpdateCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	err := h.repo.UpdateCredentials(c.Request.Context(), id.StoreID(), req.APIKey, req.CompanyID, req.PhoneNumberID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "credentials updated"})
}

// UpdateBrandRequest is the request body for updating brand fields.
type UpdateBrandRequest struct {
	BrandName     string `json:"brandName" validate:"required,max=120"`
	OnlineShopURL string `json:"onlineShopUrl" validate:"required,url"`
}

// HandleUpdateBrand updates the brand fields used for variable mapping.
// PUT /api/v1/store/brand
func (h *Handler) HandleUpdateBrand(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req UpdateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	err := h.repo.UpdateBrand(c.Request.Context(), id.StoreID(), req.BrandName, req.OnlineShopURL)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "brand updated"})
}

// ProvisionRequest is the request body for connecting a new store.
type ProvisionRequest struct {
	ShopDomain    string `json:"shopDomain" validate:"required,hostname"`
	BrandName     string `json:"brandName" validate:"required,max=120"`
	OnlineShopURL string `json:"onlineShopUrl" validate:"required,url"`
	PhoneNumber   string `json:"phoneNumber" validate:"required"`
	APIKey        string `json:"apiKey" validate:"required,min=10"`
	CompanyID     string `json:"companyId" validate:"required"`
	PhoneNumberID string `json:"phoneNumberId" validate:"required"`
	WebhookSecret string `json:"webhookSecret" validate:"required,min=16"`
}

// HandleProvision connects a new store and seeds its workflow catalog.
// POST /api/v1/store/provision
func (h *Handler) HandleProvision(c *gin.Context) {
	var req ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	normalized := phone.NormalizeE164(req.PhoneNumber)
	countryCode, _ := phone.Split(normalized)

	store, err := h.svc.Provision(c.Request.Context(), Store{
		ShopDomain:    req.ShopDomain,
		BrandName:     req.BrandName,
		OnlineShopURL: req.OnlineShopURL,
		PhoneNumber:   normalized,
		CountryCode:   countryCode,
		APIKey:        req.APIKey,
		CompanyID:     req.CompanyID,
		PhoneNumberID: req.PhoneNumberID,
		WebhookSecret: req.WebhookSecret,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, toStoreResponse(store))
}

func toStoreResponse(s Store) StoreResponse {
	return StoreResponse{
		ID:            s.ID,
		ShopDomain:    s.ShopDomain,
		BrandName:     s.BrandName,
		OnlineShopURL: s.OnlineShopURL,
		PhoneNumber:   s.PhoneNumber,
		CountryCode:   s.CountryCode,
		PhoneNumberID: s.PhoneNumberID,
		HasAPIKey:     s.APIKey != "",
		Active:        s.Active,
	}
}
