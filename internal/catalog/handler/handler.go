package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleet_console_backend/internal/catalog/service"
	"fleet_console_backend/internal/catalog/transport"
	"fleet_console_backend/platform/httpkit"
	"fleet_console_backend/platform/validator"
)

// Handler handles HTTP requests for catalog.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new catalog handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListVehicles GET /api/v1/catalog/vehicles
func (h *Handler) ListVehicles(c *gin.Context) {
	result, err := h.svc.ListVehicles(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetVehicle GET /api/v1/catalog/vehicles/:id
func (h *Handler) GetVehicle(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	result, err := h.svc.GetVehicle(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListOfferings GET /api/v1/catalog/offerings
func (h *Handler) ListOfferings(c *gin.Context) {
	result, err := h.svc.ListOfferings(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListPackages GET /api/v1/catalog/packages
func (h *Handler) ListPackages(c *gin.Context) {
	result, err := h.svc.ListPackages(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetPackage GET /api/v1/catalog/packages/:id
func (h *Handler) GetPackage(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	result, err := h.svc.GetPackage(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// LookupDiscount GET /api/v1/catalog/discounts/:code
func (h *Handler) LookupDiscount(c *gin.Context) {
	var req transport.DiscountLookupRequest
	if err := c.ShouldBindUri(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.LookupDiscount(c.Request.Context(), req.Code)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req transport.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
