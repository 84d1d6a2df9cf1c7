package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleet_console_backend/internal/booking/form"
	"fleet_console_backend/internal/booking/service"
	"fleet_console_backend/internal/booking/transport"
	"fleet_console_backend/platform/httpkit"
	"fleet_console_backend/platform/validator"
)

// Handler handles HTTP requests for booking form sessions.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new booking handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// StartSession POST /api/v1/bookings/sessions
func (h *Handler) StartSession(c *gin.Context) {
	var req transport.StartSessionRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	view, err := h.svc.Start(c.Request.Context(), id.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, view)
}

// GetSession GET /api/v1/bookings/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	h.withSession(c, func(sid, actor uuid.UUID) (form.View, error) {
		return h.svc.Get(sid, actor)
	})
}

// DiscardSession DELETE /api/v1/bookings/sessions/:id
func (h *Handler) DiscardSession(c *gin.Context) {
	sid, actor, ok := h.session(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.Discard(sid, actor)) {
		return
	}
	httpkit.NoContent(c)
}

// SetVehicle PUT /api/v1/bookings/sessions/:id/vehicle
func (h *Handler) SetVehicle(c *gin.Context) {
	var req transport.SetVehicleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withSession(c, func(sid, actor uuid.UUID) (form.View, error) {
		return h.svc.SetVehicle(sid, actor, req)
	})
}

// SetDates PUT /api/v1/bookings/sessions/:id/dates
func (h *Handler) SetDates(c *gin.Context) {
	var req transport.SetDatesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withSession(c, func(sid, actor uuid.UUID) (form.View, error) {
		return h.svc.SetDates(sid, actor, req)
	})
}

// SetPackage PUT /api/v1/bookings/sessions/:id/package
func (h *Handler) SetPackage(c *gin.Context) {
	var req transport.SetPackageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withSession(c, func(sid, actor uuid.UUID) (form.View, error) {
		return h.svc.SetPackage(sid, actor, req)
	})
}

// SetDiscount PUT /api/v1/bookings/sessions/:id/discount
func (h *Handler) SetDiscount(c *gin.Context) {
	var req transport.SetDiscountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withSession(c, func(sid, actor uuid.UUID) (form.View, error) {
		return h.svc.SetDiscount(c.Request.Context(), sid, actor, req)
	})
}

// SetCustomer PUT /api/v1/bookings/sessions/:id/customer
func (h *Handler) SetCustomer(c *gin.Context) {
	var req transport.SetCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withSession(c, func(sid, actor uuid.UUID) (form.View, error) {
		return h.svc.SetCustomer(sid, actor, req)
	})
}

// SetLogistics PUT /api/v1/bookings/sessions/:id/logistics
func (h *Handler) SetLogistics(c *gin.Context) {
	var req transport.SetLogisticsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withSession(c, func(sid, actor uuid.UUID) (form.View, error) {
		return h.svc.SetLogistics(sid, actor, req)
	})
}

// ToggleOffering POST /api/v1/bookings/sessions/:id/offerings/:offeringId/toggle
func (h *Handler) ToggleOffering(c *gin.Context) {
	offeringID, ok := h.offeringID(c)
	if !ok {
		return
	}
	var req transport.ToggleOfferingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withSession(c, func(sid, actor uuid.UUID) (form.View, error) {
		return h.svc.ToggleOffering(sid, actor, offeringID, req.Selected)
	})
}

// SetOfferingQuantity PUT /api/v1/bookings/sessions/:id/offerings/:offeringId/quantity
func (h *Handler) SetOfferingQuantity(c *gin.Context) {
	offeringID, ok := h.offeringID(c)
	if !ok {
		return
	}
	var req transport.SetQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withSession(c, func(sid, actor uuid.UUID) (form.View, error) {
		return h.svc.SetOfferingQuantity(sid, actor, offeringID, req.Quantity)
	})
}

// Next POST /api/v1/bookings/sessions/:id/wizard/next
func (h *Handler) Next(c *gin.Context) {
	h.withSession(c, h.svc.Next)
}

// Previous POST /api/v1/bookings/sessions/:id/wizard/previous
func (h *Handler) Previous(c *gin.Context) {
	h.withSession(c, h.svc.Previous)
}

// GoTo POST /api/v1/bookings/sessions/:id/wizard/goto/:step
func (h *Handler) GoTo(c *gin.Context) {
	var uri transport.StepURI
	if err := c.ShouldBindUri(&uri); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(uri); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	h.withSession(c, func(sid, actor uuid.UUID) (form.View, error) {
		return h.svc.GoTo(sid, actor, uri.Step)
	})
}

// Submit POST /api/v1/bookings/sessions/:id/submit
func (h *Handler) Submit(c *gin.Context) {
	h.withSession(c, func(sid, actor uuid.UUID) (form.View, error) {
		return h.svc.Submit(c.Request.Context(), sid, actor)
	})
}

// History GET /api/v1/bookings/history/:bookingId
func (h *Handler) History(c *gin.Context) {
	var uri transport.BookingURI
	if err := c.ShouldBindUri(&uri); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(uri); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.History(c.Request.Context(), uri.BookingID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func (h *Handler) session(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	var uri transport.SessionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, uuid.Nil, false
	}
	sid, err := uuid.Parse(uri.ID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, uuid.Nil, false
	}
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return uuid.Nil, uuid.Nil, false
	}
	return sid, id.UserID(), true
}

func (h *Handler) offeringID(c *gin.Context) (uuid.UUID, bool) {
	var uri transport.OfferingURI
	if err := c.ShouldBindUri(&uri); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(uri.OfferingID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) withSession(c *gin.Context, fn func(sid, actor uuid.UUID) (form.View, error)) {
	sid, actor, ok := h.session(c)
	if !ok {
		return
	}
	view, err := fn(sid, actor)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, view)
}
