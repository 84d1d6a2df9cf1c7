// Package booking provides the booking form bounded context module: form
// sessions, local pricing and the preview/commit round trips.
package booking

import (
	"context"
	"fmt"
	"time"

	"fleet_console_backend/internal/booking/handler"
	"fleet_console_backend/internal/booking/ports"
	"fleet_console_backend/internal/booking/pricingapi"
	"fleet_console_backend/internal/booking/repository"
	"fleet_console_backend/internal/booking/service"
	"fleet_console_backend/internal/booking/wizard"
	"fleet_console_backend/internal/events"
	apphttp "fleet_console_backend/internal/http"
	"fleet_console_backend/platform/config"
	"fleet_console_backend/platform/logger"
	"fleet_console_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ModuleConfig combines the config interfaces the booking module needs.
type ModuleConfig interface {
	config.PricingAPIConfig
	config.BookingConfig
}

// Module is the booking bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	ttl     time.Duration
}

// NewModule creates the booking module. The wizard flows are loaded here
// so a broken override file fails startup.
func NewModule(pool *pgxpool.Pool, catalog ports.CatalogReader, bus events.Bus, val *validator.Validator, cfg ModuleConfig, log *logger.Logger) (*Module, error) {
	flows, err := wizard.LoadFlows(cfg.GetBookingWizardFlowsPath())
	if err != nil {
		return nil, fmt.Errorf("load wizard flows: %w", err)
	}

	backend := pricingapi.New(cfg, log)
	ledger := repository.New(pool)
	svc := service.New(catalog, backend, ledger, bus, service.Options{
		Flows:  flows,
		Region: cfg.GetPhoneDefaultRegion(),
		TTL:    cfg.GetBookingSessionTTL(),
	}, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		ttl:     cfg.GetBookingSessionTTL(),
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "booking"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RunJanitor evicts idle sessions until ctx is done.
func (m *Module) RunJanitor(ctx context.Context) {
	every := m.ttl / 4
	if every < time.Minute {
		every = time.Minute
	}
	m.service.RunJanitor(ctx, every)
}

// RegisterRoutes mounts booking routes on the provided router context.
// Backend round trips are rate limited per client IP.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	bookings := ctx.Protected.Group("/bookings")
	bookings.GET("/history/:bookingId", m.handler.History)

	sessions := bookings.Group("/sessions")
	sessions.POST("", ctx.RateLimit(), m.handler.StartSession)
	sessions.GET("/:id", m.handler.GetSession)
	sessions.DELETE("/:id", m.handler.DiscardSession)

	sessions.PUT("/:id/vehicle", m.handler.SetVehicle)
	sessions.PUT("/:id/dates", m.handler.SetDates)
	sessions.PUT("/:id/package", m.handler.SetPackage)
	sessions.PUT("/:id/discount", m.handler.SetDiscount)
	sessions.PUT("/:id/customer", m.handler.SetCustomer)
	sessions.PUT("/:id/logistics", m.handler.SetLogistics)

	sessions.POST("/:id/offerings/:offeringId/toggle", m.handler.ToggleOffering)
	sessions.PUT("/:id/offerings/:offeringId/quantity", m.handler.SetOfferingQuantity)

	sessions.POST("/:id/wizard/next", m.handler.Next)
	sessions.POST("/:id/wizard/previous", m.handler.Previous)
	sessions.POST("/:id/wizard/goto/:step", m.handler.GoTo)

	sessions.POST("/:id/submit", ctx.RateLimit(), m.handler.Submit)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
