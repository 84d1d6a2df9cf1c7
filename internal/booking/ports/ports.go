// Package ports defines the interfaces the booking module needs from other
// modules and external systems. Implementations live in internal/adapters
// and internal/booking/pricingapi.
package ports

import (
	"context"

	"github.com/google/uuid"

	"fleet_console_backend/internal/booking/form"
	"fleet_console_backend/internal/booking/preview"
	"fleet_console_backend/internal/booking/pricing"
)

// CatalogReader loads the reference data a form session works against.
type CatalogReader interface {
	// LoadCatalog returns a fresh snapshot of vehicles, offerings, the
	// mandatory offering set, packages and package rates.
	LoadCatalog(ctx context.Context) (*form.Catalog, error)
	// LookupDiscount resolves a discount code. Unknown codes return an
	// apperr NotFound error.
	LookupDiscount(ctx context.Context, code string) (pricing.Discount, error)
	// DiscountByID resolves the discount a stored booking references.
	DiscountByID(ctx context.Context, id uuid.UUID) (pricing.Discount, error)
}

// PricingBackend is the booking backend that prices, validates and stores
// bookings.
type PricingBackend interface {
	Preview(ctx context.Context, req form.PreviewRequest) (preview.Result, error)
	Create(ctx context.Context, sub form.Submission) (string, error)
	Update(ctx context.Context, sub form.Submission) (string, error)
	GetBooking(ctx context.Context, bookingID string) (form.Draft, error)
}
