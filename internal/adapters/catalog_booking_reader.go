package adapters

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	catrepo "fleet_console_backend/internal/catalog/repository"
	catsvc "fleet_console_backend/internal/catalog/service"

	"fleet_console_backend/internal/booking/form"
	"fleet_console_backend/internal/booking/offerings"
	"fleet_console_backend/internal/booking/ports"
	"fleet_console_backend/internal/booking/pricing"
)

// CatalogBookingReader adapts the catalog service for the booking domain,
// satisfying ports.CatalogReader.
type CatalogBookingReader struct {
	svc *catsvc.Service
}

// NewCatalogBookingReader creates a new catalog reader adapter.
func NewCatalogBookingReader(svc *catsvc.Service) *CatalogBookingReader {
	return &CatalogBookingReader{svc: svc}
}

var _ ports.CatalogReader = (*CatalogBookingReader)(nil)

// LoadCatalog maps one catalog snapshot onto the form's catalog types.
func (a *CatalogBookingReader) LoadCatalog(ctx context.Context) (*form.Catalog, error) {
	snap, err := a.svc.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog adapter: load snapshot: %w", err)
	}

	vehicles := make([]form.Vehicle, 0, len(snap.Vehicles))
	for _, v := range snap.Vehicles {
		vehicles = append(vehicles, form.Vehicle{ID: v.ID, Name: v.DisplayName, Plate: v.Plate, DailyRate: v.DailyRate})
	}

	offers := make([]offerings.Offering, 0, len(snap.Offerings))
	for _, o := range snap.Offerings {
		offers = append(offers, offerings.Offering{
			ID:          o.ID,
			Name:        o.Name,
			UnitPrice:   o.UnitPrice,
			Mandatory:   o.Mandatory,
			MaxQuantity: o.MaxQuantity,
		})
	}

	packages := make([]pricing.Package, 0, len(snap.Packages))
	for _, p := range snap.Packages {
		packages = append(packages, pricing.Package{
			ID:                      p.ID,
			Name:                    p.Name,
			ModifierType:            p.ModifierType,
			ModifierValue:           p.ModifierValue,
			AllowDiscountOnModifier: p.AllowDiscountOnModifier,
			IncludedOfferingIDs:     p.IncludedOfferingIDs,
		})
	}

	rates := make([]form.PackageRate, 0, len(snap.PackageRates))
	for _, r := range snap.PackageRates {
		rates = append(rates, form.PackageRate{PackageID: r.PackageID, VehicleID: r.VehicleID, DailyRate: r.DailyRate})
	}

	return form.NewCatalog(vehicles, offers, snap.MandatoryIDs, packages, rates), nil
}

// LookupDiscount resolves a discount code for the booking domain.
func (a *CatalogBookingReader) LookupDiscount(ctx context.Context, code string) (pricing.Discount, error) {
	d, err := a.svc.GetDiscountByCode(ctx, code)
	if err != nil {
		return pricing.Discount{}, err
	}
	return toPricingDiscount(d), nil
}

// DiscountByID resolves a discount by id for the booking domain.
func (a *CatalogBookingReader) DiscountByID(ctx context.Context, id uuid.UUID) (pricing.Discount, error) {
	d, err := a.svc.GetDiscountByID(ctx, id)
	if err != nil {
		return pricing.Discount{}, err
	}
	return toPricingDiscount(d), nil
}

func toPricingDiscount(d catrepo.Discount) pricing.Discount {
	return pricing.Discount{ID: d.ID, Code: d.Code, Type: d.Type, Value: d.Value}
}
