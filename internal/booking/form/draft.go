package form

import (
	"time"

	"github.com/google/uuid"

	"fleet_console_backend/internal/booking/pricing"
)

// DraftLine is a previously booked offering.
type DraftLine struct {
	OfferingID uuid.UUID
	Quantity   int
}

// Draft is an existing booking used to prefill an update session.
type Draft struct {
	VehicleID *uuid.UUID
	StartAt   *time.Time
	EndAt     *time.Time
	PackageID *uuid.UUID
	Offerings []DraftLine
	Customer  Customer
	Logistics Logistics

	// DiscountID and DiscountCode reference the discount applied to the
	// booking, if any. The id wins when both are set.
	DiscountID   *uuid.UUID
	DiscountCode string
}

// ApplyDraft prefills the session. Ids no longer in the catalog are
// dropped, and inclusion is recomputed from the live package rather than
// copied from the old booking.
func (s *Session) ApplyDraft(d Draft, discount *pricing.Discount) error {
	if err := s.guard(); err != nil {
		return err
	}

	if d.VehicleID != nil {
		if _, ok := s.catalog.Vehicle(*d.VehicleID); ok {
			id := *d.VehicleID
			s.vehicleID = &id
		}
	}
	s.start = copyTime(d.StartAt)
	s.end = copyTime(d.EndAt)

	for _, line := range d.Offerings {
		s.offerings.Toggle(line.OfferingID, true)
		s.offerings.SetQuantity(line.OfferingID, line.Quantity)
	}

	var included []uuid.UUID
	if d.PackageID != nil {
		if pkg, ok := s.catalog.Package(*d.PackageID, nil); ok {
			id := *d.PackageID
			s.packageID = &id
			included = pkg.IncludedOfferingIDs
		}
	}
	s.offerings.ReconcilePackageInclusion(included)

	if discount != nil {
		v := *discount
		s.discount = &v
	}

	if err := s.SetCustomer(d.Customer); err != nil {
		return err
	}
	if err := s.SetLogistics(d.Logistics); err != nil {
		return err
	}
	s.pricingChanged()
	return nil
}
