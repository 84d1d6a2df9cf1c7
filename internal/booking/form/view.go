package form

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fleet_console_backend/internal/booking/preview"
	"fleet_console_backend/internal/booking/pricing"
	"fleet_console_backend/internal/booking/wizard"
	"fleet_console_backend/platform/apperr"
)

// OfferingView is one row of the sorted offering list.
type OfferingView struct {
	OfferingID uuid.UUID       `json:"offeringId"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
	Included   bool            `json:"included"`
	Mandatory  bool            `json:"mandatory"`
}

// View is the full derived state returned after every event.
type View struct {
	ID           uuid.UUID           `json:"id"`
	Mode         Mode                `json:"mode"`
	BookingID    string              `json:"bookingId,omitempty"`
	VehicleID    *uuid.UUID          `json:"vehicleId"`
	StartAt      *time.Time          `json:"startAt"`
	EndAt        *time.Time          `json:"endAt"`
	DurationDays int                 `json:"durationDays"`
	PackageID    *uuid.UUID          `json:"packageId"`
	Discount     *pricing.Discount   `json:"discount"`
	Customer     Customer            `json:"customer"`
	Logistics    Logistics           `json:"logistics"`
	Offerings    []OfferingView      `json:"offerings"`
	Estimate     pricing.Breakdown   `json:"estimate"`
	Preview      preview.State       `json:"preview"`
	Wizard       wizard.State        `json:"wizard"`
	Issues       []apperr.FieldError `json:"issues"`
}

// View renders the session.
func (s *Session) View() View {
	facts := s.Facts()
	v := View{
		ID:           s.opts.ID,
		Mode:         s.opts.Mode,
		BookingID:    s.opts.BookingID,
		VehicleID:    s.vehicleID,
		StartAt:      s.start,
		EndAt:        s.end,
		DurationDays: facts.DurationDays,
		PackageID:    s.packageID,
		Discount:     s.discount,
		Customer:     s.customer,
		Logistics:    s.logistics,
		Offerings:    make([]OfferingView, 0),
		Estimate:     s.Estimate(),
		Preview:      s.machine.State(),
		Wizard:       s.gate.State(facts),
		Issues:       s.Validate(),
	}
	if v.Issues == nil {
		v.Issues = []apperr.FieldError{}
	}
	for _, line := range s.offerings.Sorted() {
		v.Offerings = append(v.Offerings, OfferingView{
			OfferingID: line.Offering.ID,
			Name:       line.Offering.Name,
			UnitPrice:  line.Offering.UnitPrice,
			Quantity:   line.Quantity,
			Included:   line.Included,
			Mandatory:  s.offerings.IsMandatory(line.Offering.ID),
		})
	}
	return v
}
