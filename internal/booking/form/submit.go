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

// PreviewLine is one offering line sent for a server preview.
type PreviewLine struct {
	OfferingID uuid.UUID
	Quantity   int
}

// PreviewRequest is the snapshot of inputs a preview is computed for.
type PreviewRequest struct {
	BookingID     string
	VehicleID     uuid.UUID
	StartAt       time.Time
	EndAt         time.Time
	PackageID     *uuid.UUID
	Offerings     []PreviewLine
	DiscountCodes []string
}

// SubmissionLine is one offering line of a committed booking.
type SubmissionLine struct {
	OfferingID uuid.UUID       `json:"offeringId"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Included   bool            `json:"included"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Total      decimal.Decimal `json:"total"`
}

// Submission is the payload handed to the create or update mutation.
type Submission struct {
	SessionID      uuid.UUID         `json:"sessionId"`
	Mode           Mode              `json:"mode"`
	BookingID      string            `json:"bookingId,omitempty"`
	SubmittedBy    uuid.UUID         `json:"submittedBy"`
	VehicleID      uuid.UUID         `json:"vehicleId"`
	VehicleName    string            `json:"vehicleName"`
	PackageID      *uuid.UUID        `json:"packageId,omitempty"`
	DiscountID     *uuid.UUID        `json:"discountId,omitempty"`
	DiscountCode   string            `json:"discountCode,omitempty"`
	StartAt        time.Time         `json:"startAt"`
	EndAt          time.Time         `json:"endAt"`
	DurationDays   int               `json:"durationDays"`
	Offerings      []SubmissionLine  `json:"offerings"`
	Customer       Customer          `json:"customer"`
	Logistics      Logistics         `json:"logistics"`
	Breakdown      pricing.Breakdown `json:"breakdown"`
	PricingSummary preview.Summary   `json:"pricingSummary"`
}

// Validate runs the local checks that must pass before any network call.
func (s *Session) Validate() []apperr.FieldError {
	var errs []apperr.FieldError
	add := func(field, msg string) {
		errs = append(errs, apperr.FieldError{Field: field, Message: msg})
	}

	if s.vehicleID == nil {
		add("vehicleId", "vehicle is required")
	}
	if s.start == nil {
		add("startAt", "start date is required")
	}
	if s.end == nil {
		add("endAt", "end date is required")
	}
	if s.start != nil && s.end != nil && !s.end.After(*s.start) {
		add("endAt", "end must be after start")
	}

	for _, step := range s.opts.Flow.Steps {
		switch step.Key {
		case wizard.StepCustomer:
			f := s.Facts()
			if !f.HasEmail && !f.HasPhone {
				add("customer", "an email address or a valid phone number is required")
			}
		case wizard.StepLogistics:
			if s.logistics.Pickup == "" {
				add("pickup", "pickup location is required")
			}
			if s.logistics.Dropoff == "" {
				add("dropoff", "drop-off location is required")
			}
		}
	}
	return errs
}

func (s *Session) validationError() error {
	if errs := s.Validate(); len(errs) > 0 {
		return apperr.ValidationFields("booking form is incomplete", errs)
	}
	return nil
}

// BeginPreview validates locally and moves Idle to Previewing. ok is
// false when the machine is not Idle, which callers treat as a no-op.
func (s *Session) BeginPreview() (ticket preview.Ticket, req PreviewRequest, ok bool, err error) {
	if err := s.validationError(); err != nil {
		return preview.Ticket{}, PreviewRequest{}, false, err
	}
	ticket, ok = s.machine.BeginPreview()
	if !ok {
		return preview.Ticket{}, PreviewRequest{}, false, nil
	}
	return ticket, s.previewRequest(), true, nil
}

// ResolvePreview applies a preview verdict; false means it was stale.
func (s *Session) ResolvePreview(t preview.Ticket, r preview.Result) bool {
	return s.machine.ResolvePreview(t, r)
}

// FailPreview records a transport failure; false means it was stale.
func (s *Session) FailPreview(t preview.Ticket, err error) bool {
	return s.machine.FailPreview(t, err)
}

// BeginCommit moves a valid preview to Committing and builds the
// submission from the server-confirmed summary.
func (s *Session) BeginCommit() (preview.Ticket, Submission, bool, error) {
	if err := s.validationError(); err != nil {
		return preview.Ticket{}, Submission{}, false, err
	}
	ticket, summary, ok := s.machine.BeginCommit()
	if !ok {
		return preview.Ticket{}, Submission{}, false, nil
	}
	return ticket, s.submission(summary), true, nil
}

// ResolveCommit records the booking id returned by the backend. Create
// sessions adopt it so later views point at the booking.
func (s *Session) ResolveCommit(t preview.Ticket, bookingID string) bool {
	if !s.machine.ResolveCommit(t, bookingID) {
		return false
	}
	s.opts.BookingID = bookingID
	return true
}

// FailCommit returns to the confirmed preview.
func (s *Session) FailCommit(t preview.Ticket, err error) bool {
	return s.machine.FailCommit(t, err)
}

// Status is the preview machine status.
func (s *Session) Status() preview.Status { return s.machine.Status() }

func (s *Session) previewRequest() PreviewRequest {
	req := PreviewRequest{
		BookingID:     s.opts.BookingID,
		VehicleID:     *s.vehicleID,
		StartAt:       *s.start,
		EndAt:         *s.end,
		PackageID:     s.packageID,
		Offerings:     []PreviewLine{},
		DiscountCodes: []string{},
	}
	for _, line := range s.offerings.Sorted() {
		req.Offerings = append(req.Offerings, PreviewLine{OfferingID: line.Offering.ID, Quantity: line.Quantity})
	}
	if s.discount != nil {
		req.DiscountCodes = append(req.DiscountCodes, s.discount.Code)
	}
	return req
}

func (s *Session) submission(summary preview.Summary) Submission {
	b := s.Estimate()
	sub := Submission{
		SessionID:      s.opts.ID,
		Mode:           s.opts.Mode,
		BookingID:      s.opts.BookingID,
		SubmittedBy:    s.opts.Actor,
		VehicleID:      *s.vehicleID,
		PackageID:      s.packageID,
		StartAt:        *s.start,
		EndAt:          *s.end,
		DurationDays:   b.DurationDays,
		Offerings:      make([]SubmissionLine, 0, len(b.Lines)),
		Customer:       s.customer,
		Logistics:      s.logistics,
		Breakdown:      b,
		PricingSummary: summary,
	}
	if v, ok := s.catalog.Vehicle(*s.vehicleID); ok {
		sub.VehicleName = v.Name
	}
	if s.discount != nil {
		id := s.discount.ID
		sub.DiscountID = &id
		sub.DiscountCode = s.discount.Code
	}
	for _, l := range b.Lines {
		sub.Offerings = append(sub.Offerings, SubmissionLine{
			OfferingID: l.OfferingID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			Included:   l.Included,
			UnitPrice:  l.UnitPrice,
			Total:      l.Amount,
		})
	}
	return sub
}
