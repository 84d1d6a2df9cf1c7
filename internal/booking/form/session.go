// Package form holds the booking form session: the user's selections and
// the four engines that derive prices and gate navigation from them.
//
// A Session is not safe for concurrent use; callers serialize access.
package form

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"fleet_console_backend/internal/booking/offerings"
	"fleet_console_backend/internal/booking/preview"
	"fleet_console_backend/internal/booking/pricing"
	"fleet_console_backend/internal/booking/wizard"
	"fleet_console_backend/platform/apperr"
	"fleet_console_backend/platform/phone"
)

// Mode selects the mutation a committed session performs.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

// Customer is the contact information step.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Logistics is the pickup and drop-off step.
type Logistics struct {
	Pickup  string `json:"pickup"`
	Dropoff string `json:"dropoff"`
	Notes   string `json:"notes,omitempty"`
}

// Options are the ambient values a session is created with.
type Options struct {
	ID        uuid.UUID
	Mode      Mode
	BookingID string
	Actor     uuid.UUID
	Region    string
	Flow      wizard.Flow
	Now       time.Time
}

// Session is one booking form being edited.
type Session struct {
	opts      Options
	catalog   *Catalog
	vehicleID *uuid.UUID
	start     *time.Time
	end       *time.Time
	packageID *uuid.UUID
	discount  *pricing.Discount
	customer  Customer
	logistics Logistics

	offerings *offerings.Reconciler
	machine   *preview.Machine
	gate      *wizard.Gate

	touchedAt time.Time
}

var (
	errLocked           = apperr.Conflict("booking is being committed or already committed")
	errDiscountBlocked  = apperr.Validation("discount cannot be combined with the selected package")
	errNegativeQuantity = apperr.Validation("quantity must be zero or more")
)

// New creates a session with the catalog's mandatory offerings selected.
func New(opts Options, catalog *Catalog) *Session {
	if opts.Mode == "" {
		opts.Mode = ModeCreate
	}
	s := &Session{
		opts:      opts,
		catalog:   catalog,
		offerings: offerings.NewReconciler(catalog.offerings),
		machine:   preview.NewMachine(),
		gate:      wizard.NewGate(opts.Flow),
		touchedAt: opts.Now,
	}
	s.offerings.ReconcileMandatory(catalog.mandatoryIDs)
	return s
}

func (s *Session) ID() uuid.UUID        { return s.opts.ID }
func (s *Session) Mode() Mode           { return s.opts.Mode }
func (s *Session) BookingID() string    { return s.opts.BookingID }
func (s *Session) Actor() uuid.UUID     { return s.opts.Actor }
func (s *Session) TouchedAt() time.Time { return s.touchedAt }

// Touch records activity for idle eviction.
func (s *Session) Touch(now time.Time) { s.touchedAt = now }

func (s *Session) guard() error {
	if s.machine.Locked() {
		return errLocked
	}
	return nil
}

func (s *Session) pricingChanged() {
	s.machine.InputsChanged()
}

// SetVehicle selects a vehicle, or clears it when id is nil.
func (s *Session) SetVehicle(id *uuid.UUID) error {
	if err := s.guard(); err != nil {
		return err
	}
	if id != nil {
		if _, ok := s.catalog.Vehicle(*id); !ok {
			return apperr.NotFound("vehicle not found")
		}
		v := *id
		id = &v
	}
	s.vehicleID = id
	s.pricingChanged()
	return nil
}

// SetDates sets the rental period. Either bound may be nil.
func (s *Session) SetDates(start, end *time.Time) error {
	if err := s.guard(); err != nil {
		return err
	}
	s.start = copyTime(start)
	s.end = copyTime(end)
	s.pricingChanged()
	return nil
}

// SetPackage selects a package, or clears it when id is nil, and
// recomputes package inclusion.
func (s *Session) SetPackage(id *uuid.UUID) error {
	if err := s.guard(); err != nil {
		return err
	}
	var included []uuid.UUID
	if id != nil {
		pkg, ok := s.catalog.Package(*id, nil)
		if !ok {
			return apperr.NotFound("package not found")
		}
		v := *id
		id = &v
		included = pkg.IncludedOfferingIDs
	}
	s.packageID = id
	s.offerings.ReconcilePackageInclusion(included)
	s.pricingChanged()
	return nil
}

// SetDiscount applies a discount, or clears it when d is nil. A package
// that forbids discounts rejects new ones; a discount chosen earlier is
// kept and priced at zero.
func (s *Session) SetDiscount(d *pricing.Discount) error {
	if err := s.guard(); err != nil {
		return err
	}
	if d != nil {
		if pkg := s.activePackage(); !pkg.AllowsDiscount() {
			return errDiscountBlocked
		}
		v := *d
		d = &v
	}
	s.discount = d
	s.pricingChanged()
	return nil
}

// ToggleOffering selects or deselects an add-on.
func (s *Session) ToggleOffering(id uuid.UUID, selected bool) error {
	if err := s.guard(); err != nil {
		return err
	}
	if s.offerings.Toggle(id, selected) {
		s.pricingChanged()
	}
	return nil
}

// SetOfferingQuantity changes the quantity of a selected add-on.
func (s *Session) SetOfferingQuantity(id uuid.UUID, quantity int) error {
	if err := s.guard(); err != nil {
		return err
	}
	if quantity < 0 {
		return errNegativeQuantity
	}
	if s.offerings.SetQuantity(id, quantity) {
		s.pricingChanged()
	}
	return nil
}

// SetCustomer replaces contact details. Valid phone numbers are stored in
// E.164 form. Contact details do not affect pricing.
func (s *Session) SetCustomer(c Customer) error {
	if err := s.guard(); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	c.Phone = phone.NormalizeE164(c.Phone, s.opts.Region)
	s.customer = c
	return nil
}

// SetLogistics replaces pickup and drop-off details.
func (s *Session) SetLogistics(l Logistics) error {
	if err := s.guard(); err != nil {
		return err
	}
	l.Pickup = strings.TrimSpace(l.Pickup)
	l.Dropoff = strings.TrimSpace(l.Dropoff)
	l.Notes = strings.TrimSpace(l.Notes)
	s.logistics = l
	return nil
}

// Next advances the wizard when the current step is complete.
func (s *Session) Next() bool { return s.gate.Next(s.Facts()) }

// Previous moves the wizard back one step.
func (s *Session) Previous() bool { return s.gate.Previous() }

// GoTo jumps to a step already reached.
func (s *Session) GoTo(step int) bool { return s.gate.GoTo(step) }

// OnTerminalStep reports whether the wizard is on the pricing step.
func (s *Session) OnTerminalStep() bool { return s.gate.IsTerminal() }

// DurationDays is the billable rental length of the current dates.
func (s *Session) DurationDays() int {
	if s.start == nil || s.end == nil {
		return 0
	}
	return pricing.DurationDays(*s.start, *s.end)
}

// Facts derives the wizard predicate inputs.
func (s *Session) Facts() wizard.Facts {
	return wizard.Facts{
		VehicleSelected: s.vehicleID != nil,
		StartSet:        s.start != nil,
		EndSet:          s.end != nil,
		DurationDays:    s.DurationDays(),
		HasEmail:        s.customer.Email != "",
		HasPhone:        s.customer.Phone != "" && phone.IsValid(s.customer.Phone, s.opts.Region),
		Pickup:          s.logistics.Pickup,
		Dropoff:         s.logistics.Dropoff,
	}
}

// Estimate is the instant local price.
func (s *Session) Estimate() pricing.Breakdown {
	return pricing.Calculate(s.pricingInput())
}

func (s *Session) pricingInput() pricing.Input {
	in := pricing.Input{
		DurationDays: s.DurationDays(),
		Package:      s.activePackage(),
		Offerings:    s.offerings.Sorted(),
		Discount:     s.discount,
	}
	if s.vehicleID != nil {
		if v, ok := s.catalog.Vehicle(*s.vehicleID); ok && v.DailyRate != nil {
			in.VehicleDailyRate = *v.DailyRate
		}
	}
	return in
}

func (s *Session) activePackage() *pricing.Package {
	if s.packageID == nil {
		return nil
	}
	pkg, ok := s.catalog.Package(*s.packageID, s.vehicleID)
	if !ok {
		return nil
	}
	return &pkg
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
