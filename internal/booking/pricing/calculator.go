// Package pricing computes the instant local estimate of a booking's price.
// Calculate is pure; every intermediate amount passes through money.Round2.
package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fleet_console_backend/internal/booking/offerings"
	"fleet_console_backend/platform/money"
)

// Adjustment types shared by packages and discounts.
const (
	TypePercentage = "PERCENTAGE"
	TypeFixed      = "FIXED"
)

// Package carries the pricing terms of the selected rental package.
// DailyRate is set when a per-vehicle rate record exists and then replaces
// the modifier entirely.
type Package struct {
	ID                      uuid.UUID
	Name                    string
	ModifierType            string
	ModifierValue           decimal.Decimal
	AllowDiscountOnModifier *bool
	IncludedOfferingIDs     []uuid.UUID
	DailyRate               *decimal.Decimal
}

// AllowsDiscount is false only when the package explicitly forbids it.
func (p *Package) AllowsDiscount() bool {
	return p == nil || p.AllowDiscountOnModifier == nil || *p.AllowDiscountOnModifier
}

// Discount is a redeemable discount applied to the subtotal.
type Discount struct {
	ID    uuid.UUID       `json:"id"`
	Code  string          `json:"code"`
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// Input is everything the estimate depends on.
type Input struct {
	DurationDays     int
	VehicleDailyRate decimal.Decimal
	Package          *Package
	Offerings        []offerings.Line
	Discount         *Discount
}

// Line is the billed view of one offering selection.
type Line struct {
	OfferingID       uuid.UUID       `json:"offeringId"`
	Name             string          `json:"name"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	Quantity         int             `json:"quantity"`
	BillableQuantity int             `json:"billableQuantity"`
	Included         bool            `json:"included"`
	Amount           decimal.Decimal `json:"amount"`
}

// Breakdown is the derived price estimate.
type Breakdown struct {
	DurationDays   int             `json:"durationDays"`
	VehicleCharge  decimal.Decimal `json:"vehicleCharge"`
	PackageCharge  decimal.Decimal `json:"packageCharge"`
	OfferingCharge decimal.Decimal `json:"offeringCharge"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Total          decimal.Decimal `json:"total"`
	Lines          []Line          `json:"lines"`
	IncludedNames  []string        `json:"includedNames"`
}

// Calculate derives the breakdown. A non-positive duration yields an all
// zero breakdown; the offering lines are still listed.
func Calculate(in Input) Breakdown {
	days := decimal.NewFromInt(int64(in.DurationDays))
	active := in.DurationDays > 0

	b := Breakdown{
		DurationDays:   max(in.DurationDays, 0),
		VehicleCharge:  money.Zero,
		PackageCharge:  money.Zero,
		OfferingCharge: money.Zero,
		DiscountAmount: money.Zero,
		Subtotal:       money.Zero,
		Total:          money.Zero,
		Lines:          make([]Line, 0, len(in.Offerings)),
		IncludedNames:  make([]string, 0),
	}

	if active {
		b.VehicleCharge = money.Round2(in.VehicleDailyRate.Mul(days))
		b.PackageCharge = packageCharge(b.VehicleCharge, days, in.Package)
	}

	for _, sel := range in.Offerings {
		line := billLine(sel)
		if !active {
			line.BillableQuantity = 0
			line.Amount = money.Zero
		}
		if sel.Included {
			b.IncludedNames = append(b.IncludedNames, sel.Offering.Name)
		}
		b.OfferingCharge = money.Round2(b.OfferingCharge.Add(line.Amount))
		b.Lines = append(b.Lines, line)
	}

	b.Subtotal = money.Round2(b.PackageCharge.Add(b.OfferingCharge))

	if in.Discount != nil && in.Package.AllowsDiscount() {
		b.DiscountAmount = discountAmount(b.Subtotal, *in.Discount)
	}

	b.Total = money.Round2(b.Subtotal.Sub(b.DiscountAmount))
	return b
}

func packageCharge(vehicleCharge, days decimal.Decimal, pkg *Package) decimal.Decimal {
	if pkg == nil {
		return vehicleCharge
	}
	if pkg.DailyRate != nil {
		return money.Round2(pkg.DailyRate.Mul(days))
	}

	var charge decimal.Decimal
	switch pkg.ModifierType {
	case TypeFixed:
		charge = vehicleCharge.Add(pkg.ModifierValue)
	case TypePercentage:
		charge = vehicleCharge.Mul(Factor(pkg))
	default:
		charge = vehicleCharge
	}
	return money.Max(money.Zero, money.Round2(charge))
}

// Factor is the multiplicative modifier of a percentage package, 1 otherwise.
func Factor(pkg *Package) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if pkg == nil || pkg.ModifierType != TypePercentage {
		return one
	}
	return one.Add(money.Percent(one, pkg.ModifierValue))
}

func billLine(sel offerings.Line) Line {
	free := 0
	if sel.Included {
		free = 1
	}
	billable := max(0, sel.Quantity-free)
	if limit := sel.Offering.MaxQuantity; limit != nil && billable > *limit {
		billable = max(0, *limit)
	}

	return Line{
		OfferingID:       sel.Offering.ID,
		Name:             sel.Offering.Name,
		UnitPrice:        sel.Offering.UnitPrice,
		Quantity:         sel.Quantity,
		BillableQuantity: billable,
		Included:         sel.Included,
		Amount:           money.Round2(sel.Offering.UnitPrice.Mul(decimal.NewFromInt(int64(billable)))),
	}
}

func discountAmount(subtotal decimal.Decimal, d Discount) decimal.Decimal {
	var raw decimal.Decimal
	switch d.Type {
	case TypePercentage:
		raw = money.Percent(subtotal, d.Value)
	case TypeFixed:
		raw = d.Value
	default:
		return money.Zero
	}
	return money.Max(money.Zero, money.Round2(money.Min(raw, subtotal)))
}

// DurationDays is the billable rental length: started days round up and
// an end at or before the start is zero days.
func DurationDays(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	const day = 24 * time.Hour
	d := end.Sub(start)
	days := int(d / day)
	if d%day != 0 {
		days++
	}
	return days
}
