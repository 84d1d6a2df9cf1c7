package preview

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fleet_console_backend/platform/money"
)

// Summary is the canonical server-confirmed pricing summary. Every known
// variant of the pricing backend's response maps onto it.
type Summary struct {
	VehicleRentals      []VehicleRental `json:"vehicleRentals"`
	Package             *PackageLine    `json:"packageSummary,omitempty"`
	Offerings           []OfferingLine  `json:"offerings"`
	Discounts           []DiscountLine  `json:"discounts"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	TotalDiscountAmount decimal.Decimal `json:"totalDiscountAmount"`
	TaxAmount           decimal.Decimal `json:"taxAmount"`
	ServiceFeeAmount    decimal.Decimal `json:"serviceFeeAmount"`
	GrandTotal          decimal.Decimal `json:"grandTotal"`
	DueAtBooking        decimal.Decimal `json:"dueAtBooking"`
	DueAtPickup         decimal.Decimal `json:"dueAtPickup"`
}

type VehicleRental struct {
	VehicleID string          `json:"vehicleId"`
	Name      string          `json:"name,omitempty"`
	Days      int             `json:"days"`
	DailyRate decimal.Decimal `json:"dailyRate"`
	Amount    decimal.Decimal `json:"amount"`
}

type PackageLine struct {
	PackageID string          `json:"packageId"`
	Name      string          `json:"name,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

type OfferingLine struct {
	OfferingID string          `json:"offeringId"`
	Name       string          `json:"name,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Amount     decimal.Decimal `json:"amount"`
	Included   bool            `json:"included"`
}

type DiscountLine struct {
	DiscountID string          `json:"discountId,omitempty"`
	Code       string          `json:"code"`
	Amount     decimal.Decimal `json:"amount"`
}

// Issue is one validation error or warning reported by the backend.
type Issue struct {
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ErrMalformedResponse wraps every decoding failure of a preview body.
var ErrMalformedResponse = errors.New("malformed preview response")

// Field aliases observed across pricing backend versions.
var (
	aliasEnvelope   = []string{"data", "result"}
	aliasValidation = []string{"validation", "validationResult"}
	aliasIsValid    = []string{"isValid", "valid"}
	aliasSummary    = []string{"pricingSummary", "summary", "pricing"}
	aliasRentals    = []string{"vehicleRentals", "vehicles", "rentals"}
	aliasPackage    = []string{"packageSummary", "package"}
	aliasOfferings  = []string{"offerings", "addOns", "extras"}
	aliasID         = []string{"id"}
	aliasName       = []string{"name", "displayName", "title"}
	aliasDays       = []string{"days", "numberOfDays", "rentalDays"}
	aliasRate       = []string{"dailyRate", "rate", "pricePerDay"}
	aliasAmount     = []string{"amount", "subtotal", "total", "lineTotal"}
	aliasQuantity   = []string{"quantity", "qty"}
	aliasUnitPrice  = []string{"unitPrice", "price"}
	aliasIncluded   = []string{"included", "isIncluded"}
	aliasMessage    = []string{"message", "msg", "description"}
	aliasSubtotal   = []string{"subtotal", "subTotal"}
	aliasDiscount   = []string{"totalDiscountAmount", "discountTotal", "totalDiscount"}
	aliasTax        = []string{"taxAmount", "tax", "vatAmount"}
	aliasFee        = []string{"serviceFeeAmount", "serviceFee"}
	aliasGrand      = []string{"grandTotal", "total", "totalAmount"}
	aliasDueNow     = []string{"dueAtBooking", "dueNow"}
	aliasDueLater   = []string{"dueAtPickup", "dueLater"}
)

type object map[string]json.RawMessage

func (o object) pick(keys ...string) json.RawMessage {
	for _, k := range keys {
		if raw, ok := o[k]; ok && !isNull(raw) {
			return raw
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Normalize decodes a preview response body into a Result. A body with no
// validation block is valid when it carries a summary.
func Normalize(body []byte) (Result, error) {
	root, err := decodeObject(body)
	if err != nil {
		return Result{}, err
	}
	if inner := root.pick(aliasEnvelope...); inner != nil {
		if root, err = decodeObject(inner); err != nil {
			return Result{}, err
		}
	}

	var res Result
	summaryRaw := root.pick(aliasSummary...)
	if summaryRaw != nil {
		if res.Summary, err = normalizeSummary(summaryRaw); err != nil {
			return Result{}, err
		}
	}

	validation := object{}
	if raw := root.pick(aliasValidation...); raw != nil {
		if validation, err = decodeObject(raw); err != nil {
			return Result{}, err
		}
	}
	if res.Errors, err = decodeIssues(validation.pick("errors")); err != nil {
		return Result{}, err
	}
	if res.Warnings, err = decodeIssues(validation.pick("warnings")); err != nil {
		return Result{}, err
	}

	if raw := validation.pick(aliasIsValid...); raw != nil {
		if err := json.Unmarshal(raw, &res.Valid); err != nil {
			return Result{}, fmt.Errorf("%w: isValid: %v", ErrMalformedResponse, err)
		}
	} else {
		res.Valid = len(res.Errors) == 0 && summaryRaw != nil
	}

	if res.Valid && summaryRaw == nil {
		return Result{}, fmt.Errorf("%w: valid preview without pricing summary", ErrMalformedResponse)
	}
	if !res.Valid && len(res.Errors) == 0 {
		res.Errors = []Issue{{Message: "pricing preview rejected"}}
	}
	return res, nil
}

func normalizeSummary(raw json.RawMessage) (Summary, error) {
	o, err := decodeObject(raw)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		VehicleRentals: []VehicleRental{},
		Offerings:      []OfferingLine{},
		Discounts:      []DiscountLine{},
	}

	rentals, err := decodeList(o.pick(aliasRentals...))
	if err != nil {
		return Summary{}, err
	}
	for _, r := range rentals {
		var v VehicleRental
		v.VehicleID = str(r.pick(append([]string{"vehicleId"}, aliasID...)...))
		v.Name = str(r.pick(append([]string{"vehicleName"}, aliasName...)...))
		if v.Days, err = integer(r.pick(aliasDays...)); err != nil {
			return Summary{}, err
		}
		if v.DailyRate, err = amount(r.pick(aliasRate...)); err != nil {
			return Summary{}, err
		}
		if v.Amount, err = amount(r.pick(aliasAmount...)); err != nil {
			return Summary{}, err
		}
		s.VehicleRentals = append(s.VehicleRentals, v)
	}

	if raw := o.pick(aliasPackage...); raw != nil {
		p, err := decodeObject(raw)
		if err != nil {
			return Summary{}, err
		}
		line := PackageLine{
			PackageID: str(p.pick(append([]string{"packageId"}, aliasID...)...)),
			Name:      str(p.pick(aliasName...)),
		}
		if line.Amount, err = amount(p.pick(aliasAmount...)); err != nil {
			return Summary{}, err
		}
		s.Package = &line
	}

	offeringsRaw, err := decodeList(o.pick(aliasOfferings...))
	if err != nil {
		return Summary{}, err
	}
	for _, r := range offeringsRaw {
		var l OfferingLine
		l.OfferingID = str(r.pick(append([]string{"offeringId"}, aliasID...)...))
		l.Name = str(r.pick(aliasName...))
		if l.Quantity, err = integer(r.pick(aliasQuantity...)); err != nil {
			return Summary{}, err
		}
		if l.UnitPrice, err = amount(r.pick(aliasUnitPrice...)); err != nil {
			return Summary{}, err
		}
		if l.Amount, err = amount(r.pick(aliasAmount...)); err != nil {
			return Summary{}, err
		}
		if l.Included, err = boolean(r.pick(aliasIncluded...)); err != nil {
			return Summary{}, err
		}
		s.Offerings = append(s.Offerings, l)
	}

	discounts, err := decodeList(o.pick("discounts"))
	if err != nil {
		return Summary{}, err
	}
	for _, r := range discounts {
		l := DiscountLine{
			DiscountID: str(r.pick(append([]string{"discountId"}, aliasID...)...)),
			Code:       str(r.pick("code", "discountCode")),
		}
		if l.Amount, err = amount(r.pick(aliasAmount...)); err != nil {
			return Summary{}, err
		}
		s.Discounts = append(s.Discounts, l)
	}

	fields := []struct {
		dst     *decimal.Decimal
		aliases []string
	}{
		{&s.Subtotal, aliasSubtotal},
		{&s.TotalDiscountAmount, aliasDiscount},
		{&s.TaxAmount, aliasTax},
		{&s.ServiceFeeAmount, aliasFee},
		{&s.GrandTotal, aliasGrand},
		{&s.DueAtBooking, aliasDueNow},
		{&s.DueAtPickup, aliasDueLater},
	}
	for _, f := range fields {
		if *f.dst, err = amount(o.pick(f.aliases...)); err != nil {
			return Summary{}, err
		}
	}

	if o.pick(aliasGrand...) == nil {
		s.GrandTotal = money.Round2(s.Subtotal.Sub(s.TotalDiscountAmount).Add(s.TaxAmount).Add(s.ServiceFeeAmount))
	}
	if o.pick(aliasDueNow...) == nil && o.pick(aliasDueLater...) == nil {
		s.DueAtBooking = s.GrandTotal
	}
	return s, nil
}

func decodeObject(raw []byte) (object, error) {
	var o object
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if o == nil {
		o = object{}
	}
	return o, nil
}

func decodeList(raw json.RawMessage) ([]object, error) {
	if raw == nil {
		return nil, nil
	}
	var items []object
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return items, nil
}

// decodeIssues accepts a list of plain strings or of {code, field, message}.
func decodeIssues(raw json.RawMessage) ([]Issue, error) {
	if raw == nil {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: issues: %v", ErrMalformedResponse, err)
	}

	issues := make([]Issue, 0, len(items))
	for _, item := range items {
		var text string
		if err := json.Unmarshal(item, &text); err == nil {
			issues = append(issues, Issue{Message: text})
			continue
		}
		o, err := decodeObject(item)
		if err != nil {
			return nil, err
		}
		issues = append(issues, Issue{
			Code:    str(o.pick("code")),
			Field:   str(o.pick("field", "path")),
			Message: str(o.pick(aliasMessage...)),
		})
	}
	return issues, nil
}

func str(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(bytes.TrimSpace(raw)), `"`)
}

// amount accepts a JSON number or a numeric string. Absent means zero.
func amount(raw json.RawMessage) (decimal.Decimal, error) {
	if raw == nil {
		return money.Zero, nil
	}
	text := strings.TrimSpace(str(raw))
	if text == "" {
		return money.Zero, nil
	}
	v, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: amount %q", ErrMalformedResponse, text)
	}
	return v, nil
}

// boolean accepts a JSON bool or a "true"/"false" string. Absent means false.
func boolean(raw json.RawMessage) (bool, error) {
	if raw == nil {
		return false, nil
	}
	text := strings.TrimSpace(str(raw))
	if text == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(text)
	if err != nil {
		return false, fmt.Errorf("%w: flag %q", ErrMalformedResponse, text)
	}
	return v, nil
}

func integer(raw json.RawMessage) (int, error) {
	v, err := amount(raw)
	if err != nil {
		return 0, err
	}
	if !v.IsInteger() {
		return 0, fmt.Errorf("%w: expected integer, got %s", ErrMalformedResponse, v)
	}
	return int(v.IntPart()), nil
}
