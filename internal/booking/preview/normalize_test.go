package preview

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeCanonicalShape(t *testing.T) {
	body := []byte(`{
		"validation": {"isValid": true, "errors": [], "warnings": ["late return fee may apply"]},
		"pricingSummary": {
			"vehicleRentals": [{"vehicleId": "v1", "days": 3, "dailyRate": 100, "amount": 300}],
			"packageSummary": {"packageId": "p1", "name": "Comfort", "amount": 45},
			"offerings": [{"offeringId": "o1", "name": "GPS", "quantity": 2, "unitPrice": "5.00", "amount": "10.00", "included": false}],
			"discounts": [{"code": "SPRING", "amount": 35.5}],
			"subtotal": 355, "totalDiscountAmount": 35.5, "taxAmount": 67.1, "serviceFeeAmount": 2.5,
			"grandTotal": 389.1, "dueAtBooking": 100, "dueAtPickup": 289.1
		}
	}`)

	res, err := Normalize(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Valid || len(res.Warnings) != 1 || res.Warnings[0].Message != "late return fee may apply" {
		t.Fatalf("unexpected validation %+v", res)
	}
	s := res.Summary
	if len(s.VehicleRentals) != 1 || s.VehicleRentals[0].Days != 3 || !s.VehicleRentals[0].Amount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected rentals %+v", s.VehicleRentals)
	}
	if s.Package == nil || s.Package.Name != "Comfort" {
		t.Fatalf("unexpected package %+v", s.Package)
	}
	if !s.GrandTotal.Equal(decimal.RequireFromString("389.1")) || !s.DueAtPickup.Equal(decimal.RequireFromString("289.1")) {
		t.Fatalf("unexpected totals %+v", s)
	}
}

func TestNormalizeAliases(t *testing.T) {
	body := []byte(`{
		"data": {
			"validation": {"valid": true},
			"summary": {
				"vehicles": [{"id": "v1", "numberOfDays": "2", "rate": "80", "subtotal": "160"}],
				"package": {"id": "p1", "total": 0},
				"addOns": [{"id": "o1", "qty": 1, "price": 12, "lineTotal": 0, "isIncluded": true}],
				"subTotal": 160, "discountTotal": 0, "tax": 33.6, "serviceFee": null
			}
		}
	}`)

	res, err := Normalize(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := res.Summary
	if s.VehicleRentals[0].Days != 2 || !s.VehicleRentals[0].Amount.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("aliases not mapped: %+v", s.VehicleRentals[0])
	}
	if !s.Offerings[0].Included || s.Offerings[0].Quantity != 1 {
		t.Fatalf("offering aliases not mapped: %+v", s.Offerings[0])
	}
	if !s.GrandTotal.Equal(decimal.RequireFromString("193.6")) {
		t.Fatalf("grand total must be derived when absent, got %s", s.GrandTotal)
	}
	if !s.DueAtBooking.Equal(s.GrandTotal) || !s.DueAtPickup.IsZero() {
		t.Fatalf("due split must default to everything at booking, got %s / %s", s.DueAtBooking, s.DueAtPickup)
	}
}

func TestNormalizeInvalidWithIssueObjects(t *testing.T) {
	body := []byte(`{
		"validation": {"isValid": false, "errors": [
			{"code": "DISCOUNT_NOT_COMBINABLE", "field": "discountCodes", "message": "Discount cannot be combined with this package"},
			"Vehicle is not available for the selected dates"
		]}
	}`)

	res, err := Normalize(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid || len(res.Errors) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Errors[0].Code != "DISCOUNT_NOT_COMBINABLE" || res.Errors[1].Message != "Vehicle is not available for the selected dates" {
		t.Fatalf("issues not kept verbatim: %+v", res.Errors)
	}
}

func TestNormalizeInfersValidity(t *testing.T) {
	res, err := Normalize([]byte(`{"pricingSummary": {"subtotal": 10, "grandTotal": 10}}`))
	if err != nil || !res.Valid {
		t.Fatalf("summary without validation block must be valid, got %+v err=%v", res, err)
	}

	res, err = Normalize([]byte(`{"validation": {"isValid": false}}`))
	if err != nil || res.Valid || len(res.Errors) != 1 {
		t.Fatalf("invalid verdict must carry at least one error, got %+v err=%v", res, err)
	}
}

func TestNormalizeRejectsMalformedBodies(t *testing.T) {
	bodies := []string{
		`not json`,
		`{"validation": {"isValid": true}}`,
		`{"pricingSummary": {"grandTotal": "abc"}}`,
		`{"pricingSummary": {"vehicleRentals": [{"days": 1.5}]}}`,
		`{"pricingSummary": {"offerings": [{"id": "o1", "included": "maybe"}]}}`,
	}
	for _, body := range bodies {
		if _, err := Normalize([]byte(body)); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("%s: expected ErrMalformedResponse, got %v", body, err)
		}
	}
}

func TestNormalizeIncludedFlagAsString(t *testing.T) {
	body := []byte(`{"pricingSummary": {
		"offerings": [
			{"id": "o1", "quantity": 1, "amount": 0, "isIncluded": "true"},
			{"id": "o2", "quantity": 1, "amount": 4, "included": "false"}
		],
		"subtotal": 4, "grandTotal": 4
	}}`)

	res, err := Normalize(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Summary.Offerings[0].Included || res.Summary.Offerings[1].Included {
		t.Fatalf("string flags not decoded: %+v", res.Summary.Offerings)
	}
}
