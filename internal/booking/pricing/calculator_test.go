package pricing

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fleet_console_backend/internal/booking/offerings"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func boolPtr(v bool) *bool { return &v }

func assertAmount(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s: got %s, want %s", field, got.String(), want)
	}
}

func TestCalculateBaseline(t *testing.T) {
	b := Calculate(Input{DurationDays: 3, VehicleDailyRate: d("100")})

	assertAmount(t, "vehicleCharge", b.VehicleCharge, "300")
	assertAmount(t, "packageCharge", b.PackageCharge, "300")
	assertAmount(t, "offeringCharge", b.OfferingCharge, "0")
	assertAmount(t, "discountAmount", b.DiscountAmount, "0")
	assertAmount(t, "subtotal", b.Subtotal, "300")
	assertAmount(t, "total", b.Total, "300")
}

func TestCalculateIncludedOfferingBillsBeyondOneUnit(t *testing.T) {
	b := Calculate(Input{
		DurationDays: 1,
		Offerings: []offerings.Line{{
			Offering: offerings.Offering{ID: uuid.New(), Name: "Extra driver", UnitPrice: d("50")},
			Quantity: 3,
			Included: true,
		}},
	})

	assertAmount(t, "offeringCharge", b.OfferingCharge, "100")
	if b.Lines[0].BillableQuantity != 2 {
		t.Fatalf("expected billable quantity 2, got %d", b.Lines[0].BillableQuantity)
	}
	if len(b.IncludedNames) != 1 || b.IncludedNames[0] != "Extra driver" {
		t.Fatalf("unexpected included names %v", b.IncludedNames)
	}
}

func TestCalculateIncludedSingleUnitIsDisclosedButFree(t *testing.T) {
	b := Calculate(Input{
		DurationDays: 2,
		Offerings: []offerings.Line{{
			Offering: offerings.Offering{ID: uuid.New(), Name: "Roadside", UnitPrice: d("15")},
			Quantity: 1,
			Included: true,
		}},
	})
	assertAmount(t, "offeringCharge", b.OfferingCharge, "0")
	if len(b.IncludedNames) != 1 {
		t.Fatalf("included offering must be disclosed")
	}
}

func TestCalculateDiscounts(t *testing.T) {
	tests := []struct {
		name         string
		in           Input
		wantDiscount string
		wantTotal    string
	}{
		{
			name:         "percentage of subtotal",
			in:           Input{DurationDays: 3, VehicleDailyRate: d("100"), Discount: &Discount{Type: TypePercentage, Value: d("10")}},
			wantDiscount: "30",
			wantTotal:    "270",
		},
		{
			name:         "fixed capped at subtotal",
			in:           Input{DurationDays: 1, VehicleDailyRate: d("50"), Discount: &Discount{Type: TypeFixed, Value: d("80")}},
			wantDiscount: "50",
			wantTotal:    "0",
		},
		{
			name: "package forbids discount",
			in: Input{
				DurationDays:     3,
				VehicleDailyRate: d("100"),
				Package:          &Package{ModifierType: TypePercentage, ModifierValue: d("0"), AllowDiscountOnModifier: boolPtr(false)},
				Discount:         &Discount{Type: TypePercentage, Value: d("50")},
			},
			wantDiscount: "0",
			wantTotal:    "300",
		},
		{
			name: "package without explicit flag allows discount",
			in: Input{
				DurationDays:     3,
				VehicleDailyRate: d("100"),
				Package:          &Package{ModifierType: TypePercentage, ModifierValue: d("0")},
				Discount:         &Discount{Type: TypeFixed, Value: d("25")},
			},
			wantDiscount: "25",
			wantTotal:    "275",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Calculate(tt.in)
			assertAmount(t, "discountAmount", b.DiscountAmount, tt.wantDiscount)
			assertAmount(t, "total", b.Total, tt.wantTotal)
		})
	}
}

func TestCalculatePackagePaths(t *testing.T) {
	rate := d("80")
	tests := []struct {
		name string
		pkg  *Package
		want string
	}{
		{"percentage surcharge", &Package{ModifierType: TypePercentage, ModifierValue: d("15")}, "345"},
		{"percentage reduction", &Package{ModifierType: TypePercentage, ModifierValue: d("-10")}, "270"},
		{"fixed amount", &Package{ModifierType: TypeFixed, ModifierValue: d("45.5")}, "345.5"},
		{"fixed reduction floors at zero", &Package{ModifierType: TypeFixed, ModifierValue: d("-500")}, "0"},
		{"rate record overrides modifier", &Package{ModifierType: TypePercentage, ModifierValue: d("50"), DailyRate: &rate}, "240"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Calculate(Input{DurationDays: 3, VehicleDailyRate: d("100"), Package: tt.pkg})
			assertAmount(t, "vehicleCharge", b.VehicleCharge, "300")
			assertAmount(t, "packageCharge", b.PackageCharge, tt.want)
		})
	}
}

func TestCalculateRoundsAtEachStep(t *testing.T) {
	b := Calculate(Input{
		DurationDays:     1,
		VehicleDailyRate: d("10.005"),
		Offerings: []offerings.Line{
			{Offering: offerings.Offering{ID: uuid.New(), Name: "a", UnitPrice: d("0.005")}, Quantity: 1},
			{Offering: offerings.Offering{ID: uuid.New(), Name: "b", UnitPrice: d("0.005")}, Quantity: 1},
		},
		Discount: &Discount{Type: TypePercentage, Value: d("12.5")},
	})

	assertAmount(t, "vehicleCharge", b.VehicleCharge, "10.01")
	assertAmount(t, "offeringCharge", b.OfferingCharge, "0.02")
	assertAmount(t, "subtotal", b.Subtotal, "10.03")
	// 10.03 * 0.125 = 1.25375
	assertAmount(t, "discountAmount", b.DiscountAmount, "1.25")
	assertAmount(t, "total", b.Total, "8.78")
}

func TestCalculateClampsBillableToMaxQuantity(t *testing.T) {
	limit := 2
	b := Calculate(Input{
		DurationDays: 1,
		Offerings: []offerings.Line{{
			Offering: offerings.Offering{ID: uuid.New(), Name: "Snow chains", UnitPrice: d("7"), MaxQuantity: &limit},
			Quantity: 5,
		}},
	})
	assertAmount(t, "offeringCharge", b.OfferingCharge, "14")
	if b.Lines[0].Quantity != 5 {
		t.Fatalf("selection quantity must not be clamped")
	}
}

func TestCalculateNonPositiveDurationIsAllZero(t *testing.T) {
	for _, days := range []int{0, -2} {
		b := Calculate(Input{
			DurationDays:     days,
			VehicleDailyRate: d("100"),
			Offerings: []offerings.Line{
				{Offering: offerings.Offering{ID: uuid.New(), Name: "GPS", UnitPrice: d("5")}, Quantity: 2},
			},
			Discount: &Discount{Type: TypeFixed, Value: d("10")},
		})
		assertAmount(t, "subtotal", b.Subtotal, "0")
		assertAmount(t, "total", b.Total, "0")
		assertAmount(t, "offeringCharge", b.OfferingCharge, "0")
		if len(b.Lines) != 1 || b.Lines[0].Quantity != 2 || b.Lines[0].BillableQuantity != 0 {
			t.Fatalf("days=%d: line must keep its quantity with nothing billable, got %+v", days, b.Lines)
		}
	}
}

func TestDiscountSerializesCamelCase(t *testing.T) {
	raw, err := json.Marshal(Discount{ID: uuid.Nil, Code: "SUMMER", Type: TypePercentage, Value: d("10")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"id":"00000000-0000-0000-0000-000000000000","code":"SUMMER","type":"PERCENTAGE","value":"10"}`
	if string(raw) != want {
		t.Fatalf("got %s, want %s", raw, want)
	}
}

func TestCalculateTotalNeverExceedsSubtotalOrGoesNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		in := Input{
			DurationDays:     rng.Intn(30),
			VehicleDailyRate: decimal.NewFromInt(int64(rng.Intn(50000))).Shift(-2),
		}
		for j := 0; j < rng.Intn(4); j++ {
			in.Offerings = append(in.Offerings, offerings.Line{
				Offering: offerings.Offering{ID: uuid.New(), Name: "o", UnitPrice: decimal.NewFromInt(int64(rng.Intn(10000))).Shift(-2)},
				Quantity: rng.Intn(5),
				Included: rng.Intn(2) == 0,
			})
		}
		if rng.Intn(2) == 0 {
			typ := TypeFixed
			if rng.Intn(2) == 0 {
				typ = TypePercentage
			}
			in.Discount = &Discount{Type: typ, Value: decimal.NewFromInt(int64(rng.Intn(20000))).Shift(-2)}
		}

		b := Calculate(in)
		if b.Subtotal.IsNegative() || b.Total.IsNegative() || b.Total.GreaterThan(b.Subtotal) {
			t.Fatalf("case %d violated bounds: %+v", i, b)
		}
	}
}

func TestDurationDays(t *testing.T) {
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		end  time.Time
		want int
	}{
		{start, 0},
		{start.Add(-time.Hour), 0},
		{start.Add(time.Minute), 1},
		{start.Add(24 * time.Hour), 1},
		{start.Add(49 * time.Hour), 3},
		{start.Add(72 * time.Hour), 3},
	}
	for _, tt := range tests {
		if got := DurationDays(start, tt.end); got != tt.want {
			t.Errorf("DurationDays(+%v) = %d, want %d", tt.end.Sub(start), got, tt.want)
		}
	}
}
