package offerings

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	insuranceID = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	gpsID       = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	seatID      = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	wifiID      = uuid.MustParse("00000000-0000-0000-0000-00000000000d")
)

func testCatalog() []Offering {
	return []Offering{
		{ID: insuranceID, Name: "Insurance", UnitPrice: decimal.NewFromInt(20), Mandatory: true},
		{ID: gpsID, Name: "GPS", UnitPrice: decimal.NewFromInt(5)},
		{ID: seatID, Name: "child seat", UnitPrice: decimal.NewFromInt(8)},
		{ID: wifiID, Name: "Wifi", UnitPrice: decimal.NewFromInt(3)},
	}
}

func TestReconcileMandatoryInsertsSingleUnit(t *testing.T) {
	r := NewReconciler(testCatalog())
	if !r.ReconcileMandatory([]uuid.UUID{insuranceID, uuid.New()}) {
		t.Fatalf("expected change")
	}

	sel, ok := r.Get(insuranceID)
	if !ok || sel.Quantity != 1 || sel.Included {
		t.Fatalf("unexpected mandatory selection %+v", sel)
	}
	if len(r.Selections()) != 1 {
		t.Fatalf("unknown mandatory ids must be ignored")
	}
	if r.ReconcileMandatory([]uuid.UUID{insuranceID}) {
		t.Fatalf("second reconcile must be a no-op")
	}
}

func TestReconcileMandatoryKeepsSelectionThatLeftTheSet(t *testing.T) {
	r := NewReconciler(testCatalog())
	r.ReconcileMandatory([]uuid.UUID{insuranceID, gpsID})
	r.ReconcileMandatory([]uuid.UUID{insuranceID})

	if _, ok := r.Get(gpsID); !ok {
		t.Fatalf("selection must survive leaving the mandatory set")
	}
	if !r.Toggle(gpsID, false) {
		t.Fatalf("no longer mandatory, so removal must be allowed")
	}
}

func TestToggleCannotRemoveMandatory(t *testing.T) {
	r := NewReconciler(testCatalog())
	r.ReconcileMandatory([]uuid.UUID{insuranceID})

	if r.Toggle(insuranceID, false) {
		t.Fatalf("mandatory toggle off must be rejected")
	}
	if _, ok := r.Get(insuranceID); !ok {
		t.Fatalf("mandatory selection removed")
	}
}

func TestMandatorySurvivesArbitraryToggleSequences(t *testing.T) {
	ids := []uuid.UUID{insuranceID, gpsID, seatID, wifiID}
	rng := rand.New(rand.NewSource(42))

	r := NewReconciler(testCatalog())
	r.ReconcileMandatory([]uuid.UUID{insuranceID})
	for i := 0; i < 500; i++ {
		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(3) {
		case 0:
			r.Toggle(id, rng.Intn(2) == 0)
		case 1:
			r.SetQuantity(id, rng.Intn(4))
		case 2:
			if rng.Intn(2) == 0 {
				r.ReconcilePackageInclusion([]uuid.UUID{seatID})
			} else {
				r.ReconcilePackageInclusion(nil)
			}
		}

		sel, ok := r.Get(insuranceID)
		if !ok || sel.Quantity < 1 {
			t.Fatalf("step %d: mandatory invariant broken: %+v ok=%v", i, sel, ok)
		}
	}
}

func TestToggleSetsIncludedFromPackage(t *testing.T) {
	r := NewReconciler(testCatalog())
	r.ReconcilePackageInclusion([]uuid.UUID{gpsID})
	r.Toggle(gpsID, false)

	if sel, _ := r.Get(gpsID); !sel.Included {
		t.Fatalf("bundled offering must stay selected and included")
	}

	if !r.Toggle(wifiID, true) {
		t.Fatalf("expected insert")
	}
	if sel, _ := r.Get(wifiID); sel.Included || sel.Quantity != 1 {
		t.Fatalf("unexpected selection %+v", sel)
	}
}

func TestToggleIgnoresUnknownIDs(t *testing.T) {
	r := NewReconciler(testCatalog())
	if r.Toggle(uuid.New(), true) || r.Toggle(uuid.New(), false) {
		t.Fatalf("unknown ids must be ignored")
	}
}

func TestSetQuantity(t *testing.T) {
	r := NewReconciler(testCatalog())
	if r.SetQuantity(gpsID, 3) {
		t.Fatalf("setQuantity without a selection must be a no-op")
	}

	r.Toggle(gpsID, true)
	if !r.SetQuantity(gpsID, 0) {
		t.Fatalf("quantity zero must be accepted")
	}
	if sel, _ := r.Get(gpsID); sel.Quantity != 0 {
		t.Fatalf("expected quantity 0, got %d", sel.Quantity)
	}
	if r.SetQuantity(gpsID, -2) {
		t.Fatalf("negative quantity must be ignored")
	}

	r.ReconcileMandatory([]uuid.UUID{insuranceID})
	r.SetQuantity(insuranceID, 0)
	if sel, _ := r.Get(insuranceID); sel.Quantity != 1 {
		t.Fatalf("mandatory quantity must stay at least 1, got %d", sel.Quantity)
	}
}

func TestReconcilePackageInclusion(t *testing.T) {
	r := NewReconciler(testCatalog())
	r.Toggle(seatID, true)
	r.SetQuantity(seatID, 3)
	r.Toggle(wifiID, true)
	r.SetQuantity(wifiID, 0)

	r.ReconcilePackageInclusion([]uuid.UUID{seatID, wifiID, gpsID})

	want := map[uuid.UUID]Selection{
		seatID: {OfferingID: seatID, Quantity: 3, Included: true},
		wifiID: {OfferingID: wifiID, Quantity: 1, Included: true},
		gpsID:  {OfferingID: gpsID, Quantity: 1, Included: true},
	}
	if got := r.Selections(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected selections:\n got %+v\nwant %+v", got, want)
	}

	r.ReconcilePackageInclusion([]uuid.UUID{gpsID})
	if sel, _ := r.Get(seatID); sel.Included || sel.Quantity != 3 {
		t.Fatalf("seat must become billable again, got %+v", sel)
	}

	r.ReconcilePackageInclusion(nil)
	for id, sel := range r.Selections() {
		if sel.Included {
			t.Fatalf("%s still included after package cleared", id)
		}
	}
}

func TestReconcilePackageInclusionIsIdempotent(t *testing.T) {
	r := NewReconciler(testCatalog())
	r.ReconcileMandatory([]uuid.UUID{insuranceID})
	r.Toggle(gpsID, true)

	set := []uuid.UUID{gpsID, seatID, insuranceID}
	r.ReconcilePackageInclusion(set)
	before := r.Selections()

	if r.ReconcilePackageInclusion(set) {
		t.Fatalf("second call must report no change")
	}
	if !reflect.DeepEqual(before, r.Selections()) {
		t.Fatalf("second call changed the mapping")
	}
}

func TestSortedPutsIncludedFirstThenName(t *testing.T) {
	r := NewReconciler(testCatalog())
	r.Toggle(wifiID, true)
	r.Toggle(gpsID, true)
	r.ReconcileMandatory([]uuid.UUID{insuranceID})
	r.ReconcilePackageInclusion([]uuid.UUID{seatID})

	var names []string
	for _, l := range r.Sorted() {
		names = append(names, l.Offering.Name)
	}
	want := []string{"child seat", "GPS", "Insurance", "Wifi"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("got %v, want %v", names, want)
	}
}
