package pricingapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fleet_console_backend/internal/booking/form"
	"fleet_console_backend/platform/apperr"
	"fleet_console_backend/platform/logger"
)

type testConfig struct {
	url     string
	timeout time.Duration
}

func (c testConfig) GetPricingAPIURL() string            { return c.url }
func (c testConfig) GetPricingAPIKey() string            { return "secret" }
func (c testConfig) GetPricingAPITimeout() time.Duration { return c.timeout }

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(testConfig{url: srv.URL + "/", timeout: time.Second}, logger.Discard())
}

func samplePreviewRequest() form.PreviewRequest {
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	return form.PreviewRequest{
		VehicleID:     uuid.MustParse("10000000-0000-0000-0000-000000000001"),
		StartAt:       start,
		EndAt:         start.Add(48 * time.Hour),
		Offerings:     []form.PreviewLine{{OfferingID: uuid.MustParse("20000000-0000-0000-0000-000000000001"), Quantity: 2}},
		DiscountCodes: []string{"SPRING"},
	}
}

func TestPreviewSendsSnapshotAndNormalizes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bookings/preview" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		var body previewBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(body.Vehicles) != 1 || len(body.Offerings) != 1 || body.Offerings[0].Quantity != 2 || body.Discounts[0] != "SPRING" {
			t.Errorf("unexpected body %+v", body)
		}
		w.Write([]byte(`{"data":{"validation":{"isValid":true},"pricingSummary":{"subtotal":"240","grandTotal":250.5}}}`))
	})

	res, err := client.Preview(context.Background(), samplePreviewRequest())
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !res.Valid || !res.Summary.GrandTotal.Equal(decimal.RequireFromString("250.5")) {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestPreviewValidationRejectionIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"validation":{"isValid":false,"errors":[{"field":"vehicleId","message":"vehicle unavailable"}]}}`))
	})

	res, err := client.Preview(context.Background(), samplePreviewRequest())
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if res.Valid || len(res.Errors) != 1 || res.Errors[0].Message != "vehicle unavailable" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestPreviewTransportFailures(t *testing.T) {
	tests := []struct {
		name string
		h    http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) }},
		{"malformed", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`<html>`)) }},
		{"timeout", func(w http.ResponseWriter, r *http.Request) { time.Sleep(1500 * time.Millisecond) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.h)
			_, err := client.Preview(context.Background(), samplePreviewRequest())
			if !apperr.Is(err, apperr.KindUnavailable) {
				t.Fatalf("expected unavailable error, got %v", err)
			}
		})
	}
}

func TestCommitDispatchesByMode(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		var sub form.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			t.Errorf("decode submission: %v", err)
		}
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"data":{"id":"BK-1"}}`))
			return
		}
		w.Write([]byte(`{}`))
	})

	id, err := client.Create(context.Background(), form.Submission{Mode: form.ModeCreate})
	if err != nil || id != "BK-1" {
		t.Fatalf("create: id=%q err=%v", id, err)
	}
	id, err = client.Update(context.Background(), form.Submission{Mode: form.ModeUpdate, BookingID: "BK-7"})
	if err != nil || id != "BK-7" {
		t.Fatalf("update: id=%q err=%v", id, err)
	}
	if len(seen) != 2 || seen[0] != "POST /bookings" || seen[1] != "PUT /bookings/BK-7" {
		t.Fatalf("unexpected requests %v", seen)
	}
}

func TestCommitRejections(t *testing.T) {
	tests := []struct {
		status int
		kind   apperr.Kind
	}{
		{http.StatusUnprocessableEntity, apperr.KindValidation},
		{http.StatusConflict, apperr.KindConflict},
		{http.StatusBadGateway, apperr.KindUnavailable},
	}
	for _, tt := range tests {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"message":"vehicle already booked"}`))
		})
		_, err := client.Create(context.Background(), form.Submission{})
		if !apperr.Is(err, tt.kind) {
			t.Errorf("status %d: expected kind %v, got %v", tt.status, tt.kind, err)
		}
	}
}

func TestGetBookingBuildsDraft(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bookings/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{
			"id": "BK-9",
			"vehicleId": "10000000-0000-0000-0000-000000000001",
			"startAt": "2026-06-01T09:00:00Z",
			"endAt": "2026-06-03T09:00:00Z",
			"packageId": null,
			"discountId": "30000000-0000-0000-0000-000000000003",
			"discountCode": "LOYAL",
			"offerings": [{"offeringId": "20000000-0000-0000-0000-000000000002", "quantity": 3}],
			"customer": {"name": "Sam", "email": "sam@example.com"},
			"logistics": {"pickup": "Depot", "dropoff": "Airport"}
		}`))
	})

	draft, err := client.GetBooking(context.Background(), "BK-9")
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if draft.DiscountCode != "LOYAL" || draft.VehicleID == nil || draft.PackageID != nil || len(draft.Offerings) != 1 || draft.Offerings[0].Quantity != 3 {
		t.Fatalf("unexpected draft %+v", draft)
	}
	if draft.DiscountID == nil || draft.DiscountID.String() != "30000000-0000-0000-0000-000000000003" {
		t.Fatalf("expected discount id on draft, got %v", draft.DiscountID)
	}

	_, err = client.GetBooking(context.Background(), "missing")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
