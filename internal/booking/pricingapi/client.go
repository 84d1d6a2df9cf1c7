// Package pricingapi provides the HTTP client for the booking backend's
// preview and commit endpoints.
package pricingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleet_console_backend/internal/booking/form"
	"fleet_console_backend/internal/booking/preview"
	"fleet_console_backend/platform/apperr"
	"fleet_console_backend/platform/config"
	"fleet_console_backend/platform/logger"
)

const maxBodyBytes = 1 << 20

// Client talks to the booking backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *logger.Logger
}

// New creates a client from configuration.
func New(cfg config.PricingAPIConfig, log *logger.Logger) *Client {
	timeout := cfg.GetPricingAPITimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.GetPricingAPIURL(), "/"),
		apiKey:     cfg.GetPricingAPIKey(),
		log:        log,
	}
}

// Preview asks the backend to price and validate a snapshot of inputs.
// Validation errors come back inside the Result, not as a Go error.
func (c *Client) Preview(ctx context.Context, req form.PreviewRequest) (preview.Result, error) {
	body := previewBody{
		BookingID: req.BookingID,
		Vehicles:  []vehicleSelection{{VehicleID: req.VehicleID.String(), StartAt: req.StartAt, EndAt: req.EndAt}},
		Offerings: make([]offeringLine, 0, len(req.Offerings)),
		Discounts: req.DiscountCodes,
	}
	if req.PackageID != nil {
		body.PackageID = req.PackageID.String()
	}
	for _, l := range req.Offerings {
		body.Offerings = append(body.Offerings, offeringLine{OfferingID: l.OfferingID.String(), Quantity: l.Quantity})
	}

	status, raw, err := c.do(ctx, http.MethodPost, "/bookings/preview", body)
	if err != nil {
		return preview.Result{}, err
	}

	switch status {
	case http.StatusOK, http.StatusBadRequest, http.StatusUnprocessableEntity:
		// Rejections may still carry a validation block.
	default:
		return preview.Result{}, c.statusError("preview", status)
	}

	result, err := preview.Normalize(raw)
	if err != nil {
		c.log.Error("pricing preview decode failed", "error", err, "status", status)
		return preview.Result{}, apperr.Unavailable("pricing backend returned an unreadable preview", err)
	}
	if status != http.StatusOK && result.Valid {
		return preview.Result{}, c.statusError("preview", status)
	}
	return result, nil
}

// Create commits a new booking and returns its id.
func (c *Client) Create(ctx context.Context, sub form.Submission) (string, error) {
	return c.commit(ctx, http.MethodPost, "/bookings", sub)
}

// Update commits changes to an existing booking and returns its id.
func (c *Client) Update(ctx context.Context, sub form.Submission) (string, error) {
	if sub.BookingID == "" {
		return "", apperr.Validation("booking id is required for an update")
	}
	return c.commit(ctx, http.MethodPut, "/bookings/"+url.PathEscape(sub.BookingID), sub)
}

// GetBooking fetches an existing booking to prefill an edit session.
func (c *Client) GetBooking(ctx context.Context, bookingID string) (form.Draft, error) {
	status, raw, err := c.do(ctx, http.MethodGet, "/bookings/"+url.PathEscape(bookingID), nil)
	if err != nil {
		return form.Draft{}, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return form.Draft{}, apperr.NotFound("booking not found")
	default:
		return form.Draft{}, c.statusError("get booking", status)
	}

	var b apiBooking
	if err := decodeEnveloped(raw, &b); err != nil {
		c.log.Error("pricing booking decode failed", "error", err, "bookingId", bookingID)
		return form.Draft{}, apperr.Unavailable("booking backend returned an unreadable booking", err)
	}
	draft, err := b.toDraft()
	if err != nil {
		return form.Draft{}, apperr.Unavailable("booking backend returned an unreadable booking", err)
	}
	return draft, nil
}

func (c *Client) commit(ctx context.Context, method, path string, sub form.Submission) (string, error) {
	status, raw, err := c.do(ctx, method, path, sub)
	if err != nil {
		return "", err
	}

	switch status {
	case http.StatusOK, http.StatusCreated:
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "", apperr.Validation(upstreamMessage(raw, "booking was rejected"))
	case http.StatusConflict:
		return "", apperr.Conflict(upstreamMessage(raw, "booking conflicts with an existing reservation"))
	case http.StatusNotFound:
		return "", apperr.NotFound("booking not found")
	default:
		return "", c.statusError("commit", status)
	}

	var ref bookingRef
	if err := decodeEnveloped(raw, &ref); err != nil {
		return "", apperr.Unavailable("booking backend returned an unreadable response", err)
	}
	id := ref.id()
	if id == "" {
		id = sub.BookingID
	}
	if id == "" {
		return "", apperr.Unavailable("booking backend returned no booking id", nil)
	}
	return id, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("booking backend request failed", "error", err, "method", method, "path", path)
		return 0, nil, apperr.Unavailable("booking backend is unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, apperr.Unavailable("booking backend response was interrupted", err)
	}
	return resp.StatusCode, raw, nil
}

func (c *Client) statusError(op string, status int) error {
	c.log.Error("booking backend upstream error", "op", op, "status", status)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return apperr.Unavailable("booking backend rejected the api key", fmt.Errorf("%s: status %d", op, status))
	}
	return apperr.Unavailable("booking backend error", fmt.Errorf("%s: status %d", op, status))
}

func upstreamMessage(raw []byte, fallback string) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return fallback
	}
	if body.Message != "" {
		return body.Message
	}
	if body.Error != "" {
		return body.Error
	}
	return fallback
}

// decodeEnveloped decodes raw into v, unwrapping a data envelope.
func decodeEnveloped(raw []byte, v any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		raw = env.Data
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Join(preview.ErrMalformedResponse, err)
	}
	return nil
}

type vehicleSelection struct {
	VehicleID string    `json:"vehicleId"`
	StartAt   time.Time `json:"startAt"`
	EndAt     time.Time `json:"endAt"`
}

type offeringLine struct {
	OfferingID string `json:"offeringId"`
	Quantity   int    `json:"quantity"`
}

type previewBody struct {
	BookingID string             `json:"bookingId,omitempty"`
	Vehicles  []vehicleSelection `json:"vehicles"`
	PackageID string             `json:"packageId,omitempty"`
	Offerings []offeringLine     `json:"offerings"`
	Discounts []string           `json:"discountCodes"`
}

type bookingRef struct {
	ID        string `json:"id"`
	BookingID string `json:"bookingId"`
}

func (r bookingRef) id() string {
	if r.ID != "" {
		return r.ID
	}
	return r.BookingID
}

// apiBooking is the booking backend's representation of a reservation.
type apiBooking struct {
	ID           string         `json:"id"`
	VehicleID    *string        `json:"vehicleId"`
	StartAt      *time.Time     `json:"startAt"`
	EndAt        *time.Time     `json:"endAt"`
	PackageID    *string        `json:"packageId"`
	DiscountID   *string        `json:"discountId"`
	DiscountCode string         `json:"discountCode"`
	Offerings    []offeringLine `json:"offerings"`
	Customer     form.Customer  `json:"customer"`
	Logistics    form.Logistics `json:"logistics"`
}

func (a apiBooking) toDraft() (form.Draft, error) {
	d := form.Draft{
		StartAt:   a.StartAt,
		EndAt:     a.EndAt,
		Offerings: make([]form.DraftLine, 0, len(a.Offerings)),
		Customer:  a.Customer,
		Logistics: a.Logistics,

		DiscountCode: a.DiscountCode,
	}

	var err error
	if d.VehicleID, err = parseOptionalID(a.VehicleID); err != nil {
		return form.Draft{}, fmt.Errorf("vehicleId: %w", err)
	}
	if d.PackageID, err = parseOptionalID(a.PackageID); err != nil {
		return form.Draft{}, fmt.Errorf("packageId: %w", err)
	}
	if d.DiscountID, err = parseOptionalID(a.DiscountID); err != nil {
		return form.Draft{}, fmt.Errorf("discountId: %w", err)
	}
	for _, l := range a.Offerings {
		id, err := uuid.Parse(l.OfferingID)
		if err != nil {
			return form.Draft{}, fmt.Errorf("offeringId: %w", err)
		}
		d.Offerings = append(d.Offerings, form.DraftLine{OfferingID: id, Quantity: l.Quantity})
	}
	return d, nil
}

func parseOptionalID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
