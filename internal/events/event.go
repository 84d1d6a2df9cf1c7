// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"fleet_console_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Booking Domain Events
// =============================================================================

// BookingCommitted is published after the pricing backend accepted a
// create or update submission.
type BookingCommitted struct {
	BaseEvent
	SessionID     uuid.UUID `json:"sessionId"`
	BookingID     string    `json:"bookingId"`
	Mode          string    `json:"mode"`
	SubmittedBy   uuid.UUID `json:"submittedBy"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	VehicleName   string    `json:"vehicleName"`
	StartAt       time.Time `json:"startAt"`
	EndAt         time.Time `json:"endAt"`
	GrandTotal    string    `json:"grandTotal"`
}

func (e BookingCommitted) EventName() string { return "booking.committed" }

// BookingPreviewFailed is published when the pricing backend could not be
// reached for a preview. Invalid previews are not failures.
type BookingPreviewFailed struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	Reason    string    `json:"reason"`
}

func (e BookingPreviewFailed) EventName() string { return "booking.preview.failed" }
