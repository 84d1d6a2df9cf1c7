// Package notification reacts to booking domain events. Domain modules
// publish events and never talk to email providers or the task queue.
package notification

import (
	"context"

	"fleet_console_backend/internal/email"
	"fleet_console_backend/internal/events"
	"fleet_console_backend/internal/scheduler"
	"fleet_console_backend/platform/logger"
)

// Module handles all notification-related event subscriptions.
type Module struct {
	sender    email.Sender
	scheduler scheduler.ConfirmationScheduler
	log       *logger.Logger
}

// New creates a new notification module. Without a scheduler the
// confirmation email is sent inline from the event handler.
func New(sender email.Sender, sched scheduler.ConfirmationScheduler, log *logger.Logger) *Module {
	return &Module{
		sender:    sender,
		scheduler: sched,
		log:       log,
	}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.BookingCommitted{}.EventName(), m)
	bus.Subscribe(events.BookingPreviewFailed{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.BookingCommitted:
		return m.handleBookingCommitted(ctx, e)
	case events.BookingPreviewFailed:
		m.log.Warn("booking preview unavailable",
			"session_id", e.SessionID.String(),
			"reason", e.Reason,
		)
		return nil
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleBookingCommitted(ctx context.Context, e events.BookingCommitted) error {
	if e.CustomerEmail == "" {
		m.log.Debug("booking committed without customer email", "booking_id", e.BookingID)
		return nil
	}

	if m.scheduler != nil {
		err := m.scheduler.EnqueueBookingConfirmation(ctx, scheduler.BookingConfirmationPayload{
			BookingID:     e.BookingID,
			SessionID:     e.SessionID.String(),
			Mode:          e.Mode,
			CustomerName:  e.CustomerName,
			CustomerEmail: e.CustomerEmail,
			VehicleName:   e.VehicleName,
			StartAt:       e.StartAt,
			EndAt:         e.EndAt,
			GrandTotal:    e.GrandTotal,
		})
		if err != nil {
			m.log.Error("failed to enqueue booking confirmation", "error", err, "booking_id", e.BookingID)
			return err
		}
		return nil
	}

	err := m.sender.SendBookingConfirmation(ctx, e.CustomerEmail, email.Confirmation{
		CustomerName: e.CustomerName,
		BookingID:    e.BookingID,
		VehicleName:  e.VehicleName,
		StartAt:      e.StartAt,
		EndAt:        e.EndAt,
		GrandTotal:   e.GrandTotal,
		Updated:      e.Mode == "update",
	})
	if err != nil {
		m.log.Error("failed to send booking confirmation", "error", err, "booking_id", e.BookingID)
		return err
	}
	return nil
}
