package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet_console_backend/internal/email"
	"fleet_console_backend/internal/events"
	"fleet_console_backend/internal/scheduler"
	"fleet_console_backend/platform/logger"

	"github.com/google/uuid"
)

type testSender struct {
	sent []email.Confirmation
}

func (s *testSender) SendBookingConfirmation(_ context.Context, _ string, c email.Confirmation) error {
	s.sent = append(s.sent, c)
	return nil
}

type testScheduler struct {
	payloads []scheduler.BookingConfirmationPayload
	err      error
}

func (s *testScheduler) EnqueueBookingConfirmation(_ context.Context, p scheduler.BookingConfirmationPayload) error {
	if s.err != nil {
		return s.err
	}
	s.payloads = append(s.payloads, p)
	return nil
}

func committed(mail string) events.BookingCommitted {
	return events.BookingCommitted{
		BaseEvent:     events.NewBaseEvent(),
		SessionID:     uuid.New(),
		BookingID:     "BK-42",
		Mode:          "create",
		CustomerName:  "Sam",
		CustomerEmail: mail,
		StartAt:       time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
		EndAt:         time.Date(2026, 6, 3, 9, 0, 0, 0, time.UTC),
		GrandTotal:    "342.50",
	}
}

func TestBookingCommittedEnqueuesConfirmation(t *testing.T) {
	sender := &testSender{}
	sched := &testScheduler{}
	bus := events.NewInMemoryBus(logger.Discard())
	New(sender, sched, logger.Discard()).RegisterHandlers(bus)

	if err := bus.PublishSync(context.Background(), committed("sam@example.com")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(sched.payloads) != 1 || sched.payloads[0].GrandTotal != "342.50" || sched.payloads[0].CustomerEmail != "sam@example.com" {
		t.Fatalf("unexpected payloads %+v", sched.payloads)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("email must go through the queue when one is configured")
	}
}

func TestBookingCommittedSendsInlineWithoutScheduler(t *testing.T) {
	sender := &testSender{}
	bus := events.NewInMemoryBus(logger.Discard())
	New(sender, nil, logger.Discard()).RegisterHandlers(bus)

	if err := bus.PublishSync(context.Background(), committed("sam@example.com")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].BookingID != "BK-42" || sender.sent[0].Updated {
		t.Fatalf("unexpected sends %+v", sender.sent)
	}
}

func TestBookingCommittedWithoutEmailIsIgnored(t *testing.T) {
	sched := &testScheduler{}
	m := New(&testSender{}, sched, logger.Discard())

	if err := m.Handle(context.Background(), committed("")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sched.payloads) != 0 {
		t.Fatalf("expected nothing enqueued")
	}
}

func TestEnqueueFailureSurfaces(t *testing.T) {
	m := New(&testSender{}, &testScheduler{err: errors.New("redis down")}, logger.Discard())
	if err := m.Handle(context.Background(), committed("sam@example.com")); err == nil {
		t.Fatalf("expected enqueue error")
	}
}

func TestPreviewFailureIsLoggedOnly(t *testing.T) {
	m := New(&testSender{}, &testScheduler{}, logger.Discard())
	err := m.Handle(context.Background(), events.BookingPreviewFailed{
		BaseEvent: events.NewBaseEvent(),
		SessionID: uuid.New(),
		Reason:    "timeout",
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
}
