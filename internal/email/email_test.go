package email

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestRenderBookingConfirmation(t *testing.T) {
	c := Confirmation{
		CustomerName: "Sam <script>",
		BookingID:    "BK-42",
		VehicleName:  "Transit van",
		StartAt:      time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
		EndAt:        time.Date(2026, 6, 3, 9, 0, 0, 0, time.UTC),
		GrandTotal:   "342.50",
	}

	subject, html, err := renderBookingConfirmation(c)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "Booking BK-42 confirmed" {
		t.Errorf("unexpected subject %q", subject)
	}
	for _, want := range []string{"BK-42", "Transit van", "€342.50", "Mon 1 Jun 2026, 09:00 UTC", "Sam &lt;script&gt;"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in body", want)
		}
	}

	c.Updated = true
	subject, html, _ = renderBookingConfirmation(c)
	if subject != "Booking BK-42 updated" || !strings.Contains(html, "has been updated") {
		t.Errorf("update confirmation not rendered, subject %q", subject)
	}
}

func TestBookingQRCodeIsPNG(t *testing.T) {
	att, err := bookingQRCode("BK-42")
	if err != nil {
		t.Fatalf("qr: %v", err)
	}
	if !bytes.HasPrefix(att.Content, []byte("\x89PNG")) {
		t.Fatalf("expected png content")
	}
	if att.FileName != "booking-BK-42.png" || att.MIMEType != "image/png" {
		t.Fatalf("unexpected attachment %+v", att)
	}
}

type smtpOff struct{}

func (smtpOff) GetSMTPHost() string        { return "" }
func (smtpOff) GetSMTPPort() int           { return 587 }
func (smtpOff) GetSMTPUsername() string    { return "" }
func (smtpOff) GetSMTPPassword() string    { return "" }
func (smtpOff) GetSMTPFromName() string    { return "" }
func (smtpOff) GetSMTPFromAddress() string { return "" }
func (smtpOff) IsSMTPEnabled() bool        { return false }

func TestNewSenderFallsBackToNoop(t *testing.T) {
	s := NewSender(smtpOff{})
	if _, ok := s.(NoopSender); !ok {
		t.Fatalf("expected noop sender, got %T", s)
	}
	if err := s.SendBookingConfirmation(context.Background(), "a@example.com", Confirmation{}); err != nil {
		t.Fatalf("noop send: %v", err)
	}
}
