package email

import (
	"context"
	"time"

	"fleet_console_backend/platform/config"
)

// Attachment represents a file attachment for an email.
type Attachment struct {
	Content  []byte // raw file bytes
	FileName string // e.g. "booking-BK-00042.png"
	MIMEType string // e.g. "image/png"
}

// Confirmation is the content of a booking confirmation email.
type Confirmation struct {
	CustomerName string
	BookingID    string
	VehicleName  string
	StartAt      time.Time
	EndAt        time.Time
	GrandTotal   string
	Updated      bool
}

type Sender interface {
	SendBookingConfirmation(ctx context.Context, toEmail string, c Confirmation) error
}

type NoopSender struct{}

func (NoopSender) SendBookingConfirmation(ctx context.Context, toEmail string, c Confirmation) error {
	return nil
}

// NewSender returns an SMTP sender when SMTP is configured, otherwise a
// sender that drops every message.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.IsSMTPEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetSMTPFromAddress(),
		cfg.GetSMTPFromName(),
	)
}
