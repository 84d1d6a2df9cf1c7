package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Submission is one committed booking as recorded in the ledger.
type Submission struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	BookingID   string
	Mode        string
	SubmittedBy uuid.UUID
	VehicleID   uuid.UUID
	PackageID   *uuid.UUID
	DiscountID  *uuid.UUID
	StartAt     time.Time
	EndAt       time.Time
	GrandTotal  decimal.Decimal
	Payload     []byte
	CreatedAt   time.Time
}

// Ledger records committed booking submissions.
type Ledger interface {
	Insert(ctx context.Context, s Submission) (Submission, error)
	ListByBooking(ctx context.Context, bookingID string) ([]Submission, error)
}
