package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the pgx-backed submission ledger.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new submission ledger.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Ledger = (*Repo)(nil)

const submissionColumns = `id, session_id, booking_id, mode, submitted_by, vehicle_id, package_id,
	discount_id, start_at, end_at, grand_total, payload, created_at`

// Insert stores a committed submission.
func (r *Repo) Insert(ctx context.Context, s Submission) (Submission, error) {
	query := `
		INSERT INTO booking_submissions (
			session_id, booking_id, mode, submitted_by, vehicle_id, package_id,
			discount_id, start_at, end_at, grand_total, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + submissionColumns

	row := r.pool.QueryRow(ctx, query,
		s.SessionID, s.BookingID, s.Mode, s.SubmittedBy, s.VehicleID, s.PackageID,
		s.DiscountID, s.StartAt, s.EndAt, s.GrandTotal, s.Payload,
	)
	out, err := scanSubmission(row)
	if err != nil {
		return Submission{}, fmt.Errorf("insert booking submission: %w", err)
	}
	return out, nil
}

// ListByBooking returns the submissions of a booking, newest first.
func (r *Repo) ListByBooking(ctx context.Context, bookingID string) ([]Submission, error) {
	query := `SELECT ` + submissionColumns + `
		FROM booking_submissions
		WHERE booking_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list booking submissions: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Submission, error) {
		return scanSubmission(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan booking submissions: %w", err)
	}
	return items, nil
}

func scanSubmission(row pgx.Row) (Submission, error) {
	var s Submission
	err := row.Scan(
		&s.ID, &s.SessionID, &s.BookingID, &s.Mode, &s.SubmittedBy, &s.VehicleID, &s.PackageID,
		&s.DiscountID, &s.StartAt, &s.EndAt, &s.GrandTotal, &s.Payload, &s.CreatedAt,
	)
	return s, err
}
