package transport

import (
	"time"

	"github.com/google/uuid"
)

// StartSessionRequest opens a form session. A booking id starts an edit
// session prefilled from the booking backend.
type StartSessionRequest struct {
	Flow      string `json:"flow" validate:"omitempty,oneof=full quick"`
	BookingID string `json:"bookingId" validate:"omitempty,max=64"`
}

type SessionURI struct {
	ID string `uri:"id" validate:"required,uuid"`
}

type OfferingURI struct {
	ID         string `uri:"id" validate:"required,uuid"`
	OfferingID string `uri:"offeringId" validate:"required,uuid"`
}

type StepURI struct {
	ID   string `uri:"id" validate:"required,uuid"`
	Step int    `uri:"step" validate:"min=0,max=16"`
}

type BookingURI struct {
	BookingID string `uri:"bookingId" validate:"required,max=64"`
}

// SetVehicleRequest clears the vehicle when VehicleID is null.
type SetVehicleRequest struct {
	VehicleID *uuid.UUID `json:"vehicleId"`
}

type SetDatesRequest struct {
	StartAt *time.Time `json:"startAt"`
	EndAt   *time.Time `json:"endAt"`
}

type SetPackageRequest struct {
	PackageID *uuid.UUID `json:"packageId"`
}

// SetDiscountRequest clears the discount when Code is empty.
type SetDiscountRequest struct {
	Code string `json:"code" validate:"omitempty,min=2,max=40,alphanum"`
}

type SetCustomerRequest struct {
	Name  string `json:"name" validate:"max=200"`
	Email string `json:"email" validate:"omitempty,email,max=254"`
	Phone string `json:"phone" validate:"omitempty,phone"`
}

type SetLogisticsRequest struct {
	Pickup  string `json:"pickup" validate:"max=200"`
	Dropoff string `json:"dropoff" validate:"max=200"`
	Notes   string `json:"notes" validate:"max=2000"`
}

type ToggleOfferingRequest struct {
	Selected bool `json:"selected"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0,max=999"`
}

// SubmissionResponse is one ledger entry of a committed booking.
type SubmissionResponse struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"sessionId"`
	BookingID   string    `json:"bookingId"`
	Mode        string    `json:"mode"`
	SubmittedBy uuid.UUID `json:"submittedBy"`
	GrandTotal  string    `json:"grandTotal"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SubmissionListResponse struct {
	Items []SubmissionResponse `json:"items"`
	Total int                  `json:"total"`
}
