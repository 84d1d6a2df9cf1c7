package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskBookingConfirmation = "bookings.confirmation"

type BookingConfirmationPayload struct {
	BookingID     string    `json:"bookingId"`
	SessionID     string    `json:"sessionId"`
	Mode          string    `json:"mode"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	VehicleName   string    `json:"vehicleName"`
	StartAt       time.Time `json:"startAt"`
	EndAt         time.Time `json:"endAt"`
	GrandTotal    string    `json:"grandTotal"`
}

func NewBookingConfirmationTask(payload BookingConfirmationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBookingConfirmation, data), nil
}

func ParseBookingConfirmationPayload(task *asynq.Task) (BookingConfirmationPayload, error) {
	var payload BookingConfirmationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return BookingConfirmationPayload{}, err
	}
	return payload, nil
}
