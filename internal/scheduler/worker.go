package scheduler

import (
	"context"
	"fmt"

	"fleet_console_backend/internal/email"
	"fleet_console_backend/platform/config"
	"fleet_console_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sender email.Sender
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sender email.Sender, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(sender, log)
	w.server = server
	return w, nil
}

func newWorker(sender email.Sender, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:    mux,
		sender: sender,
		log:    log,
	}
	mux.HandleFunc(TaskBookingConfirmation, w.handleBookingConfirmation)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleBookingConfirmation(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseBookingConfirmationPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if payload.CustomerEmail == "" {
		w.log.Debug("booking confirmation skipped: no email", "booking_id", payload.BookingID)
		return nil
	}

	err = w.sender.SendBookingConfirmation(ctx, payload.CustomerEmail, email.Confirmation{
		CustomerName: payload.CustomerName,
		BookingID:    payload.BookingID,
		VehicleName:  payload.VehicleName,
		StartAt:      payload.StartAt,
		EndAt:        payload.EndAt,
		GrandTotal:   payload.GrandTotal,
		Updated:      payload.Mode == "update",
	})
	if err != nil {
		w.log.Error("booking confirmation failed", "error", err, "booking_id", payload.BookingID)
		return err
	}

	w.log.Info("booking confirmation sent", "booking_id", payload.BookingID)
	return nil
}
