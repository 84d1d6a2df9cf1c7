package scheduler

import (
	"context"
	"errors"

	"fleet_console_backend/platform/cache"
	"fleet_console_backend/platform/config"

	"github.com/hibiken/asynq"
)

const confirmationMaxRetry = 8

type Client struct {
	client *asynq.Client
	queue  string
}

type ConfirmationScheduler interface {
	EnqueueBookingConfirmation(ctx context.Context, payload BookingConfirmationPayload) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueBookingConfirmation schedules the confirmation email. A commit is
// enqueued at most once; duplicates are ignored.
func (c *Client) EnqueueBookingConfirmation(ctx context.Context, payload BookingConfirmationPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewBookingConfirmationTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(confirmationMaxRetry),
		asynq.TaskID(confirmationTaskID(payload)),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func confirmationTaskID(p BookingConfirmationPayload) string {
	return "confirmation:" + p.BookingID + ":" + p.SessionID
}

func queueName(cfg config.SchedulerConfig) string {
	if q := cfg.GetAsynqQueueName(); q != "" {
		return q
	}
	return "default"
}

func redisClientOpt(cfg config.RedisConfig) (asynq.RedisClientOpt, error) {
	opt, err := cache.ParseOptions(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
