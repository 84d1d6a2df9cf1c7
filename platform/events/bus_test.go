package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"fleet_console_backend/platform/logger"
)

type pingEvent struct {
	BaseEvent
}

func (pingEvent) EventName() string { return "test.ping" }

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	var calls int32
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}))
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}))

	err := bus.PublishSync(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	if err == nil {
		t.Fatalf("expected joined error from failing handler")
	}
	if calls != 2 {
		t.Fatalf("expected both handlers to run, got %d", calls)
	}
}

func TestPublishRunsHandlersAfterContextCancel(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	done := make(chan error, 1)
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, _ Event) error {
		done <- ctx.Err()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, pingEvent{BaseEvent: NewBaseEvent()})
	cancel()
	bus.Wait()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected detached context, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("handler did not run")
	}
}
