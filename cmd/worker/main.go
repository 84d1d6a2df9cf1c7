package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fleet_console_backend/internal/email"
	"fleet_console_backend/internal/scheduler"
	"fleet_console_backend/platform/config"
	"fleet_console_backend/platform/logger"
)

func main() {
	cfg, err := config.LoadWorker()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.GetRedisURL() == "" {
		panic("REDIS_URL is required for the worker")
	}
	if !cfg.IsSMTPEnabled() {
		log.Warn("SMTP not configured; confirmation emails will be dropped")
	}

	worker, err := scheduler.NewWorker(cfg, email.NewSender(cfg), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}
