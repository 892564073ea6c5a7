package main

import (
	"context"
	"errors"
	"os"
	"time"

	"kaskelas/internal/amqp"
	"kaskelas/internal/cli"
	applog "kaskelas/internal/log"
	"kaskelas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)

	logger.Info("Starting reminder-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.NewReminderWorker(cfg.WorkerTimeout)

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, nil)

	go func() {
		handler := func(msg *amqp.ReminderMessage) error {
			return w.HandleReminder(ctx, msg)
		}
		if err := amqpClient.ConsumeReminders(ctx, cfg.WorkerPrefetch, handler); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("Reminder consumption failed", "error", err)
			}
		}
	}()

	logger.Info("Consuming payment reminders", "queue", cfg.AMQPQueue, "prefetch", cfg.WorkerPrefetch)
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
