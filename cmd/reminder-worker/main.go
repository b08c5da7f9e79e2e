// Command reminder-worker consumes reminder scheduled events from the
// queue and logs each upcoming occasion with its reminder dates. It is the
// delivery point for future notification channels (email, push).
package main

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"giftplanner/internal/amqp"
	"giftplanner/internal/cli"
	"giftplanner/internal/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(bootLogger)

	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentWorker})

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the reminder worker")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Connected to AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	ctx, done := cli.GracefulShutdown(bootLogger, shutdownTimeout, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close AMQP connection", log.FieldError, err)
		}
	})

	go func() {
		logger.Info("Waiting for reminder events")
		if err := client.ConsumeReminders(ctx, func(msg *amqp.ReminderScheduledMessage) error {
			logger.Info("Reminder scheduled",
				log.FieldOccasionID, msg.OccasionID,
				"recipient", msg.RecipientName,
				log.FieldOccasionType, msg.OccasionType,
				"date", msg.Date,
				"reminder_dates", strings.Join(msg.ReminderDates, ", "))
			return nil
		}); err != nil {
			logger.Error("Consumer stopped", log.FieldError, err, log.FieldOperation, log.OpConsume)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
