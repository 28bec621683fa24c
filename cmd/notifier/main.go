package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"reservd/internal/events"
	"reservd/pkg/config"
	"reservd/pkg/kafka"
	kafkaconfig "reservd/pkg/kafka/config"
	kafka_middleware "reservd/pkg/kafka/middleware"
	"reservd/pkg/logger"
)

const ServiceName = "notifier"

// The notifier stands in for downstream subscribers: it consumes
// availability changes and logs a notification per event. Poison
// messages go to the DLQ once the consumer's retries are exhausted.
func main() {
	cfg := config.Load(ServiceName)
	log := cfg.Log

	kcfg := kafkaconfig.Load()

	consumer, err := kafka.NewConsumer(kcfg, cfg.KafkaTopic, ServiceName, cfg.KafkaTopic+".dlq", handleEvent(log))
	if err != nil {
		log.Fatal("Failed to create consumer", "error", err)
	}

	if kcfg.EnableMiddleware {
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware())
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(log))
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			log.Error("Failed to close consumer", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Notifier consuming availability changes", "topic", cfg.KafkaTopic, "group", ServiceName)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("Consumer stopped with error", "error", err)
	}
	log.Info("Notifier stopped")
}

func handleEvent(log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event events.AvailabilityChanged
		if err := msg.DecodeValue(&event); err != nil {
			return fmt.Errorf("decode availability change: %w", err)
		}

		log.Info("Availability changed",
			"event_id", event.EventID,
			"action", event.Action,
			"business_id", event.BusinessID,
			"resource_id", event.ResourceID,
			"date", event.Date,
			"window", event.Slot.StartTime+"-"+event.Slot.EndTime,
		)
		return nil
	}
}
