package events

import (
	"context"

	"reservd/pkg/kafka"
	kafka_config "reservd/pkg/kafka/config"
	kafka_middleware "reservd/pkg/kafka/middleware"
	"reservd/pkg/logger"
)

const schemaVersion = "1"

// KafkaPublisher writes availability events to a Kafka topic, keyed by
// resource ID so per-resource ordering is preserved.
type KafkaPublisher struct {
	producer *kafka.Producer
	source   string
}

// NewKafkaPublisher creates a publisher on top of the shared producer
// wrapper. Producer tuning comes from the Kafka environment config.
func NewKafkaPublisher(brokers []string, topic, source string, log *logger.Logger) (*KafkaPublisher, error) {
	kcfg := kafka_config.Load()
	if len(brokers) > 0 {
		kcfg.Brokers = brokers
	}

	producer, err := kafka.NewProducer(kcfg, topic, "")
	if err != nil {
		return nil, err
	}

	if kcfg.EnableMiddleware {
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
		producer.Use(kafka_middleware.LoggingProducerMiddleware(log))
	}

	return &KafkaPublisher{producer: producer, source: source}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event AvailabilityChanged) error {
	msg := kafka.NewMessage().
		WithKey(event.ResourceID).
		WithValue(event).
		WithEventID(event.EventID).
		WithEventType(EventTypeAvailabilityChanged).
		WithSchemaVersion(schemaVersion).
		WithSource(p.source).
		Build()

	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
