package events

import (
	"fmt"

	"reservd/pkg/config"
)

// New selects the publisher backend from configuration. Validate has
// already checked the backend name and the Kafka settings.
func New(cfg *config.Config) (Publisher, error) {
	switch cfg.EventsBackend {
	case config.EventsBackendKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ServiceName, cfg.Log)
	case config.EventsBackendLog:
		return NewLogPublisher(cfg.Log), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.EventsBackend)
	}
}
