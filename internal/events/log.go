package events

import (
	"context"

	"reservd/pkg/logger"
)

// LogPublisher writes events to the structured log instead of a broker.
// Used in development and in tests where no Kafka cluster is available.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log.WithComponent("events")}
}

func (p *LogPublisher) Publish(_ context.Context, event AvailabilityChanged) error {
	p.log.Info("availability changed",
		"event_id", event.EventID,
		"business_id", event.BusinessID,
		"resource_id", event.ResourceID,
		"date", event.Date,
		"start_time", event.Slot.StartTime,
		"end_time", event.Slot.EndTime,
		"action", event.Action,
	)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
