package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventTypeAvailabilityChanged is the event-type header value for every
// availability event, regardless of action.
const EventTypeAvailabilityChanged = "availability.changed"

// Actions carried by AvailabilityChanged.
const (
	ActionBooked = "booked"
	ActionFreed  = "freed"
)

// Slot identifies the affected time window within the date.
type Slot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// AvailabilityChanged is emitted exactly once per successful booking or
// cancellation, after the change is committed. Consumers use it to
// invalidate cached availability for the (resource, date) pair.
type AvailabilityChanged struct {
	EventID    string    `json:"event_id"`
	BusinessID string    `json:"business_id,omitempty"`
	ResourceID string    `json:"resource_id"`
	Date       string    `json:"date"`
	Slot       Slot      `json:"slot"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewAvailabilityChanged builds an event with a fresh event ID and timestamp.
func NewAvailabilityChanged(businessID, resourceID, date, startTime, endTime, action string) AvailabilityChanged {
	return AvailabilityChanged{
		EventID:    uuid.New().String(),
		BusinessID: businessID,
		ResourceID: resourceID,
		Date:       date,
		Slot:       Slot{StartTime: startTime, EndTime: endTime},
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers availability events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event AvailabilityChanged) error
	Close() error
}
