package model

import "time"

// CalendarOverride replaces a resource's weekly hours on one date: either
// a closure (holiday, maintenance) or custom hours (special day). A date
// carries at most one override, enforced by a unique index. When a
// closure and custom hours are both requested for the same date the
// closure is absolute and wins.
type CalendarOverride struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ResourceID string    `json:"resource_id" bson:"resource_id" validate:"required,mongodb"`
	Date       string    `json:"date" bson:"date" validate:"required,dateymd"`
	Closed     bool      `json:"closed" bson:"closed"`
	Open       string    `json:"open,omitempty" bson:"open,omitempty" validate:"omitempty,clock"`
	Close      string    `json:"close,omitempty" bson:"close,omitempty" validate:"omitempty,clock"`
	Reason     string    `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=200"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// OverrideUpsert is the request body for setting a date's override.
type OverrideUpsert struct {
	Date   string `json:"date" validate:"required,dateymd"`
	Closed bool   `json:"closed"`
	Open   string `json:"open,omitempty" validate:"omitempty,clock"`
	Close  string `json:"close,omitempty" validate:"omitempty,clock"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=200"`
}
