package model

import "time"

// Reservation lifecycle. A booking inserts the reservation confirmed
// inside the commit transaction; pending is reserved for flows that
// stage a hold first. Cancelled comes from an explicit call, completed
// from the sweeper once the window has elapsed.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// ActiveStatuses are the statuses that occupy a slot. Cancelled and
// completed reservations never conflict with new ones.
func ActiveStatuses() []string {
	return []string{StatusPending, StatusConfirmed}
}

type Reservation struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BusinessID  string    `json:"business_id" bson:"business_id" validate:"required,min=2,max=64"`
	ResourceID  string    `json:"resource_id" bson:"resource_id" validate:"required,mongodb"`
	Date        string    `json:"date" bson:"date" validate:"required,dateymd"`
	StartTime   string    `json:"start_time" bson:"start_time" validate:"required,clock"`
	EndTime     string    `json:"end_time" bson:"end_time" validate:"required,clock,gtfield=StartTime"`
	DurationMin int       `json:"duration_minutes" bson:"duration_minutes" validate:"required,min=5,max=720"`
	Status      string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// Active reports whether the reservation still occupies its slot.
func (r *Reservation) Active() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// BookingRequest is the write-path input. DurationMin may be zero, in
// which case the resource's duration policy applies.
type BookingRequest struct {
	ResourceID  string `json:"resource_id" validate:"required,mongodb"`
	Date        string `json:"date" validate:"required,dateymd"`
	StartTime   string `json:"start_time" validate:"required,clock"`
	DurationMin int    `json:"duration_minutes,omitempty" validate:"omitempty,min=5,max=720"`
}
