package model

import "time"

// Resource kinds. A resource is anything a reservation can be taken
// against: a venue (room, court, chair) or a staff member.
const (
	ResourceKindVenue = "venue"
	ResourceKindStaff = "staff"
)

type Weekday string

const (
	Sunday    Weekday = "Sunday"
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
)

func WeekdayFromTime(d time.Weekday) Weekday {
	return Weekday(d.String())
}

// WeeklyRule is a resource's default working hours for one day of week.
// At most one rule per weekday per resource.
type WeeklyRule struct {
	Day   Weekday `json:"day" bson:"day" validate:"required,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	Open  string  `json:"open" bson:"open" validate:"required,clock"`
	Close string  `json:"close" bson:"close" validate:"required,clock"`
}

// DurationPolicy fixes the slot length and the grid the slot starts
// snap to. StepMinutes may be smaller than SlotMinutes to offer
// overlapping starts; zero means the step equals the duration.
type DurationPolicy struct {
	SlotMinutes int `json:"slot_minutes" bson:"slot_minutes" validate:"required,min=5,max=720"`
	StepMinutes int `json:"step_minutes,omitempty" bson:"step_minutes,omitempty" validate:"omitempty,min=5,max=720"`
}

// Step returns the effective grid step.
func (p DurationPolicy) Step() int {
	if p.StepMinutes > 0 {
		return p.StepMinutes
	}
	return p.SlotMinutes
}

// LeadTimePolicy is the minimum gap between now and a bookable start.
type LeadTimePolicy struct {
	MinLeadMinutes int `json:"min_lead_minutes" bson:"min_lead_minutes" validate:"min=0,max=43200"`
}

type Resource struct {
	ID          string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BusinessID  string         `json:"business_id" bson:"business_id" validate:"required,min=2,max=64"`
	Name        string         `json:"name" bson:"name" validate:"required,min=2,max=120"`
	Kind        string         `json:"kind" bson:"kind" validate:"required,oneof=venue staff"`
	TimeZone    string         `json:"time_zone" bson:"time_zone" validate:"required,timezone"`
	WeeklyRules []WeeklyRule   `json:"weekly_rules" bson:"weekly_rules" validate:"omitempty,max=7,dive"`
	Duration    DurationPolicy `json:"duration" bson:"duration"`
	LeadTime    LeadTimePolicy `json:"lead_time" bson:"lead_time"`
	Active      bool           `json:"active" bson:"active"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" bson:"updated_at"`
}

// RuleFor returns the weekly rule covering the given weekday, if any.
func (r *Resource) RuleFor(day Weekday) (WeeklyRule, bool) {
	for _, rule := range r.WeeklyRules {
		if rule.Day == day {
			return rule, true
		}
	}
	return WeeklyRule{}, false
}

// Location resolves the resource's IANA time zone.
func (r *Resource) Location() (*time.Location, error) {
	return time.LoadLocation(r.TimeZone)
}

// ResourceUpdate carries a partial update; nil fields stay untouched.
type ResourceUpdate struct {
	Name        *string         `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Kind        *string         `json:"kind,omitempty" validate:"omitempty,oneof=venue staff"`
	TimeZone    *string         `json:"time_zone,omitempty" validate:"omitempty,timezone"`
	WeeklyRules *[]WeeklyRule   `json:"weekly_rules,omitempty" validate:"omitempty,dive"`
	Duration    *DurationPolicy `json:"duration,omitempty"`
	LeadTime    *LeadTimePolicy `json:"lead_time,omitempty"`
	Active      *bool           `json:"active,omitempty"`
}
