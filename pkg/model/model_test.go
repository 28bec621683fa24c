package model

import (
	"testing"
	"time"
)

func TestDurationPolicyStep(t *testing.T) {
	tests := []struct {
		name   string
		policy DurationPolicy
		want   int
	}{
		{"step defaults to duration", DurationPolicy{SlotMinutes: 60}, 60},
		{"explicit step wins", DurationPolicy{SlotMinutes: 60, StepMinutes: 30}, 30},
		{"step may exceed duration", DurationPolicy{SlotMinutes: 30, StepMinutes: 45}, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Step(); got != tt.want {
				t.Errorf("Step() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResourceRuleFor(t *testing.T) {
	res := Resource{
		WeeklyRules: []WeeklyRule{
			{Day: Monday, Open: "09:00", Close: "17:00"},
			{Day: Wednesday, Open: "10:00", Close: "14:00"},
		},
	}

	rule, ok := res.RuleFor(Wednesday)
	if !ok {
		t.Fatal("expected a rule for Wednesday")
	}
	if rule.Open != "10:00" || rule.Close != "14:00" {
		t.Errorf("wrong rule returned: %+v", rule)
	}

	if _, ok := res.RuleFor(Sunday); ok {
		t.Error("expected no rule for Sunday")
	}
}

func TestWeekdayFromTime(t *testing.T) {
	if got := WeekdayFromTime(time.Tuesday); got != Tuesday {
		t.Errorf("WeekdayFromTime(Tuesday) = %q", got)
	}
	if got := WeekdayFromTime(time.Sunday); got != Sunday {
		t.Errorf("WeekdayFromTime(Sunday) = %q", got)
	}
}

func TestReservationActive(t *testing.T) {
	for status, want := range map[string]bool{
		StatusPending:   true,
		StatusConfirmed: true,
		StatusCancelled: false,
		StatusCompleted: false,
	} {
		r := Reservation{Status: status}
		if r.Active() != want {
			t.Errorf("Active() for %s = %v, want %v", status, r.Active(), want)
		}
	}
}

func TestResourceLocation(t *testing.T) {
	res := Resource{TimeZone: "Europe/Berlin"}
	loc, err := res.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "Europe/Berlin" {
		t.Errorf("Location = %v", loc)
	}

	res.TimeZone = "Not/AZone"
	if _, err := res.Location(); err == nil {
		t.Error("expected error for unknown zone")
	}
}
