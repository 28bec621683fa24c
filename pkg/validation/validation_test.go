package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Start string `validate:"omitempty,clock"`
	Date  string `validate:"omitempty,dateymd"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	if err := RegisterCommon(v); err != nil {
		t.Fatalf("RegisterCommon failed: %v", err)
	}
	return v
}

func TestClockTag(t *testing.T) {
	v := newValidator(t)

	valid := []string{"00:00", "09:30", "23:59"}
	for _, clock := range valid {
		if err := v.Struct(sample{Start: clock}); err != nil {
			t.Errorf("expected %q to pass, got %v", clock, err)
		}
	}

	invalid := []string{"24:00", "9:30", "09:60", "0930", "morning"}
	for _, clock := range invalid {
		if err := v.Struct(sample{Start: clock}); err == nil {
			t.Errorf("expected %q to fail", clock)
		}
	}
}

func TestDateTag(t *testing.T) {
	v := newValidator(t)

	valid := []string{"2026-01-01", "2026-12-31", "2024-02-29"}
	for _, date := range valid {
		if err := v.Struct(sample{Date: date}); err != nil {
			t.Errorf("expected %q to pass, got %v", date, err)
		}
	}

	invalid := []string{"2026-13-01", "2026-02-30", "01-01-2026", "2026/01/01", "tomorrow"}
	for _, date := range invalid {
		if err := v.Struct(sample{Date: date}); err == nil {
			t.Errorf("expected %q to fail", date)
		}
	}
}
