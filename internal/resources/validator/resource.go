package validator

import (
	"errors"
	"fmt"
	"strings"

	"reservd/pkg/logger"
	"reservd/pkg/model"
	"reservd/pkg/timegrid"
	"reservd/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ResourceValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewResourceValidator(log *logger.Logger) *ResourceValidator {
	v := validator.New()

	if err := validation.RegisterCommon(v); err != nil {
		log.Fatal("Failed to register common validators", "error", err)
	}

	return &ResourceValidator{
		validate: v,
		logger:   log,
	}
}

func (v *ResourceValidator) Validate(res *model.Resource) error {
	if err := v.validate.Struct(res); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateScheduleRules(res)
}

func (v *ResourceValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", err.Field(), err.Param())
		case "clock":
			message = fmt.Sprintf("%s must be a zero-padded HH:MM 24-hour time", err.Field())
		case "dateymd":
			message = fmt.Sprintf("%s must be a YYYY-MM-DD date", err.Field())
		case "timezone":
			message = fmt.Sprintf("%s must be a valid IANA time zone", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid object ID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

// validateScheduleRules checks what struct tags cannot: each weekday may
// appear at most once, every rule must open before it closes, and a
// custom step must not exceed the slot duration.
func (v *ResourceValidator) validateScheduleRules(res *model.Resource) error {
	var validationErrors ValidationErrors

	seen := make(map[model.Weekday]bool)
	for _, rule := range res.WeeklyRules {
		if seen[rule.Day] {
			validationErrors = append(validationErrors, ValidationError{
				Field:   "WeeklyRules",
				Message: fmt.Sprintf("duplicate rule for %s", rule.Day),
			})
			continue
		}
		seen[rule.Day] = true

		open, errOpen := timegrid.ParseClock(rule.Open)
		closing, errClose := timegrid.ParseClock(rule.Close)
		if errOpen != nil || errClose != nil {
			// Struct tags already reported the malformed clock.
			continue
		}
		if open >= closing {
			validationErrors = append(validationErrors, ValidationError{
				Field:   "WeeklyRules",
				Message: fmt.Sprintf("%s: open %s must be before close %s", rule.Day, rule.Open, rule.Close),
			})
		}
	}

	if res.Duration.StepMinutes > res.Duration.SlotMinutes && res.Duration.StepMinutes > 0 {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "Duration",
			Message: fmt.Sprintf("step %d must not exceed slot duration %d", res.Duration.StepMinutes, res.Duration.SlotMinutes),
		})
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}
