package validator

import (
	"errors"
	"fmt"
	"strings"

	"reservd/pkg/logger"
	"reservd/pkg/model"
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

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	v := validator.New()

	if err := validation.RegisterCommon(v); err != nil {
		log.Fatal("Failed to register common validators", "error", err)
	}

	return &ReservationValidator{
		validate: v,
		logger:   log,
	}
}

func (v *ReservationValidator) ValidateBooking(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateStatuses checks a search status filter against the lifecycle
// vocabulary.
func (v *ReservationValidator) ValidateStatuses(statuses []string) error {
	var validationErrors ValidationErrors
	for _, status := range statuses {
		switch status {
		case model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted:
		default:
			validationErrors = append(validationErrors, ValidationError{
				Field:   "status",
				Message: fmt.Sprintf("unknown status %q", status),
			})
		}
	}
	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "clock":
			message = fmt.Sprintf("%s must be a zero-padded HH:MM 24-hour time", err.Field())
		case "dateymd":
			message = fmt.Sprintf("%s must be a YYYY-MM-DD date", err.Field())
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
