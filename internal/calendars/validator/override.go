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

type OverrideValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewOverrideValidator(log *logger.Logger) *OverrideValidator {
	v := validator.New()

	if err := validation.RegisterCommon(v); err != nil {
		log.Fatal("Failed to register common validators", "error", err)
	}

	return &OverrideValidator{
		validate: v,
		logger:   log,
	}
}

func (v *OverrideValidator) Validate(up *model.OverrideUpsert) error {
	if err := v.validate.Struct(up); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateHours(up)
}

func (v *OverrideValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "clock":
			message = fmt.Sprintf("%s must be a zero-padded HH:MM 24-hour time", err.Field())
		case "dateymd":
			message = fmt.Sprintf("%s must be a YYYY-MM-DD date", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

// validateHours checks what struct tags cannot: a custom-hours override
// must carry a complete open-before-close window. A closure needs no
// hours; any it carries are ignored at resolve time.
func (v *OverrideValidator) validateHours(up *model.OverrideUpsert) error {
	if up.Closed {
		return nil
	}

	var validationErrors ValidationErrors

	if up.Open == "" || up.Close == "" {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "Open",
			Message: "custom hours require both open and close",
		})
	} else {
		open, errOpen := timegrid.ParseClock(up.Open)
		closing, errClose := timegrid.ParseClock(up.Close)
		if errOpen == nil && errClose == nil && open >= closing {
			validationErrors = append(validationErrors, ValidationError{
				Field:   "Open",
				Message: fmt.Sprintf("open %s must be before close %s", up.Open, up.Close),
			})
		}
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}
