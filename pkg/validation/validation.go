// Package validation registers the custom struct tags shared by every
// service validator: "clock" for zero-padded HH:MM times and "dateymd"
// for YYYY-MM-DD dates.
package validation

import (
	"github.com/go-playground/validator/v10"

	"reservd/pkg/timegrid"
)

// RegisterCommon adds the shared tags to a validator instance. Call it
// once per instance, before any module-specific registrations.
func RegisterCommon(v *validator.Validate) error {
	if err := v.RegisterValidation("clock", validateClock); err != nil {
		return err
	}
	return v.RegisterValidation("dateymd", validateDate)
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := timegrid.ParseClock(fl.Field().String())
	return err == nil
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := timegrid.ParseDate(fl.Field().String())
	return err == nil
}
