package model

import (
	"github.com/go-playground/validator/v10"
)

// RegisterValidations installs the enum validators used by binding tags on
// request DTOs. Must be called once against gin's validator engine.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("specialty", func(fl validator.FieldLevel) bool {
		return Specialty(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}

	return v.RegisterValidation("cancel_reason", func(fl validator.FieldLevel) bool {
		return CancelReason(fl.Field().String()).Valid()
	})
}
