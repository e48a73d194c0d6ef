package config

import (
	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators adds the tags Config relies on beyond the
// validator built-ins.
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("glob", validateGlob)
}

// validateGlob accepts doublestar patterns such as "**/*.md".
func validateGlob(fl validator.FieldLevel) bool {
	pattern := fl.Field().String()
	return pattern != "" && doublestar.ValidatePattern(pattern)
}
