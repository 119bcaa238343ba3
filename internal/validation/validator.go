// Package validation checks request payloads with go-playground/validator and
// converts failures into VALIDATION_ERROR responses.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"giftshare/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

var std = New()

// Default returns the shared validator.
func Default() *Validator {
	return std
}

// Validate validates a struct and returns a *models.AppError on failure.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return formatError(err)
	}
	return nil
}

// ValidatePatch checks every present field of a partial update.
// A null is only accepted for nullable fields.
func (v *Validator) ValidatePatch(fields []models.PatchField) error {
	details := make(map[string]string)
	for _, f := range fields {
		if !f.Set {
			continue
		}
		if f.Null {
			if !f.Nullable {
				details[f.Name] = "must not be null"
			}
			continue
		}
		if f.Rules == "" {
			continue
		}
		if err := v.v.Var(f.Value, f.Rules); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
				details[f.Name] = friendlyMessage(fieldErrs[0])
			} else {
				details[f.Name] = "is invalid"
			}
		}
	}
	if len(details) > 0 {
		return models.NewValidationErrorWithDetails("Validation failed", details)
	}
	return nil
}

// IsUUID reports whether s is a canonical UUID.
func (v *Validator) IsUUID(s string) bool {
	return v.v.Var(s, "required,uuid") == nil
}

func formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return models.NewValidationError(err.Error())
	}

	details := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		details[e.Field()] = friendlyMessage(e)
	}
	return models.NewValidationErrorWithDetails("Validation failed", details)
}

func friendlyMessage(e validator.FieldError) string {
	stringish := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "min":
		if stringish {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return "must be at least " + e.Param()
	case "max":
		if stringish {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return "must not exceed " + e.Param()
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
