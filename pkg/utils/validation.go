package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

var validate = validator.New()

// ValidateStruct validates a struct based on its validation tags
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateVar validates a single value against a tag expression
func ValidateVar(field string, value interface{}, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			return apperrors.NewInvalidArgumentError(formatTag(field, validationErrors[0].Tag(), validationErrors[0].Param()))
		}
		return apperrors.NewInvalidArgumentError(fmt.Sprintf("%s is invalid", field)).WithCause(err)
	}
	return nil
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		fields := make(map[string]interface{}, len(validationErrors))
		for _, e := range validationErrors {
			msg := formatFieldError(e)
			messages = append(messages, msg)
			fields[strings.ToLower(e.Field())] = e.Tag()
		}
		return apperrors.NewValidationError(strings.Join(messages, "; ")).WithDetails(fields)
	}
	return apperrors.NewValidationError("invalid input").WithCause(err)
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	return formatTag(strings.ToLower(e.Field()), e.Tag(), e.Param())
}

func formatTag(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "e164":
		return fmt.Sprintf("%s must be an E.164 phone number", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a UUID", field)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
