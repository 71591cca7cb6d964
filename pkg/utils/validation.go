package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "pgy3-backend/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so messages match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct validates s against its `validate` tags. Failures come back
// as a VALIDATION AppError listing every rejected field.
func ValidateStruct(s interface{}, message string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return apperrors.NewValidationError(message).WithCause(err)
	}
	return apperrors.NewFieldValidationError(message, FieldErrors(ves))
}

// FieldErrors converts validator output into path-qualified field errors.
func FieldErrors(ves validator.ValidationErrors) []apperrors.FieldError {
	out := make([]apperrors.FieldError, 0, len(ves))
	for _, e := range ves {
		path := fieldPath(e.Namespace())
		out = append(out, apperrors.FieldError{
			Field:   path,
			Rule:    e.Tag(),
			Message: formatFieldError(path, e),
		})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func formatFieldError(path string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", path, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", path, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", path, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", path)
	}
}
