package util

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"notely/internal/utils/crypto"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is matched by every ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports malformed caller input. It is recoverable:
// the caller is expected to correct Field and retry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true for any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid is shorthand for &ValidationError{Field: field, Reason: reason}.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NewValidator returns a validator with the project's custom tags registered.
// Field names in errors follow the json tags.
func NewValidator() (*validator.Validate, error) {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := crypto.RegisterPasswordValidator(v); err != nil {
		return nil, err
	}
	return v, nil
}

// ValidateCtx executes v.StructCtx and converts the first failing rule into a
// *ValidationError. Returns crypto.ErrPasswordStrength verbatim, wrapped, when
// the password rule fails.
func ValidateCtx(ctx context.Context, v *validator.Validate, req any) error {
	err := v.StructCtx(ctx, req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	first := verrs[0]
	field := strings.ToLower(first.Field())
	if first.Tag() == crypto.PasswordTag {
		return fmt.Errorf("%w: %w", &ValidationError{Field: field, Reason: "is too weak"}, crypto.ErrPasswordStrength)
	}

	return &ValidationError{Field: field, Reason: describeTag(first)}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "failed the " + fe.Tag() + " rule"
	}
}
