package auth

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-admin-console/internal/errors"
)

var fieldLabels = map[string]string{
	"email":           "Email",
	"password":        "Password",
	"token":           "Token",
	"tokenIdentifier": "Invitation",
	"resetId":         "Reset link",
	"phoneNumber":     "Phone number",
}

// InputError reports the first invalid field of a request, before any network call
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Unwrap() error { return errors.ErrInvalidInput }

// Validator checks request DTOs against their validate tags
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Validate returns nil or an *InputError for the first failing field
func (v *Validator) Validate(in any) error {
	err := v.v.Struct(in)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "[Validator Validate] %v", err)
	}
	fe := validationErrors[0]
	return &InputError{Field: fe.Field(), Message: formatFieldError(fe)}
}

func formatFieldError(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
	case "e164":
		return fmt.Sprintf("%s must be in international format, e.g. +447700900123", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
