package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "marketplace/pkg/errors"

	"github.com/go-playground/validator/v10"
)

const MissingRequiredFields = "Missing required fields"

type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"-"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return ""
	}
	messages := make([]string, 0, len(e))
	for _, fe := range e {
		messages = append(messages, fe.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(e), strings.Join(messages, "; "))
}

func (e Errors) HasTag(tag string) bool {
	for _, fe := range e {
		if fe.Tag == tag {
			return true
		}
	}
	return false
}

// Validator wraps go-playground/validator and reports fields by their JSON
// names.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{validate: v}
}

func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// Struct returns nil or an Errors value.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

// ToAppError converts a Struct error into a 400. A missing required field
// wins the message so clients see "Missing required fields".
func ToAppError(err error, message string) error {
	if err == nil {
		return nil
	}
	var verrs Errors
	if !errors.As(err, &verrs) {
		return apperrors.Internal("Validation failed unexpectedly", err)
	}
	if verrs.HasTag("required") {
		message = MissingRequiredFields
	}
	return apperrors.Validation(message, map[string]any{"errors": []FieldError(verrs)})
}
