package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
)

// FieldError describes one invalid request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("mailformat", func(fl validator.FieldLevel) bool {
		return checkmail.ValidateFormat(fl.Field().String()) == nil
	})

	return v
}

// ValidateStruct checks s against its validate tags
func ValidateStruct(s interface{}) []FieldError {
	return collect(validate.Struct(s), "")
}

// ValidateVar checks a single value against a tag list
func ValidateVar(field string, value interface{}, tag string) []FieldError {
	return collect(validate.Var(value, tag), field)
}

func collect(err error, field string) []FieldError {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: field, Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		name := field
		if name == "" {
			name = fe.Field()
		}
		out = append(out, FieldError{Field: name, Message: message(name, fe)})
	}
	return out
}

func message(field string, fe validator.FieldError) string {
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return field + " must be at least " + param + " characters"
		}
		return field + " must be at least " + param
	case "max":
		if fe.Kind() == reflect.String {
			return field + " must be at most " + param + " characters"
		}
		return field + " must be at most " + param
	case "email", "mailformat":
		return field + " must be a valid email"
	case "oneof":
		return field + " must be one of: " + param
	case "len":
		return field + " must be exactly " + param + " characters"
	default:
		return field + " is invalid"
	}
}
