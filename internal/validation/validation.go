package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// Regional mobile pattern for customer phone numbers.
var phonePattern = regexp.MustCompile(`^01[0-2,5][0-9]{8}$`)

func newValidator() *validator.Validate {
	v := validator.New()

	// Report errors under JSON field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("egphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	_ = v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		var lower, upper, digit, special bool
		for _, r := range value {
			switch {
			case r >= 'a' && r <= 'z':
				lower = true
			case r >= 'A' && r <= 'Z':
				upper = true
			case r >= '0' && r <= '9':
				digit = true
			case strings.ContainsRune("@$!%*?&", r):
				special = true
			}
		}
		return lower && upper && digit && special
	})

	return v
}

// Struct validates a tagged struct and returns one human-readable message
// per failed field, or nil when the value is valid.
func Struct(value interface{}) []string {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fieldMessage(e))
	}
	return messages
}

func fieldMessage(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if e.Type().Kind() == reflect.String {
			return field + " must be at least " + e.Param() + " characters long"
		}
		return field + " must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return field + " cannot be longer than " + e.Param() + " characters"
		}
		return field + " must be at most " + e.Param()
	case "gte":
		return field + " must be at least " + e.Param()
	case "lte":
		return field + " must be at most " + e.Param()
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "url":
		return field + " must be a valid URL"
	case "eqfield":
		return field + " does not match " + e.Param()
	case "egphone":
		return field + " is not a valid mobile number"
	case "strongpwd":
		return field + " must include lowercase, uppercase, number and special character"
	default:
		return field + " is invalid"
	}
}
