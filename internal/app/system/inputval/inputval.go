// Package inputval validates submitted forms with struct tags.
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	_ = val.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = val.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
		return isLayout(fl.Field().String(), "2006-01-02")
	})
	_ = val.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return isLayout(fl.Field().String(), "15:04")
	})
	_ = val.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	// Report errors by the form/json name rather than the Go field name.
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return val
}

// Errors maps a field name to the first problem found with it.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for k, msg := range e {
		parts = append(parts, k+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// Validate checks req against its validate tags. It returns nil or Errors.
func Validate(req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := Errors{}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = Message(fe)
		}
	}
	return out
}

// Message renders one field error for display next to the input.
func Message(fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "ymd":
		return "must be a date (YYYY-MM-DD)"
	case "hhmm":
		return "must be a time (HH:MM)"
	case "numeric", "number":
		return "must be a number"
	case "objectid":
		return "must be a valid id"
	default:
		return "is invalid"
	}
}

// IsValidEmail reports whether s is a single bare address.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return v.Var(s, "email") == nil
}

func isLayout(s, layout string) bool {
	_, err := time.Parse(layout, s)
	return err == nil
}
