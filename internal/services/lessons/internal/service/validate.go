package service

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/gamma-omg/lexi-cards/internal/pkg/serr"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("field"); name != "" {
			return name
		}
		return f.Name
	})

	return v
}

// checkRequest validates r and converts the first violation into a 400 ServiceError.
// overrides replaces the default message for "<field>.<tag>" keys.
func checkRequest(r any, overrides map[string]string) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate request: %w", err)
	}

	fe := verrs[0]
	if msg, ok := overrides[fe.Field()+"."+fe.Tag()]; ok {
		return serr.BadRequest(err, "%s", msg)
	}

	return serr.BadRequest(err, "%s", violationMessage(fe))
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("'%s' is required", fe.Field())
	case "max":
		return fmt.Sprintf("'%s' must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("'%s' must be a non-negative integer", fe.Field())
	default:
		return fmt.Sprintf("'%s' is invalid", fe.Field())
	}
}
