package ledger

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"expenselog/internal/core"
)

func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("amount", validateAmount)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// validateAmount accepts anything core.ParseAmount accepts.
func validateAmount(fl validator.FieldLevel) bool {
	_, err := core.ParseAmount(fl.Field().String())
	return err == nil
}

// toValidationError converts validator output into the domain error, keeping
// field order.
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var out core.ValidationError
	for _, fe := range verrs {
		out.Add(fe.Field(), reasonFor(fe))
	}
	return out.OrNil()
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Field() {
	case "amount":
		return core.ErrInvalidAmount.Error()
	case "category":
		return core.ErrEmptyCategory.Error()
	case "date":
		return core.ErrInvalidDate.Error()
	}
	return "failed " + fe.Tag()
}
