package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct tags and reports failures using parameter names.
// Missing fields are reported together; otherwise the first invalid choice
// wins.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewInternalError(err)
	}

	var missing []string
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	if len(missing) > 0 {
		return apperrors.NewMissingFields(missing...)
	}

	fe := fieldErrs[0]
	if fe.Tag() == "oneof" {
		return apperrors.NewInvalidChoice(fe.Field(), strings.Fields(fe.Param()))
	}
	return apperrors.NewValidationError("invalid value for '"+fe.Field()+"'", map[string]any{"field": fe.Field()})
}
