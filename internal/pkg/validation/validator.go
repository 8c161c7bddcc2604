package validation

import (
	"errors"
	"strings"

	"author-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Struct validates v against its `validate` tags and reports failures as a
// Validation error keyed by field name.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.Validation(err.Error(), nil)
	}

	details := make(map[string]interface{}, len(fieldErrs))
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
		fields = append(fields, fe.Field())
	}
	return apperror.Validation("invalid fields: "+strings.Join(fields, ", "), details)
}
