package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/escola/internal/pkg/apperrors"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator. Field names in messages come from the `label` tag.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if label := fld.Tag.Get("label"); label != "" {
				return label
			}
			return fld.Name
		})
	})
	return validate
}

// Struct validates s and converts the first failure into an apperrors validation error
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, formatFieldError(fe)).WithField(fe.StructField())
	}
	return fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err)
}

// formatFieldError creates a human-readable validation error message
func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_with":
		return e.Field() + " é obrigatório."
	case "min", "gte":
		return e.Field() + " deve ser no mínimo " + e.Param() + "."
	case "max":
		return e.Field() + " deve ter no máximo " + e.Param() + " caracteres."
	case "lte":
		return e.Field() + " deve ser no máximo " + e.Param() + "."
	case "email":
		return e.Field() + " deve ser um email válido."
	case "oneof":
		return e.Field() + " deve ser um de: " + strings.ReplaceAll(e.Param(), " ", ", ") + "."
	case "eqfield":
		return "As senhas não coincidem."
	default:
		return e.Field() + " é inválido."
	}
}
