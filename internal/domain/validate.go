package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the request against its declared field constraints. It is a
// pure function of the request value: nil means the request is safe to hand to
// the classifier, otherwise the returned error carries per-field detail.
//
// A missing JSON field decodes to zero, which violates the open lower bound of
// every measurement, so absent and out-of-range fields are rejected alike.
func (r PredictionRequest) Validate() *AppError {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fields []FieldError
	for _, fe := range err.(validator.ValidationErrors) {
		fields = append(fields, FieldError{
			Field:   jsonFieldName(fe.Field()),
			Message: constraintMessage(fe),
		})
	}

	return NewValidationError(fields)
}

func jsonFieldName(structField string) string {
	switch structField {
	case "SepalLength":
		return "sepal_length"
	case "SepalWidth":
		return "sepal_width"
	case "PetalLength":
		return "petal_length"
	case "PetalWidth":
		return "petal_width"
	default:
		return strings.ToLower(structField)
	}
}

func constraintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required and must be greater than 0"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s constraint", fe.Tag())
	}
}
