package validator

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// ValidationError - Errors for tags validation.
type ValidationError struct {
	Errors []*ValidationErrorResponse `json:"errors"`
}

// ValidationErrorResponse - Struct for the validation error.
type ValidationErrorResponse struct {
	FailedField string `json:"failedField"`
	Tag         string `json:"tag"`
	Value       string `json:"value,omitempty"`
}

// NewValidationError - ValidationError constructor.
func NewValidationError(errors []*ValidationErrorResponse) *ValidationError {
	return &ValidationError{Errors: errors}
}

func (v *ValidationError) Error() string {
	data, err := json.Marshal(v)
	if err != nil {
		fields := make([]string, 0, len(v.Errors))
		for _, e := range v.Errors {
			fields = append(fields, e.FailedField)
		}

		return fmt.Sprintf("validation failed on fields: %s", strings.Join(fields, ", "))
	}

	return string(data)
}

// GetErrorsDetails - return the errors.
func (v *ValidationError) GetErrorsDetails() []*ValidationErrorResponse {
	return v.Errors
}
