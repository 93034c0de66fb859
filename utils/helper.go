package utils

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/ghg_reports/models"
)

var userIdPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.@-]{0,127}$`)

// IsValidUserId accepts the ids used as record keys in every store backend.
func IsValidUserId(id string) bool {
	return userIdPattern.MatchString(id)
}

// ProcessValidationErrors flattens validator failures into field -> tag.
// Any other error comes back under "error".
func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)

	var modelErr *models.ValidationError
	if errors.As(err, &modelErr) {
		for field, tag := range modelErr.Fields {
			errorResponse[field] = tag
		}
		return errorResponse
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, ve := range validationErrors {
			errorResponse[ve.Field()] = ve.Tag()
		}
		return errorResponse
	}
	if err != nil {
		errorResponse["error"] = err.Error()
	}
	return errorResponse
}
