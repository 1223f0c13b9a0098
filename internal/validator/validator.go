package validator

import (
	"github.com/go-playground/validator/v10"

	ierr "github.com/resumeforge/resumeforge/internal/errors"
)

var validate = validator.New()

// ValidateRequest validates a request struct against its validate tags.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return ierr.WithError(err).
			WithMessage("request validation failed").
			WithHint("Please check the request payload").
			Mark(ierr.ErrValidation)
	}
	return nil
}
