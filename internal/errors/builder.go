package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorBuilder builds an InternalError fluently:
//
//	ierr.NewError("subscription not found").
//		WithHint("Subscription does not belong to this user").
//		Mark(ierr.ErrNotFound)
type ErrorBuilder struct {
	err *InternalError
}

// NewError starts a builder with a fresh message.
func NewError(message string) *ErrorBuilder {
	return &ErrorBuilder{err: &InternalError{Message: message}}
}

// NewErrorf starts a builder with a formatted message.
func NewErrorf(format string, args ...interface{}) *ErrorBuilder {
	return NewError(fmt.Sprintf(format, args...))
}

// WithError starts a builder wrapping an existing error.
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{err: &InternalError{Message: "error", cause: err}}
}

// WithMessage overrides the internal message.
func (b *ErrorBuilder) WithMessage(message string) *ErrorBuilder {
	b.err.Message = message
	return b
}

// WithHint attaches a user-facing hint.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.Hint = hint
	return b
}

// WithHintf attaches a formatted user-facing hint.
func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.err.Hint = fmt.Sprintf(format, args...)
	return b
}

// WithReportableDetails attaches structured details safe to return to callers.
func (b *ErrorBuilder) WithReportableDetails(details map[string]interface{}) *ErrorBuilder {
	b.err.ReportableDetails = details
	return b
}

// Mark finalizes the builder, tagging the error with a sentinel so callers
// can branch with errors.Is instead of string matching.
func (b *ErrorBuilder) Mark(mark error) error {
	return errors.Mark(errors.WithStackDepth(b.err, 1), mark)
}
