package errors

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors used as marks on built errors. Callers classify an error
// by mark (errors.Is) rather than by matching message strings.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrVersionConflict  = errors.New("version conflict")
	ErrPermissionDenied = errors.New("permission denied")
	ErrHTTPClient       = errors.New("http client error")
	ErrDatabase         = errors.New("database error")
	ErrSystem           = errors.New("system error")
	ErrInternal         = errors.New("internal error")
)

// InternalError is the concrete error type produced by the builder. It keeps
// a user-facing hint and reportable details separate from the internal
// message so handlers can decide what to expose.
type InternalError struct {
	Message           string
	Hint              string
	ReportableDetails map[string]interface{}
	cause             error
}

func (e *InternalError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.cause
}

// Is reports whether err (or anything it wraps) carries the given mark.
func Is(err, mark error) bool {
	return errors.Is(err, mark)
}

func IsValidation(err error) bool       { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool         { return errors.Is(err, ErrNotFound) }
func IsAlreadyExists(err error) bool    { return errors.Is(err, ErrAlreadyExists) }
func IsVersionConflict(err error) bool  { return errors.Is(err, ErrVersionConflict) }
func IsPermissionDenied(err error) bool { return errors.Is(err, ErrPermissionDenied) }

// Hint extracts the user-facing hint from an error chain, if any.
func Hint(err error) string {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Hint
	}
	return ""
}

// Details extracts reportable details from an error chain, if any.
func Details(err error) map[string]interface{} {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.ReportableDetails
	}
	return nil
}

// Message extracts the internal message from an error chain. Falls back to
// the full error string for errors built outside this package.
func Message(err error) string {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
