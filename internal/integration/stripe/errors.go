package stripe

import (
	"github.com/cockroachdb/errors"
	stripe "github.com/stripe/stripe-go/v82"
)

// ErrorKind classifies billing provider failures so callers branch on a tag
// instead of matching error message substrings.
type ErrorKind string

const (
	// ErrorKindResourceMissing means the provider has no such subscription.
	// The cancellation flow treats this as already-canceled.
	ErrorKindResourceMissing ErrorKind = "resource_missing"
	// ErrorKindUnavailable means the provider could not be reached or
	// returned a 5xx.
	ErrorKindUnavailable ErrorKind = "unavailable"
	// ErrorKindAPI covers every other provider-side rejection.
	ErrorKindAPI ErrorKind = "api_error"
)

// ProviderError wraps a billing provider failure with its kind.
type ProviderError struct {
	Kind  ErrorKind
	Code  string
	cause error
}

func (e *ProviderError) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	return "billing provider error: " + string(e.Kind)
}

func (e *ProviderError) Unwrap() error {
	return e.cause
}

// NewProviderError builds a tagged provider error. Exposed for stubs.
func NewProviderError(kind ErrorKind, cause error) *ProviderError {
	return &ProviderError{Kind: kind, cause: cause}
}

// IsResourceMissing reports whether err means the provider has no matching
// subscription.
func IsResourceMissing(err error) bool {
	var pErr *ProviderError
	return errors.As(err, &pErr) && pErr.Kind == ErrorKindResourceMissing
}

// mapProviderError converts a stripe-go error into a tagged ProviderError.
func mapProviderError(err error) error {
	if err == nil {
		return nil
	}

	var sErr *stripe.Error
	if errors.As(err, &sErr) {
		kind := ErrorKindAPI
		switch {
		case sErr.Code == stripe.ErrorCodeResourceMissing:
			kind = ErrorKindResourceMissing
		case sErr.HTTPStatusCode >= 500:
			kind = ErrorKindUnavailable
		}
		return &ProviderError{Kind: kind, Code: string(sErr.Code), cause: err}
	}

	// Transport-level failures never reached the provider.
	return &ProviderError{Kind: ErrorKindUnavailable, cause: err}
}
