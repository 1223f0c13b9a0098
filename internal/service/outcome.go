package service

import (
	"fmt"
	"time"

	"github.com/resumeforge/resumeforge/internal/domain/subscription"
)

// OutcomeKind tags the result of a cancellation attempt.
type OutcomeKind string

const (
	// OutcomeFullSuccess means the provider accepted the cancel and the
	// local row was marked canceled.
	OutcomeFullSuccess OutcomeKind = "full_success"
	// OutcomeAlreadyAbsent means the provider had no matching subscription;
	// the local row is marked canceled anyway.
	OutcomeAlreadyAbsent OutcomeKind = "already_absent"
	// OutcomeProviderFailure means the provider cancel failed for a reason
	// other than absence. The local row is left untouched and the caller
	// must be told billing is still active.
	OutcomeProviderFailure OutcomeKind = "provider_failure"
)

// CancellationOutcome is the tagged result of one cancellation attempt.
type CancellationOutcome struct {
	Kind OutcomeKind
	// Subscription is the local row after the attempt.
	Subscription *subscription.Subscription
	// ResolvedProviderID is set when a synthetic provider id was resolved
	// to a real one during this call.
	ResolvedProviderID string
	// EffectiveEndDate is the end-of-access date on full success.
	EffectiveEndDate *time.Time
	// Resolution carries the synthetic-id resolution detail, when any.
	// It can be set alongside a success kind (ambiguous match, continued).
	Resolution *ResolutionError
	// FailureReason is set on OutcomeProviderFailure.
	FailureReason error
	// LocalUpdateFailed flags a provider-side success whose local status
	// write lost. The row is stale until the webhook or a retry catches up.
	LocalUpdateFailed bool
}

// ResolutionErrorKind classifies synthetic-id resolution failures.
type ResolutionErrorKind string

const (
	ResolutionNotFound            ResolutionErrorKind = "not_found"
	ResolutionAmbiguousMatch      ResolutionErrorKind = "ambiguous_match"
	ResolutionProviderUnavailable ResolutionErrorKind = "provider_unavailable"
)

// ResolutionError reports why a synthetic provider id could not be resolved
// cleanly. Callers branch on Kind, never on the message.
type ResolutionError struct {
	Kind        ResolutionErrorKind
	SyntheticID string
	// Candidates is the number of provider subscriptions inside the
	// resolution window, when more than one matched.
	Candidates int
	cause      error
}

func (e *ResolutionError) Error() string {
	switch e.Kind {
	case ResolutionNotFound:
		return fmt.Sprintf("no provider subscription matches synthetic id %s", e.SyntheticID)
	case ResolutionAmbiguousMatch:
		return fmt.Sprintf("%d provider subscriptions match synthetic id %s", e.Candidates, e.SyntheticID)
	case ResolutionProviderUnavailable:
		if e.cause != nil {
			return fmt.Sprintf("billing provider unavailable while resolving %s: %v", e.SyntheticID, e.cause)
		}
		return fmt.Sprintf("billing provider unavailable while resolving %s", e.SyntheticID)
	}
	return string(e.Kind)
}

func (e *ResolutionError) Unwrap() error {
	return e.cause
}
