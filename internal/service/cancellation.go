package service

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/resumeforge/resumeforge/internal/api/dto"
	"github.com/resumeforge/resumeforge/internal/domain/feedback"
	"github.com/resumeforge/resumeforge/internal/domain/subscription"
	ierr "github.com/resumeforge/resumeforge/internal/errors"
	billing "github.com/resumeforge/resumeforge/internal/integration/stripe"
	"github.com/resumeforge/resumeforge/internal/types"
)

// CancellationService reconciles a cancellation request against the billing
// provider and the application datastore. The one invariant it defends: the
// local status never becomes canceled unless the provider subscription is
// confirmed canceled or confirmed absent.
type CancellationService interface {
	Cancel(ctx context.Context, req *dto.CancelSubscriptionRequest) (*CancellationOutcome, error)
}

type cancellationService struct {
	ServiceParams
}

func NewCancellationService(params ServiceParams) CancellationService {
	return &cancellationService{ServiceParams: params}
}

// Cancel runs the reconciliation flow: resolve a possibly synthetic provider
// id, cancel at period end, conditionally mark the local row canceled, and
// record feedback. Auth and ownership violations return an error with no side
// effects; everything past that point is reported through the outcome.
func (s *cancellationService) Cancel(ctx context.Context, req *dto.CancelSubscriptionRequest) (*CancellationOutcome, error) {
	log := s.Logger.WithContext(ctx)

	userID := types.GetUserID(ctx)
	if userID == "" {
		return nil, ierr.NewError("missing authenticated user").
			WithHint("Sign in and try again").
			Mark(ierr.ErrPermissionDenied)
	}

	sub, err := s.SubRepo.Get(ctx, req.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		// Do not reveal that the row exists for someone else.
		return nil, ierr.NewError("subscription not found").
			WithHint("No subscription with this id belongs to your account").
			WithReportableDetails(map[string]any{"subscription_id": req.SubscriptionID}).
			Mark(ierr.ErrNotFound)
	}

	outcome := &CancellationOutcome{Subscription: sub}
	originalProviderID := sub.StripeSubscriptionID
	providerID := originalProviderID

	if sub.HasSyntheticProviderID() {
		match, resErr := s.resolveProviderSubscription(ctx, sub)
		outcome.Resolution = resErr

		switch {
		case match != nil:
			providerID = match.ID
			outcome.ResolvedProviderID = match.ID
			// Best effort. A failed write here only means the next
			// cancellation attempt resolves again.
			if err := s.SubRepo.UpdateProviderID(ctx, sub.ID, match.ID); err != nil {
				log.Errorw("failed to persist resolved provider id",
					"error", err,
					"subscription_id", sub.ID,
					"resolved_id", match.ID,
				)
			} else {
				sub.StripeSubscriptionID = match.ID
			}
		case resErr.Kind == ResolutionNotFound && s.Config.Cancellation.RetryWithSyntheticID:
			log.Warnw("no provider match, forwarding synthetic id to provider",
				"subscription_id", sub.ID,
				"synthetic_id", originalProviderID,
			)
		default:
			log.Warnw("synthetic id resolution failed, leaving datastore untouched",
				"subscription_id", sub.ID,
				"synthetic_id", originalProviderID,
				"resolution_kind", resErr.Kind,
			)
			outcome.Kind = OutcomeProviderFailure
			outcome.FailureReason = resErr
			s.recordFeedback(ctx, sub, originalProviderID, req.Feedback)
			return outcome, nil
		}
	}

	providerSub, err := s.BillingClient.CancelAtPeriodEnd(ctx, providerID)
	switch {
	case err == nil:
		outcome.Kind = OutcomeFullSuccess
		outcome.EffectiveEndDate = providerSub.EffectiveEndDate()
	case billing.IsResourceMissing(err):
		log.Infow("provider has no such subscription, treating as already canceled",
			"subscription_id", sub.ID,
			"provider_id", providerID,
		)
		outcome.Kind = OutcomeAlreadyAbsent
	default:
		outcome.Kind = OutcomeProviderFailure
		outcome.FailureReason = err
		s.recordFeedback(ctx, sub, originalProviderID, req.Feedback)
		return outcome, nil
	}

	if err := s.SubRepo.UpdateStatus(ctx, sub.ID, sub.Version, types.SubscriptionStatusCanceled); err != nil {
		// Provider-side cancel already happened. Log and continue; the
		// response still reflects provider success.
		log.Errorw("provider cancel succeeded but local status update failed",
			"error", err,
			"subscription_id", sub.ID,
			"provider_id", providerID,
		)
		outcome.LocalUpdateFailed = true
	} else {
		sub.Status = types.SubscriptionStatusCanceled
		sub.Version++
		sub.UpdatedAt = time.Now().UTC()
	}

	s.recordFeedback(ctx, sub, originalProviderID, req.Feedback)
	s.sendConfirmation(ctx, outcome)

	return outcome, nil
}

// resolveProviderSubscription maps a synthetic provider id to a real one by
// listing the customer's subscriptions across every status and picking the
// one created within the resolution window of the local row. More than one
// candidate takes the first in provider order unless configured to fail.
func (s *cancellationService) resolveProviderSubscription(ctx context.Context, sub *subscription.Subscription) (*billing.ProviderSubscription, *ResolutionError) {
	log := s.Logger.WithContext(ctx)

	subs, err := s.BillingClient.ListCustomerSubscriptions(ctx, sub.StripeCustomerID)
	if err != nil {
		return nil, &ResolutionError{
			Kind:        ResolutionProviderUnavailable,
			SyntheticID: sub.StripeSubscriptionID,
			cause:       err,
		}
	}

	window := s.Config.Cancellation.ResolutionWindow
	matches := lo.Filter(subs, func(ps *billing.ProviderSubscription, _ int) bool {
		delta := ps.Created.Sub(sub.CreatedAt)
		if delta < 0 {
			delta = -delta
		}
		return delta < window
	})

	switch {
	case len(matches) == 0:
		return nil, &ResolutionError{
			Kind:        ResolutionNotFound,
			SyntheticID: sub.StripeSubscriptionID,
		}
	case len(matches) > 1:
		resErr := &ResolutionError{
			Kind:        ResolutionAmbiguousMatch,
			SyntheticID: sub.StripeSubscriptionID,
			Candidates:  len(matches),
		}
		if s.Config.Cancellation.FailOnAmbiguousMatch {
			return nil, resErr
		}
		log.Warnw("multiple provider subscriptions inside the resolution window, taking the first",
			"subscription_id", sub.ID,
			"candidates", len(matches),
			"resolved_id", matches[0].ID,
		)
		return matches[0], resErr
	}

	log.Infow("resolved synthetic provider id",
		"subscription_id", sub.ID,
		"synthetic_id", sub.StripeSubscriptionID,
		"resolved_id", matches[0].ID,
	)
	return matches[0], nil
}

// recordFeedback appends the exit survey. StripeSubscriptionID keeps the id
// as originally stored, pre-resolution. Failures are logged only.
func (s *cancellationService) recordFeedback(ctx context.Context, sub *subscription.Subscription, originalProviderID string, in *dto.CancellationFeedbackInput) {
	if in == nil {
		return
	}

	fb := &feedback.CancellationFeedback{
		ID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CANCELLATION_FEEDBACK),
		UserID:               sub.UserID,
		SubscriptionID:       sub.ID,
		StripeSubscriptionID: originalProviderID,
		Reason:               in.Reason,
		Satisfaction:         in.Satisfaction,
		Comments:             in.Comments,
		CreatedAt:            time.Now().UTC(),
	}
	if err := s.FeedbackRepo.Create(ctx, fb); err != nil {
		s.Logger.WithContext(ctx).Errorw("failed to record cancellation feedback",
			"error", err,
			"subscription_id", sub.ID,
		)
	}
}

func (s *cancellationService) sendConfirmation(ctx context.Context, outcome *CancellationOutcome) {
	if s.EmailSender == nil {
		return
	}
	email := types.GetUserEmail(ctx)
	if email == "" {
		return
	}
	if err := s.EmailSender.SendCancellationConfirmation(ctx, email, outcome.EffectiveEndDate); err != nil {
		s.Logger.WithContext(ctx).Errorw("failed to send cancellation confirmation email",
			"error", err,
		)
	}
}
