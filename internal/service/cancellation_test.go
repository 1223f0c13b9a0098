package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/resumeforge/resumeforge/internal/api/dto"
	"github.com/resumeforge/resumeforge/internal/domain/subscription"
	ierr "github.com/resumeforge/resumeforge/internal/errors"
	billing "github.com/resumeforge/resumeforge/internal/integration/stripe"
	"github.com/resumeforge/resumeforge/internal/testutil"
	"github.com/resumeforge/resumeforge/internal/types"
)

type CancellationServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	cancellationService CancellationService
	testData            struct {
		subscription *subscription.Subscription
		now          time.Time
	}
}

func TestCancellationService(t *testing.T) {
	suite.Run(t, new(CancellationServiceTestSuite))
}

func (s *CancellationServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupServices()
	s.setupTestData()
}

func (s *CancellationServiceTestSuite) setupServices() {
	s.cancellationService = NewCancellationService(ServiceParams{
		Logger:        s.GetLogger(),
		Config:        s.Config,
		SubRepo:       s.SubStore,
		FeedbackRepo:  s.FeedbackStore,
		BillingClient: s.Billing,
		EmailSender:   s.Email,
	})
}

func (s *CancellationServiceTestSuite) setupTestData() {
	s.testData.now = time.Now().UTC()

	s.testData.subscription = &subscription.Subscription{
		ID:                   "sub_local_test_123",
		UserID:               "user_test_123",
		StripeCustomerID:     "cus_test_123",
		StripeSubscriptionID: "sub_generated_abc",
		Status:               types.SubscriptionStatusActive,
		PlanName:             "Pro Annual",
		Version:              1,
		CreatedAt:            s.testData.now.Add(-48 * time.Hour),
		UpdatedAt:            s.testData.now.Add(-48 * time.Hour),
	}
	s.SubStore.Add(s.testData.subscription)
}

func (s *CancellationServiceTestSuite) ctx() context.Context {
	return s.AuthenticatedContext("user_test_123", "user@example.com")
}

func (s *CancellationServiceTestSuite) providerSub(id string, created time.Time) *billing.ProviderSubscription {
	end := created.Add(30 * 24 * time.Hour)
	return &billing.ProviderSubscription{
		ID:               id,
		Status:           "active",
		Created:          created,
		CurrentPeriodEnd: &end,
	}
}

func (s *CancellationServiceTestSuite) TestResolvesSyntheticID() {
	created := s.testData.subscription.CreatedAt.Add(2 * time.Hour)
	s.Billing.Subscriptions = []*billing.ProviderSubscription{
		s.providerSub("sub_real_456", created),
	}

	outcome, err := s.cancellationService.Cancel(s.ctx(), &dto.CancelSubscriptionRequest{
		SubscriptionID: "sub_local_test_123",
	})
	s.NoError(err)
	s.Equal(OutcomeFullSuccess, outcome.Kind)
	s.Equal("sub_real_456", outcome.ResolvedProviderID)
	s.Equal([]string{"sub_real_456"}, s.Billing.CanceledIDs)

	stored, err := s.SubStore.Get(s.ctx(), "sub_local_test_123")
	s.NoError(err)
	s.Equal("sub_real_456", stored.StripeSubscriptionID)
	s.Equal(types.SubscriptionStatusCanceled, stored.Status)
	s.Equal(2, stored.Version)
}

func (s *CancellationServiceTestSuite) TestResolutionWindowIsStrict() {
	window := s.Config.Cancellation.ResolutionWindow

	// Exactly on the boundary: excluded.
	s.Billing.Subscriptions = []*billing.ProviderSubscription{
		s.providerSub("sub_on_boundary", s.testData.subscription.CreatedAt.Add(window)),
	}
	outcome, err := s.cancellationService.Cancel(s.ctx(), &dto.CancelSubscriptionRequest{
		SubscriptionID: "sub_local_test_123",
	})
	s.NoError(err)
	s.Equal(OutcomeProviderFailure, outcome.Kind)
	s.Require().NotNil(outcome.Resolution)
	s.Equal(ResolutionNotFound, outcome.Resolution.Kind)
	s.Zero(s.Billing.CancelCalls)

	// One millisecond inside: included.
	s.Billing.Subscriptions = []*billing.ProviderSubscription{
		s.providerSub("sub_inside", s.testData.subscription.CreatedAt.Add(window-time.Millisecond)),
	}
	outcome, err = s.cancellationService.Cancel(s.ctx(), &dto.CancelSubscriptionRequest{
		SubscriptionID: "sub_local_test_123",
	})
	s.NoError(err)
	s.Equal(OutcomeFullSuccess, outcome.Kind)
	s.Equal("sub_inside", outcome.ResolvedProviderID)
}

func (s *CancellationServiceTestSuite) TestNoMatchLeavesDatastoreUntouched() {
	s.Billing.Subscriptions = nil

	outcome, err := s.cancellationService.Cancel(s.ctx(), &dto.CancelSubscriptionRequest{
		SubscriptionID: "sub_local_test_123",
	})
	s.NoError(err)
	s.Equal(OutcomeProviderFailure, outcome.Kind)
	s.Require().NotNil(outcome.Resolution)
	s.Equal(ResolutionNotFound, outcome.Resolution.Kind)
	s.ErrorAs(outcome.FailureReason, new(*ResolutionError))

	s.Zero(s.Billing.CancelCalls)
	s.Zero(s.SubStore.UpdateStatusCalls)

	stored, err := s.SubStore.Get(s.ctx(), "sub_local_test_123")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, stored.Status)
	s.Equal("sub_generated_abc", stored.StripeSubscriptionID)
}

func (s *CancellationServiceTestSuite) TestRetryWithSyntheticID() {
	s.Config.Cancellation.RetryWithSyntheticID = true
	s.Billing.Subscriptions = nil
	s.Billing.CancelErr = billing.NewProviderError(billing.ErrorKindResourceMissing, errors.New("no such subscription"))

	outcome, err := s.cancellationService.Cancel(s.ctx(), &dto.CancelSubscriptionRequest{
		SubscriptionID: "sub_local_test_123",
	})
	s.NoError(err)
	s.Equal(OutcomeAlreadyAbsent, outcome.Kind)
	s.Equal([]string{"sub_generated_abc"}, s.Billing.CanceledIDs)
}

func (s *CancellationServiceTestSuite) TestAmbiguousMatchTakesFirst() {
	s.Billing.Subscriptions = []*billing.ProviderSubscription{
		s.providerSub("sub_first", s.testData.subscription.CreatedAt.Add(2*time.Hour)),
		s.providerSub("sub_second", s.testData.subscription.CreatedAt.Add(3*time.Hour)),
	}

	outcome, err := s.cancellationService.Cancel(s.ctx(), &dto.CancelSubscriptionRequest{
		SubscriptionID: "sub_local_test_123",
	})
	s.NoError(err)
	s.Equal(OutcomeFullSuccess, outcome.Kind)
	s.Equal("sub_first", outcome.ResolvedProviderID)
	s.Require().NotNil(outcome.Resolution)
	s.Equal(ResolutionAmbiguousMatch, outcome.Resolution.Kind)
	s.Equal(2, outcome.Resolution.Candidates)
}

func (s *CancellationServiceTestSuite) TestAmbiguousMatchFailsWhenConfigured() {
	s.Config.Cancellation.FailOnAmbiguousMatch = true
	s.Billing.Subscriptions = []*billing.ProviderSubscription{
		s.providerSub("sub_first", s.testData.subscription.CreatedAt.Add(2*time.Hour)),
		s.providerSub("sub_second", s.testData.subscription.CreatedAt.Add(3*time.Hour)),
	}

	outcome, err := s.cancellationService.Cancel(s.ctx(), &dto.CancelSubscriptionRequest{
		SubscriptionID: "sub_local_test_123",
	})
	s.NoError(err)
	s.Equal(OutcomeProviderFailure, outcome.Kind)
	s.Zero(s.Billing.CancelCalls)

	stored, err := s.SubStore.Get(s.ctx(), "sub_local_test_123")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, stored.Status)
}

func (s *CancellationServiceTestSuite) TestAbsenceAsSuccess() {
	// Row already carries a real provider id; no resolution step.
	s.testData.subscription.StripeSubscriptionID = "sub_real_789"
	s.SubStore.Clear(s.ctx())
	s.SubStore.Add(s.testData.subscription)

	s.Billing.CancelErr = billing.NewProviderError(billing.ErrorKindResourceMissing, errors.New("no such subscription"))

	outcome, err := s.cancellationService.Cancel(s.ctx(), &dto.CancelSubscriptionRequest{
		SubscriptionID: "sub_local_test_123",
	})
	s.NoError(err)
	s.Equal(OutcomeAlreadyAbsent, outcome.Kind)
	s.Zero(s.Billing.ListCalls)

	stored, err := s.SubStore.Get(s.ctx(), "sub_local_test_123")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCanceled, stored.Status)
}

func (s *CancellationServiceTestSuite) TestHardFailureLeavesDatastoreUntouched() {
	s.testData.subscription.StripeSubscriptionID = "sub_real_789"
	s.SubStore.Clear(s.ctx())
	s.SubStore.Add(s.testData.subscription)

	s.Billing.CancelErr = billing.NewProviderError(billing.ErrorKindUnavailable, errors.New("gateway timeout"))

	outcome, err := s.cancellationService.Cancel(s.ctx(), &dto.CancelSubscriptionRequest{
		SubscriptionID: "sub_local_test_123",
	})
	s.NoError(err)
	s.Equal(OutcomeProviderFailure, outcome.Kind)
	s.NotNil(outcome.FailureReason)
	s.Zero(s.SubStore.UpdateStatusCalls)
	s.Empty(s.Email.Sent)

	stored, err := s.SubStore.Get(s.ctx(), "sub_local_test_123")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, stored.Status)
	s.Equal(1, stored.Version)
}

func (s *CancellationServiceTestSuite) TestFeedbackIsAppendOnly() {
	s.Billing.Subscriptions = []*billing.ProviderSubscription{
		s.providerSub("sub_real_456", s.testData.subscription.CreatedAt.Add(2*time.Hour)),
	}

	req := &dto.CancelSubscriptionRequest{
		SubscriptionID: "sub_local_test_123",
		Feedback: &dto.CancellationFeedbackInput{
			Reason:       "too expensive",
			Satisfaction: "neutral",
		},
	}

	_, err := s.cancellationService.Cancel(s.ctx(), req)
	s.NoError(err)
	_, err = s.cancellationService.Cancel(s.ctx(), req)
	s.NoError(err)

	rows, err := s.FeedbackStore.ListBySubscription(s.ctx(), "sub_local_test_123")
	s.NoError(err)
	s.Len(rows, 2)
	s.NotEqual(rows[0].ID, rows[1].ID)
	// The first call's row keeps the id as originally supplied, before
	// resolution rewrote it.
	ids := []string{rows[0].StripeSubscriptionID, rows[1].StripeSubscriptionID}
	s.Contains(ids, "sub_generated_abc")
}

func (s *CancellationServiceTestSuite) TestFeedbackWriteFailureDoesNotChangeOutcome() {
	s.Billing.Subscriptions = []*billing.ProviderSubscription{
		s.providerSub("sub_real_456", s.testData.subscription.CreatedAt.Add(2*time.Hour)),
	}
	s.FeedbackStore.CreateErr = ierr.NewError("datastore down").Mark(ierr.ErrDatabase)

	outcome, err := s.cancellationService.Cancel(s.ctx(), &dto.CancelSubscriptionRequest{
		SubscriptionID: "sub_local_test_123",
		Feedback:       &dto.CancellationFeedbackInput{Reason: "switching tools"},
	})
	s.NoError(err)
	s.Equal(OutcomeFullSuccess, outcome.Kind)
	s.Equal(1, s.FeedbackStore.CreateCalls)
}

func (s *CancellationServiceTestSuite) TestMissingUserHasNoSideEffects() {
	_, err := s.cancellationService.Cancel(context.Background(), &dto.CancelSubscriptionRequest{
		SubscriptionID: "sub_local_test_123",
	})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
	s.Zero(s.SubStore.GetCalls)
	s.Zero(s.Billing.ListCalls)
	s.Zero(s.Billing.CancelCalls)
	s.Zero(s.FeedbackStore.CreateCalls)
}

func (s *CancellationServiceTestSuite) TestForeignSubscriptionIsNotFound() {
	ctx := s.AuthenticatedContext("user_other", "other@example.com")

	_, err := s.cancellationService.Cancel(ctx, &dto.CancelSubscriptionRequest{
		SubscriptionID: "sub_local_test_123",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
	s.Zero(s.Billing.ListCalls)
	s.Zero(s.Billing.CancelCalls)
	s.Zero(s.SubStore.UpdateStatusCalls)
}

func (s *CancellationServiceTestSuite) TestLostStatusRaceKeepsProviderSuccess() {
	s.testData.subscription.StripeSubscriptionID = "sub_real_789"
	s.SubStore.Clear(s.ctx())
	s.SubStore.Add(s.testData.subscription)
	s.SubStore.UpdateStatusErr = ierr.NewError("subscription was modified concurrently").
		Mark(ierr.ErrVersionConflict)

	outcome, err := s.cancellationService.Cancel(s.ctx(), &dto.CancelSubscriptionRequest{
		SubscriptionID: "sub_local_test_123",
	})
	s.NoError(err)
	s.Equal(OutcomeFullSuccess, outcome.Kind)
	s.True(outcome.LocalUpdateFailed)
	// Confirmation still goes out; the provider-side cancel happened.
	s.Len(s.Email.Sent, 1)
}

func (s *CancellationServiceTestSuite) TestEndToEndSyntheticResolution() {
	// Two provider subscriptions; only the one created 2h after the local
	// row falls inside the window.
	s.Billing.Subscriptions = []*billing.ProviderSubscription{
		s.providerSub("sub_old", s.testData.subscription.CreatedAt.Add(-30*24*time.Hour)),
		s.providerSub("sub_real_456", s.testData.subscription.CreatedAt.Add(2*time.Hour)),
	}
	end := s.testData.now.Add(20 * 24 * time.Hour)
	s.Billing.CancelResult = &billing.ProviderSubscription{
		ID:                "sub_real_456",
		Status:            "active",
		CancelAtPeriodEnd: true,
		CurrentPeriodEnd:  &end,
	}

	outcome, err := s.cancellationService.Cancel(s.ctx(), &dto.CancelSubscriptionRequest{
		SubscriptionID: "sub_local_test_123",
		Feedback:       &dto.CancellationFeedbackInput{Reason: "found a job"},
	})
	s.NoError(err)
	s.Equal(OutcomeFullSuccess, outcome.Kind)
	s.Equal("sub_real_456", outcome.ResolvedProviderID)
	s.Require().NotNil(outcome.EffectiveEndDate)
	s.True(outcome.EffectiveEndDate.Equal(end))

	stored, err := s.SubStore.Get(s.ctx(), "sub_local_test_123")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCanceled, stored.Status)
	s.Equal("sub_real_456", stored.StripeSubscriptionID)

	s.Len(s.Email.Sent, 1)
	s.Equal("user@example.com", s.Email.Sent[0].To)
}
