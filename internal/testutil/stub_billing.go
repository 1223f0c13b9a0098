package testutil

import (
	"context"

	billing "github.com/resumeforge/resumeforge/internal/integration/stripe"
)

// StubBillingClient implements the billing client with scripted results and
// call counters.
type StubBillingClient struct {
	// Subscriptions is returned from ListCustomerSubscriptions.
	Subscriptions []*billing.ProviderSubscription
	ListErr       error

	// CancelResult overrides the default echo response; CancelErr fails the
	// cancel call instead.
	CancelResult *billing.ProviderSubscription
	CancelErr    error

	ListCalls   int
	CancelCalls int
	CanceledIDs []string
}

func NewStubBillingClient() *StubBillingClient {
	return &StubBillingClient{}
}

func (s *StubBillingClient) ListCustomerSubscriptions(ctx context.Context, customerID string) ([]*billing.ProviderSubscription, error) {
	s.ListCalls++
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return s.Subscriptions, nil
}

func (s *StubBillingClient) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*billing.ProviderSubscription, error) {
	s.CancelCalls++
	s.CanceledIDs = append(s.CanceledIDs, subscriptionID)
	if s.CancelErr != nil {
		return nil, s.CancelErr
	}
	if s.CancelResult != nil {
		return s.CancelResult, nil
	}
	return &billing.ProviderSubscription{
		ID:                subscriptionID,
		Status:            "active",
		CancelAtPeriodEnd: true,
	}, nil
}
