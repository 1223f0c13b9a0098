package testutil

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/resumeforge/resumeforge/internal/domain/subscription"
	ierr "github.com/resumeforge/resumeforge/internal/errors"
	"github.com/resumeforge/resumeforge/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository with the same
// compare-and-swap semantics as the real datastore, plus failure injection
// and call counting for collaborator assertions.
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]

	// Failure injection.
	GetErr              error
	UpdateProviderIDErr error
	UpdateStatusErr     error

	// Call counters.
	GetCalls              int
	GetByUserCalls        int
	GetByProviderIDCalls  int
	GetByCustomerIDCalls  int
	UpdateProviderIDCalls int
	UpdateStatusCalls     int
}

// NewInMemorySubscriptionStore creates a new in-memory subscription store
func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}
	copied := *sub
	return &copied
}

// Add seeds a subscription row.
func (s *InMemorySubscriptionStore) Add(sub *subscription.Subscription) {
	_ = s.InMemoryStore.Create(context.Background(), sub.ID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	s.GetCalls++
	if s.GetErr != nil {
		return nil, s.GetErr
	}

	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("subscription not found").
			WithHint("No subscription exists with the provided id").
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) GetByUser(ctx context.Context, userID string) (*subscription.Subscription, error) {
	s.GetByUserCalls++

	rows := s.List(ctx, func(sub *subscription.Subscription) bool {
		return sub.UserID == userID
	})
	if len(rows) == 0 {
		return nil, ierr.NewError("subscription not found").
			WithHint("No subscription exists for this user").
			Mark(ierr.ErrNotFound)
	}

	latest := lo.MaxBy(rows, func(a, b *subscription.Subscription) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	return copySubscription(latest), nil
}

func (s *InMemorySubscriptionStore) GetByProviderID(ctx context.Context, providerID string) (*subscription.Subscription, error) {
	s.GetByProviderIDCalls++

	rows := s.List(ctx, func(sub *subscription.Subscription) bool {
		return sub.StripeSubscriptionID == providerID
	})
	if len(rows) == 0 {
		return nil, ierr.NewError("subscription not found").
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(rows[0]), nil
}

func (s *InMemorySubscriptionStore) GetByCustomerID(ctx context.Context, customerID string) (*subscription.Subscription, error) {
	s.GetByCustomerIDCalls++

	rows := s.List(ctx, func(sub *subscription.Subscription) bool {
		return sub.StripeCustomerID == customerID
	})
	if len(rows) == 0 {
		return nil, ierr.NewError("subscription not found").
			Mark(ierr.ErrNotFound)
	}

	latest := lo.MaxBy(rows, func(a, b *subscription.Subscription) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	return copySubscription(latest), nil
}

func (s *InMemorySubscriptionStore) UpdateProviderID(ctx context.Context, id string, providerID string) error {
	s.UpdateProviderIDCalls++
	if s.UpdateProviderIDErr != nil {
		return s.UpdateProviderIDErr
	}

	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return ierr.NewError("subscription not found").
			Mark(ierr.ErrNotFound)
	}

	updated := copySubscription(sub)
	updated.StripeSubscriptionID = providerID
	updated.UpdatedAt = time.Now().UTC()
	return s.InMemoryStore.Update(ctx, id, updated)
}

// UpdateStatus mirrors the real CAS: the write only lands when fromVersion
// matches the stored version.
func (s *InMemorySubscriptionStore) UpdateStatus(ctx context.Context, id string, fromVersion int, status types.SubscriptionStatus) error {
	s.UpdateStatusCalls++
	if s.UpdateStatusErr != nil {
		return s.UpdateStatusErr
	}

	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return ierr.NewError("subscription not found").
			Mark(ierr.ErrNotFound)
	}
	if sub.Version != fromVersion {
		return ierr.NewError("subscription was modified concurrently").
			WithHint("Re-read the subscription and retry the update").
			Mark(ierr.ErrVersionConflict)
	}

	updated := copySubscription(sub)
	updated.Status = status
	updated.Version = fromVersion + 1
	updated.UpdatedAt = time.Now().UTC()
	return s.InMemoryStore.Update(ctx, id, updated)
}
