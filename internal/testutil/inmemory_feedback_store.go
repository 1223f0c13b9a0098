package testutil

import (
	"context"

	"github.com/resumeforge/resumeforge/internal/domain/feedback"
	ierr "github.com/resumeforge/resumeforge/internal/errors"
)

// InMemoryFeedbackStore implements feedback.Repository
type InMemoryFeedbackStore struct {
	*InMemoryStore[*feedback.CancellationFeedback]

	CreateErr   error
	CreateCalls int
}

// NewInMemoryFeedbackStore creates a new in-memory feedback store
func NewInMemoryFeedbackStore() *InMemoryFeedbackStore {
	return &InMemoryFeedbackStore{
		InMemoryStore: NewInMemoryStore[*feedback.CancellationFeedback](),
	}
}

func copyFeedback(fb *feedback.CancellationFeedback) *feedback.CancellationFeedback {
	if fb == nil {
		return nil
	}
	copied := *fb
	return &copied
}

func (s *InMemoryFeedbackStore) Create(ctx context.Context, fb *feedback.CancellationFeedback) error {
	s.CreateCalls++
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if fb == nil {
		return ierr.NewError("feedback cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, fb.ID, copyFeedback(fb))
}

func (s *InMemoryFeedbackStore) ListBySubscription(ctx context.Context, subscriptionID string) ([]*feedback.CancellationFeedback, error) {
	rows := s.List(ctx, func(fb *feedback.CancellationFeedback) bool {
		return fb.SubscriptionID == subscriptionID
	})
	return rows, nil
}
