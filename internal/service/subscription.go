package service

import (
	"context"

	"github.com/resumeforge/resumeforge/internal/api/dto"
	ierr "github.com/resumeforge/resumeforge/internal/errors"
	"github.com/resumeforge/resumeforge/internal/types"
)

// SubscriptionService exposes read access to the caller's own subscription.
type SubscriptionService interface {
	GetCurrentSubscription(ctx context.Context) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{ServiceParams: params}
}

// GetCurrentSubscription returns the most recent subscription row for the
// authenticated user.
func (s *subscriptionService) GetCurrentSubscription(ctx context.Context) (*dto.SubscriptionResponse, error) {
	userID := types.GetUserID(ctx)
	if userID == "" {
		return nil, ierr.NewError("missing authenticated user").
			WithHint("Sign in and try again").
			Mark(ierr.ErrPermissionDenied)
	}

	sub, err := s.SubRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubscriptionResponse(sub), nil
}
