package dto

import (
	"time"

	"github.com/resumeforge/resumeforge/internal/domain/subscription"
	"github.com/resumeforge/resumeforge/internal/types"
)

// SubscriptionResponse is the outward shape of a subscription row.
type SubscriptionResponse struct {
	ID                   string                   `json:"id"`
	Status               types.SubscriptionStatus `json:"status"`
	PlanName             string                   `json:"plan_name,omitempty"`
	StripeSubscriptionID string                   `json:"stripe_subscription_id"`
	CreatedAt            time.Time                `json:"created_at"`
	UpdatedAt            time.Time                `json:"updated_at"`
}

func NewSubscriptionResponse(sub *subscription.Subscription) *SubscriptionResponse {
	if sub == nil {
		return nil
	}
	return &SubscriptionResponse{
		ID:                   sub.ID,
		Status:               sub.Status,
		PlanName:             sub.PlanName,
		StripeSubscriptionID: sub.StripeSubscriptionID,
		CreatedAt:            sub.CreatedAt,
		UpdatedAt:            sub.UpdatedAt,
	}
}
