package dto

import (
	"github.com/resumeforge/resumeforge/internal/validator"
)

// CancelSubscriptionRequest is the body of POST /cancel-subscription.
// SubscriptionID is the local row id; it may still carry a synthetic
// provider id underneath, which the service resolves.
type CancelSubscriptionRequest struct {
	SubscriptionID string                     `json:"subscriptionId" validate:"required"`
	Feedback       *CancellationFeedbackInput `json:"feedback,omitempty"`
}

// CancellationFeedbackInput is the optional exit survey attached to a
// cancellation. Reason is required when feedback is present at all.
type CancellationFeedbackInput struct {
	Reason       string `json:"reason" validate:"required"`
	Satisfaction string `json:"satisfaction,omitempty"`
	Comments     string `json:"comments,omitempty"`
}

func (r *CancelSubscriptionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// CancelSubscriptionResponse is returned for both the 200 and the
// provider-failure 500 shapes.
type CancelSubscriptionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Subscription reflects the local row after the attempt.
	Subscription *SubscriptionResponse `json:"subscription,omitempty"`
	// RealSubscriptionID is set when a synthetic provider id was resolved
	// during this call, so the caller can reconcile its own copy.
	RealSubscriptionID string `json:"realSubscriptionId,omitempty"`
	Details            string `json:"details,omitempty"`
}
