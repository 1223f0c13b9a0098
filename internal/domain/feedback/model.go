package feedback

import "time"

// CancellationFeedback is an append-only telemetry row recorded when a user
// supplies a reason while cancelling. StripeSubscriptionID keeps the id as
// originally supplied by the client, before synthetic-id resolution.
type CancellationFeedback struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"user_id"`
	SubscriptionID       string    `json:"subscription_id"`
	StripeSubscriptionID string    `json:"stripe_subscription_id"`
	Reason               string    `json:"reason"`
	Satisfaction         string    `json:"satisfaction,omitempty"`
	Comments             string    `json:"comments,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}
