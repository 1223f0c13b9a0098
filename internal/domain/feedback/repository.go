package feedback

import "context"

// Repository provides access to cancellation feedback rows. Feedback has no
// update or delete lifecycle.
type Repository interface {
	Create(ctx context.Context, fb *CancellationFeedback) error
	ListBySubscription(ctx context.Context, subscriptionID string) ([]*CancellationFeedback, error)
}
