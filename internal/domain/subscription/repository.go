package subscription

import (
	"context"

	"github.com/resumeforge/resumeforge/internal/types"
)

// Repository provides access to subscription rows in the application
// datastore.
type Repository interface {
	// Get returns the subscription with the given local id.
	Get(ctx context.Context, id string) (*Subscription, error)
	// GetByUser returns the most recently created subscription for a user.
	GetByUser(ctx context.Context, userID string) (*Subscription, error)
	// GetByProviderID returns the subscription carrying the given billing
	// provider subscription id.
	GetByProviderID(ctx context.Context, providerID string) (*Subscription, error)
	// GetByCustomerID returns the most recent subscription for a billing
	// provider customer. Webhooks use it to correlate events against rows
	// that still carry a synthetic provider id.
	GetByCustomerID(ctx context.Context, customerID string) (*Subscription, error)
	// UpdateProviderID overwrites the stored provider subscription id.
	// Used to persist a resolved synthetic id; not version guarded.
	UpdateProviderID(ctx context.Context, id string, providerID string) error
	// UpdateStatus sets the status via compare-and-swap on the version
	// column. Returns ErrVersionConflict when the row moved underneath us.
	UpdateStatus(ctx context.Context, id string, fromVersion int, status types.SubscriptionStatus) error
}
