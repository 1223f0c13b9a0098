package supabase

import (
	"context"
	"strconv"
	"time"

	supa "github.com/nedpals/supabase-go"
	"github.com/samber/lo"

	"github.com/resumeforge/resumeforge/internal/domain/subscription"
	ierr "github.com/resumeforge/resumeforge/internal/errors"
	"github.com/resumeforge/resumeforge/internal/logger"
	"github.com/resumeforge/resumeforge/internal/types"
)

type subscriptionRepository struct {
	client *supa.Client
	logger *logger.Logger
}

func NewSubscriptionRepository(client *supa.Client, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{
		client: client,
		logger: logger,
	}
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	var rows []subscription.Subscription
	err := r.client.DB.From(string(types.TableNameUserSubscriptions)).
		Select("*").
		Eq("id", id).
		ExecuteWithContext(ctx, &rows)
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("failed to query subscription").
			Mark(ierr.ErrDatabase)
	}
	if len(rows) == 0 {
		return nil, ierr.NewError("subscription not found").
			WithHint("No subscription exists with the provided id").
			Mark(ierr.ErrNotFound)
	}
	return &rows[0], nil
}

func (r *subscriptionRepository) GetByUser(ctx context.Context, userID string) (*subscription.Subscription, error) {
	var rows []subscription.Subscription
	err := r.client.DB.From(string(types.TableNameUserSubscriptions)).
		Select("*").
		Eq("user_id", userID).
		ExecuteWithContext(ctx, &rows)
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("failed to query subscriptions by user").
			Mark(ierr.ErrDatabase)
	}
	if len(rows) == 0 {
		return nil, ierr.NewError("subscription not found").
			WithHint("No subscription exists for this user").
			Mark(ierr.ErrNotFound)
	}

	latest := lo.MaxBy(rows, func(a, b subscription.Subscription) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	return &latest, nil
}

func (r *subscriptionRepository) GetByProviderID(ctx context.Context, providerID string) (*subscription.Subscription, error) {
	var rows []subscription.Subscription
	err := r.client.DB.From(string(types.TableNameUserSubscriptions)).
		Select("*").
		Eq("stripe_subscription_id", providerID).
		ExecuteWithContext(ctx, &rows)
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("failed to query subscription by provider id").
			Mark(ierr.ErrDatabase)
	}
	if len(rows) == 0 {
		return nil, ierr.NewError("subscription not found").
			WithHint("No subscription carries the provided billing subscription id").
			Mark(ierr.ErrNotFound)
	}
	return &rows[0], nil
}

func (r *subscriptionRepository) GetByCustomerID(ctx context.Context, customerID string) (*subscription.Subscription, error) {
	var rows []subscription.Subscription
	err := r.client.DB.From(string(types.TableNameUserSubscriptions)).
		Select("*").
		Eq("stripe_customer_id", customerID).
		ExecuteWithContext(ctx, &rows)
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("failed to query subscription by customer id").
			Mark(ierr.ErrDatabase)
	}
	if len(rows) == 0 {
		return nil, ierr.NewError("subscription not found").
			WithHint("No subscription exists for this billing customer").
			Mark(ierr.ErrNotFound)
	}

	latest := lo.MaxBy(rows, func(a, b subscription.Subscription) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	return &latest, nil
}

func (r *subscriptionRepository) UpdateProviderID(ctx context.Context, id string, providerID string) error {
	payload := map[string]interface{}{
		"stripe_subscription_id": providerID,
		"updated_at":             time.Now().UTC().Format(time.RFC3339Nano),
	}

	var updated []subscription.Subscription
	err := r.client.DB.From(string(types.TableNameUserSubscriptions)).
		Update(payload).
		Eq("id", id).
		ExecuteWithContext(ctx, &updated)
	if err != nil {
		return ierr.WithError(err).
			WithMessage("failed to persist resolved subscription id").
			Mark(ierr.ErrDatabase)
	}
	if len(updated) == 0 {
		return ierr.NewError("subscription not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// UpdateStatus performs a compare-and-swap on the version column. Zero rows
// updated means another writer moved the row first.
func (r *subscriptionRepository) UpdateStatus(ctx context.Context, id string, fromVersion int, status types.SubscriptionStatus) error {
	payload := map[string]interface{}{
		"status":     string(status),
		"version":    fromVersion + 1,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	}

	var updated []subscription.Subscription
	err := r.client.DB.From(string(types.TableNameUserSubscriptions)).
		Update(payload).
		Eq("id", id).
		Eq("version", strconv.Itoa(fromVersion)).
		ExecuteWithContext(ctx, &updated)
	if err != nil {
		return ierr.WithError(err).
			WithMessage("failed to update subscription status").
			Mark(ierr.ErrDatabase)
	}
	if len(updated) == 0 {
		r.logger.Warnw("subscription status CAS lost a race",
			"subscription_id", id,
			"expected_version", fromVersion,
			"target_status", status,
		)
		return ierr.NewError("subscription was modified concurrently").
			WithHint("Re-read the subscription and retry the update").
			Mark(ierr.ErrVersionConflict)
	}
	return nil
}
