package stripe

import (
	"context"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	stripe "github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"

	"github.com/resumeforge/resumeforge/internal/config"
	"github.com/resumeforge/resumeforge/internal/logger"
)

// Client defines the billing provider operations the cancellation flow
// depends on.
type Client interface {
	// ListCustomerSubscriptions returns the customer's subscriptions
	// across every status, in provider order.
	ListCustomerSubscriptions(ctx context.Context, customerID string) ([]*ProviderSubscription, error)
	// CancelAtPeriodEnd stops future renewal while preserving access
	// through the already-billed period.
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*ProviderSubscription, error)
}

type client struct {
	api       *stripeclient.API
	logger    *logger.Logger
	listLimit int64
}

// NewClient creates a Stripe-backed billing client. Transport retries are
// delegated to retryablehttp; Stripe mutating calls stay single-shot at the
// application level.
func NewClient(cfg *config.Configuration, log *logger.Logger) Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = log.GetRetryableHTTPLogger()

	api := stripeclient.New(cfg.Stripe.SecretKey, stripe.NewBackends(retryClient.StandardClient()))

	listLimit := cfg.Cancellation.ProviderListLimit
	if listLimit <= 0 {
		listLimit = 100
	}

	return &client{
		api:       api,
		logger:    log,
		listLimit: listLimit,
	}
}

func (c *client) ListCustomerSubscriptions(ctx context.Context, customerID string) ([]*ProviderSubscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(c.listLimit)

	var subs []*ProviderSubscription
	iter := c.api.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, fromStripeSubscription(iter.Subscription()))
	}
	if err := iter.Err(); err != nil {
		c.logger.Errorw("failed to list subscriptions in Stripe",
			"error", err,
			"customer_id", customerID,
		)
		return nil, mapProviderError(err)
	}

	c.logger.Debugw("listed subscriptions in Stripe",
		"customer_id", customerID,
		"count", len(subs),
	)
	return subs, nil
}

func (c *client) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*ProviderSubscription, error) {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx

	sub, err := c.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		c.logger.Errorw("failed to cancel subscription in Stripe",
			"error", err,
			"subscription_id", subscriptionID,
		)
		return nil, mapProviderError(err)
	}

	c.logger.Infow("set cancel_at_period_end in Stripe",
		"subscription_id", sub.ID,
		"status", sub.Status,
	)
	return fromStripeSubscription(sub), nil
}
