package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"

	"github.com/resumeforge/resumeforge/internal/config"
	"github.com/resumeforge/resumeforge/internal/domain/subscription"
	ierr "github.com/resumeforge/resumeforge/internal/errors"
	"github.com/resumeforge/resumeforge/internal/logger"
	"github.com/resumeforge/resumeforge/internal/types"
)

const maxWebhookBodyBytes = 64 * 1024

// casRetries bounds the status-sync CAS loop against concurrent writers.
const casRetries = 3

// StripeHandler consumes billing provider webhooks and keeps local
// subscription rows in sync with provider-side state changes.
type StripeHandler struct {
	cfg     *config.Configuration
	log     *logger.Logger
	subRepo subscription.Repository
}

func NewStripeHandler(
	cfg *config.Configuration,
	log *logger.Logger,
	subRepo subscription.Repository,
) *StripeHandler {
	return &StripeHandler{
		cfg:     cfg,
		log:     log,
		subRepo: subRepo,
	}
}

// HandleWebhook verifies the event signature and dispatches subscription
// lifecycle events. Unhandled event types are acknowledged and dropped.
func (h *StripeHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		c.Error(ierr.WithError(err).
			WithMessage("failed to read webhook payload").
			Mark(ierr.ErrValidation))
		return
	}

	event, err := stripewebhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.cfg.Stripe.WebhookSecret)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithMessage("webhook signature verification failed").
			Mark(ierr.ErrValidation))
		return
	}

	ctx := c.Request.Context()
	log := h.log.WithContext(ctx)

	switch event.Type {
	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			c.Error(ierr.WithError(err).
				WithMessage("failed to decode subscription event").
				Mark(ierr.ErrValidation))
			return
		}
		if err := h.syncSubscription(ctx, &sub, event.Type == "customer.subscription.deleted"); err != nil {
			c.Error(err)
			return
		}
	default:
		log.Debugw("ignoring webhook event", "type", event.Type)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// syncSubscription mirrors the provider's status onto the local row. Rows
// still carrying a synthetic provider id are correlated through the customer
// id and upgraded to the real one first.
func (h *StripeHandler) syncSubscription(ctx context.Context, sub *stripe.Subscription, deleted bool) error {
	log := h.log.WithContext(ctx)

	local, err := h.subRepo.GetByProviderID(ctx, sub.ID)
	if ierr.IsNotFound(err) {
		local, err = h.correlateByCustomer(ctx, sub)
		if ierr.IsNotFound(err) {
			log.Debugw("webhook for unknown subscription, ignoring",
				"provider_id", sub.ID,
			)
			return nil
		}
	}
	if err != nil {
		return err
	}

	status := types.SubscriptionStatus(sub.Status)
	if deleted {
		status = types.SubscriptionStatusCanceled
	}
	if local.Status == status {
		return nil
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		err = h.subRepo.UpdateStatus(ctx, local.ID, local.Version, status)
		if err == nil {
			log.Infow("synced subscription status from webhook",
				"subscription_id", local.ID,
				"provider_id", sub.ID,
				"status", status,
			)
			return nil
		}
		if !ierr.IsVersionConflict(err) {
			return err
		}
		local, err = h.subRepo.Get(ctx, local.ID)
		if err != nil {
			return err
		}
		if local.Status == status {
			return nil
		}
	}

	return ierr.NewError("subscription status sync kept losing the version race").
		WithReportableDetails(map[string]any{"subscription_id": local.ID}).
		Mark(ierr.ErrVersionConflict)
}

func (h *StripeHandler) correlateByCustomer(ctx context.Context, sub *stripe.Subscription) (*subscription.Subscription, error) {
	if sub.Customer == nil || sub.Customer.ID == "" {
		return nil, ierr.NewError("subscription event has no customer").
			Mark(ierr.ErrNotFound)
	}

	local, err := h.subRepo.GetByCustomerID(ctx, sub.Customer.ID)
	if err != nil {
		return nil, err
	}
	if !local.HasSyntheticProviderID() {
		// The customer's row points at a different real subscription; this
		// event is not ours to apply.
		return nil, ierr.NewError("no matching subscription row").
			Mark(ierr.ErrNotFound)
	}

	if err := h.subRepo.UpdateProviderID(ctx, local.ID, sub.ID); err != nil {
		return nil, err
	}
	local.StripeSubscriptionID = sub.ID

	h.log.WithContext(ctx).Infow("resolved synthetic provider id from webhook",
		"subscription_id", local.ID,
		"provider_id", sub.ID,
	)
	return local, nil
}
