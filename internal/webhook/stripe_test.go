package webhook

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumeforge/resumeforge/internal/config"
	"github.com/resumeforge/resumeforge/internal/domain/subscription"
	ierr "github.com/resumeforge/resumeforge/internal/errors"
	"github.com/resumeforge/resumeforge/internal/logger"
	"github.com/resumeforge/resumeforge/internal/testutil"
	"github.com/resumeforge/resumeforge/internal/types"
)

func newTestHandler(store *testutil.InMemorySubscriptionStore) *StripeHandler {
	cfg := config.GetDefaultConfig()
	cfg.Stripe.WebhookSecret = "whsec_test"
	return NewStripeHandler(cfg, logger.GetLogger(), store)
}

func seedSubscription(store *testutil.InMemorySubscriptionStore, providerID string) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:                   "sub_local_test_123",
		UserID:               "user_test_123",
		StripeCustomerID:     "cus_test_123",
		StripeSubscriptionID: providerID,
		Status:               types.SubscriptionStatusActive,
		Version:              1,
		CreatedAt:            time.Now().UTC().Add(-24 * time.Hour),
	}
	store.Add(sub)
	return sub
}

func TestSyncSubscriptionUpdatesStatus(t *testing.T) {
	store := testutil.NewInMemorySubscriptionStore()
	seedSubscription(store, "sub_real_456")
	h := newTestHandler(store)

	err := h.syncSubscription(context.Background(), &stripe.Subscription{
		ID:       "sub_real_456",
		Status:   stripe.SubscriptionStatusPastDue,
		Customer: &stripe.Customer{ID: "cus_test_123"},
	}, false)
	require.NoError(t, err)

	stored, err := store.Get(context.Background(), "sub_local_test_123")
	require.NoError(t, err)
	assert.Equal(t, types.SubscriptionStatusPastDue, stored.Status)
	assert.Equal(t, 2, stored.Version)
}

func TestSyncSubscriptionDeletedMarksCanceled(t *testing.T) {
	store := testutil.NewInMemorySubscriptionStore()
	seedSubscription(store, "sub_real_456")
	h := newTestHandler(store)

	err := h.syncSubscription(context.Background(), &stripe.Subscription{
		ID:       "sub_real_456",
		Status:   stripe.SubscriptionStatusActive,
		Customer: &stripe.Customer{ID: "cus_test_123"},
	}, true)
	require.NoError(t, err)

	stored, err := store.Get(context.Background(), "sub_local_test_123")
	require.NoError(t, err)
	assert.Equal(t, types.SubscriptionStatusCanceled, stored.Status)
}

func TestSyncSubscriptionResolvesSyntheticRow(t *testing.T) {
	store := testutil.NewInMemorySubscriptionStore()
	seedSubscription(store, "sub_from_invoice_xyz")
	h := newTestHandler(store)

	err := h.syncSubscription(context.Background(), &stripe.Subscription{
		ID:       "sub_real_456",
		Status:   stripe.SubscriptionStatusTrialing,
		Customer: &stripe.Customer{ID: "cus_test_123"},
	}, false)
	require.NoError(t, err)

	stored, err := store.Get(context.Background(), "sub_local_test_123")
	require.NoError(t, err)
	assert.Equal(t, "sub_real_456", stored.StripeSubscriptionID)
	assert.Equal(t, types.SubscriptionStatusTrialing, stored.Status)
}

func TestSyncSubscriptionIgnoresUnknownSubscription(t *testing.T) {
	store := testutil.NewInMemorySubscriptionStore()
	h := newTestHandler(store)

	err := h.syncSubscription(context.Background(), &stripe.Subscription{
		ID:       "sub_unknown",
		Status:   stripe.SubscriptionStatusActive,
		Customer: &stripe.Customer{ID: "cus_unknown"},
	}, false)
	assert.NoError(t, err)
	assert.Zero(t, store.UpdateStatusCalls)
}

func TestSyncSubscriptionGivesUpAfterRepeatedConflicts(t *testing.T) {
	store := testutil.NewInMemorySubscriptionStore()
	seedSubscription(store, "sub_real_456")
	store.UpdateStatusErr = ierr.NewError("subscription was modified concurrently").
		Mark(ierr.ErrVersionConflict)
	h := newTestHandler(store)

	err := h.syncSubscription(context.Background(), &stripe.Subscription{
		ID:       "sub_real_456",
		Status:   stripe.SubscriptionStatusPastDue,
		Customer: &stripe.Customer{ID: "cus_test_123"},
	}, false)
	require.Error(t, err)
	assert.True(t, ierr.IsVersionConflict(err))
	assert.Equal(t, casRetries, store.UpdateStatusCalls)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := testutil.NewInMemorySubscriptionStore()
	h := newTestHandler(store)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader(`{}`))
	c.Request.Header.Set("Stripe-Signature", "t=1,v1=bogus")

	h.HandleWebhook(c)

	require.NotEmpty(t, c.Errors)
	assert.True(t, ierr.IsValidation(c.Errors.Last().Err))
	assert.Zero(t, store.UpdateStatusCalls)
}
