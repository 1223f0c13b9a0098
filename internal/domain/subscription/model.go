package subscription

import (
	"strings"
	"time"

	"github.com/resumeforge/resumeforge/internal/types"
)

// Synthetic provider-id prefixes. Rows created before the real Stripe
// subscription id was known carry one of these placeholders.
const (
	SyntheticPrefixFromInvoice = "sub_from_invoice_"
	SyntheticPrefixGenerated   = "sub_generated_"
)

// Subscription is a row in user_subscriptions. The version column guards
// status updates: writes are compare-and-swap on (id, version) so two
// concurrent cancellation attempts cannot race to inconsistent conclusions.
type Subscription struct {
	ID                   string                   `json:"id"`
	UserID               string                   `json:"user_id"`
	StripeCustomerID     string                   `json:"stripe_customer_id"`
	StripeSubscriptionID string                   `json:"stripe_subscription_id"`
	Status               types.SubscriptionStatus `json:"status"`
	PlanName             string                   `json:"plan_name,omitempty"`
	Version              int                      `json:"version"`
	CreatedAt            time.Time                `json:"created_at"`
	UpdatedAt            time.Time                `json:"updated_at"`
}

// IsSyntheticProviderID reports whether id is a locally generated placeholder
// rather than a real billing-provider subscription id.
func IsSyntheticProviderID(id string) bool {
	return strings.HasPrefix(id, SyntheticPrefixFromInvoice) ||
		strings.HasPrefix(id, SyntheticPrefixGenerated)
}

// HasSyntheticProviderID reports whether the stored provider id still needs
// resolution against the billing provider.
func (s *Subscription) HasSyntheticProviderID() bool {
	return IsSyntheticProviderID(s.StripeSubscriptionID)
}
