package stripe

import (
	"time"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v82"
)

// ProviderSubscription mirrors the fields of a Stripe subscription that the
// cancellation flow reads.
type ProviderSubscription struct {
	ID                string
	Status            string
	Created           time.Time
	TrialEnd          *time.Time
	CurrentPeriodEnd  *time.Time
	CancelAtPeriodEnd bool
	PlanAmount        decimal.Decimal
	Currency          string
}

// IsTrialing reports whether the provider considers the subscription still
// in trial.
func (s *ProviderSubscription) IsTrialing() bool {
	return s.Status == string(stripe.SubscriptionStatusTrialing)
}

// EffectiveEndDate is the end-of-access date after a cancel-at-period-end:
// the trial end while trialing, otherwise the current period end.
func (s *ProviderSubscription) EffectiveEndDate() *time.Time {
	if s.IsTrialing() && s.TrialEnd != nil {
		return s.TrialEnd
	}
	return s.CurrentPeriodEnd
}

func fromStripeSubscription(sub *stripe.Subscription) *ProviderSubscription {
	if sub == nil {
		return nil
	}

	ps := &ProviderSubscription{
		ID:                sub.ID,
		Status:            string(sub.Status),
		Created:           time.Unix(sub.Created, 0).UTC(),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		Currency:          string(sub.Currency),
	}

	if sub.TrialEnd > 0 {
		t := time.Unix(sub.TrialEnd, 0).UTC()
		ps.TrialEnd = &t
	}

	// Period boundaries and the price live on the subscription items.
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.CurrentPeriodEnd > 0 {
			t := time.Unix(item.CurrentPeriodEnd, 0).UTC()
			ps.CurrentPeriodEnd = &t
		}
		if item.Price != nil {
			ps.PlanAmount = decimal.NewFromInt(item.Price.UnitAmount).Div(decimal.NewFromInt(100))
			if ps.Currency == "" {
				ps.Currency = string(item.Price.Currency)
			}
		}
	}

	return ps
}
