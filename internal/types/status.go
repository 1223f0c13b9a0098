package types

// SubscriptionStatus mirrors the billing provider's subscription status
// vocabulary; local rows store the same values.
type SubscriptionStatus string

const (
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionStatusPaused            SubscriptionStatus = "paused"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status represents a subscription that can
// no longer renew.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionStatusCanceled || s == SubscriptionStatusIncompleteExpired
}

// AuthProvider identifies the hosted authentication backend.
type AuthProvider string

const (
	AuthProviderSupabase AuthProvider = "supabase"
)

// DeploymentMode identifies what this process is running as.
type DeploymentMode string

const (
	ModeAPI DeploymentMode = "api"
)

// LogLevel represents logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
