package types

// TableName represents a datastore table name.
type TableName string

const (
	TableNameUserSubscriptions    TableName = "user_subscriptions"
	TableNameCancellationFeedback TableName = "cancellation_feedback"
)
