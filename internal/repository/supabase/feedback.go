package supabase

import (
	"context"

	supa "github.com/nedpals/supabase-go"

	"github.com/resumeforge/resumeforge/internal/domain/feedback"
	ierr "github.com/resumeforge/resumeforge/internal/errors"
	"github.com/resumeforge/resumeforge/internal/logger"
	"github.com/resumeforge/resumeforge/internal/types"
)

type feedbackRepository struct {
	client *supa.Client
	logger *logger.Logger
}

func NewFeedbackRepository(client *supa.Client, logger *logger.Logger) feedback.Repository {
	return &feedbackRepository{
		client: client,
		logger: logger,
	}
}

// Create appends a feedback row. Rows are never updated or deleted.
func (r *feedbackRepository) Create(ctx context.Context, fb *feedback.CancellationFeedback) error {
	if fb == nil {
		return ierr.NewError("feedback is nil").Mark(ierr.ErrValidation)
	}

	var inserted []feedback.CancellationFeedback
	err := r.client.DB.From(string(types.TableNameCancellationFeedback)).
		Insert(fb).
		ExecuteWithContext(ctx, &inserted)
	if err != nil {
		return ierr.WithError(err).
			WithMessage("failed to insert cancellation feedback").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *feedbackRepository) ListBySubscription(ctx context.Context, subscriptionID string) ([]*feedback.CancellationFeedback, error) {
	var rows []feedback.CancellationFeedback
	err := r.client.DB.From(string(types.TableNameCancellationFeedback)).
		Select("*").
		Eq("subscription_id", subscriptionID).
		ExecuteWithContext(ctx, &rows)
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("failed to query cancellation feedback").
			Mark(ierr.ErrDatabase)
	}

	result := make([]*feedback.CancellationFeedback, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}
