package service

import (
	"github.com/resumeforge/resumeforge/internal/config"
	"github.com/resumeforge/resumeforge/internal/domain/feedback"
	"github.com/resumeforge/resumeforge/internal/domain/subscription"
	"github.com/resumeforge/resumeforge/internal/email"
	billing "github.com/resumeforge/resumeforge/internal/integration/stripe"
	"github.com/resumeforge/resumeforge/internal/logger"
)

// ServiceParams bundles the dependencies shared by services.
type ServiceParams struct {
	Logger        *logger.Logger
	Config        *config.Configuration
	SubRepo       subscription.Repository
	FeedbackRepo  feedback.Repository
	BillingClient billing.Client
	EmailSender   email.Sender
}

// NewServiceParams builds the shared dependency bundle (for fx registration).
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	subRepo subscription.Repository,
	feedbackRepo feedback.Repository,
	billingClient billing.Client,
	emailService *email.Service,
) ServiceParams {
	return ServiceParams{
		Logger:        logger,
		Config:        config,
		SubRepo:       subRepo,
		FeedbackRepo:  feedbackRepo,
		BillingClient: billingClient,
		EmailSender:   emailService,
	}
}
