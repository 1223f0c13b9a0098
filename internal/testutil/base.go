package testutil

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/resumeforge/resumeforge/internal/config"
	"github.com/resumeforge/resumeforge/internal/logger"
	"github.com/resumeforge/resumeforge/internal/types"
)

// BaseServiceTestSuite provides fresh in-memory collaborators per test.
type BaseServiceTestSuite struct {
	suite.Suite

	Config        *config.Configuration
	SubStore      *InMemorySubscriptionStore
	FeedbackStore *InMemoryFeedbackStore
	Billing       *StubBillingClient
	Email         *StubEmailSender
}

func (s *BaseServiceTestSuite) SetupTest() {
	s.Config = config.GetDefaultConfig()
	s.SubStore = NewInMemorySubscriptionStore()
	s.FeedbackStore = NewInMemoryFeedbackStore()
	s.Billing = NewStubBillingClient()
	s.Email = NewStubEmailSender()
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return logger.GetLogger()
}

// AuthenticatedContext returns a context carrying the given identity, the
// way the auth middleware would populate it.
func (s *BaseServiceTestSuite) AuthenticatedContext(userID, email string) context.Context {
	ctx := types.SetUserID(context.Background(), userID)
	return types.SetUserEmail(ctx, email)
}
