package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	v1 "github.com/resumeforge/resumeforge/internal/api/v1"
	"github.com/resumeforge/resumeforge/internal/cache"
	"github.com/resumeforge/resumeforge/internal/config"
	domainAuth "github.com/resumeforge/resumeforge/internal/domain/auth"
	"github.com/resumeforge/resumeforge/internal/domain/subscription"
	billing "github.com/resumeforge/resumeforge/internal/integration/stripe"
	"github.com/resumeforge/resumeforge/internal/logger"
	"github.com/resumeforge/resumeforge/internal/service"
	"github.com/resumeforge/resumeforge/internal/testutil"
	"github.com/resumeforge/resumeforge/internal/types"
	"github.com/resumeforge/resumeforge/internal/webhook"
)

type RouterTestSuite struct {
	suite.Suite
	cfg           *config.Configuration
	subStore      *testutil.InMemorySubscriptionStore
	feedbackStore *testutil.InMemoryFeedbackStore
	billing       *testutil.StubBillingClient
	authProvider  *testutil.StubAuthProvider
	router        *gin.Engine
	createdAt     time.Time
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupTest() {
	s.cfg = config.GetDefaultConfig()
	s.cfg.RateLimit.Enabled = false
	log := logger.GetLogger()

	s.subStore = testutil.NewInMemorySubscriptionStore()
	s.feedbackStore = testutil.NewInMemoryFeedbackStore()
	s.billing = testutil.NewStubBillingClient()
	s.authProvider = testutil.NewStubAuthProvider()
	s.authProvider.Users["good-token"] = &domainAuth.User{
		ID:    "user_test_123",
		Email: "user@example.com",
	}

	s.createdAt = time.Now().UTC().Add(-48 * time.Hour)
	s.subStore.Add(&subscription.Subscription{
		ID:                   "sub_local_test_123",
		UserID:               "user_test_123",
		StripeCustomerID:     "cus_test_123",
		StripeSubscriptionID: "sub_generated_abc",
		Status:               types.SubscriptionStatusActive,
		Version:              1,
		CreatedAt:            s.createdAt,
		UpdatedAt:            s.createdAt,
	})

	params := service.ServiceParams{
		Logger:        log,
		Config:        s.cfg,
		SubRepo:       s.subStore,
		FeedbackRepo:  s.feedbackStore,
		BillingClient: s.billing,
		EmailSender:   testutil.NewStubEmailSender(),
	}

	handlers := NewHandlers(
		v1.NewCancellationHandler(service.NewCancellationService(params), log),
		v1.NewSubscriptionHandler(service.NewSubscriptionService(params), log),
		webhook.NewStripeHandler(s.cfg, log, s.subStore),
	)
	s.router = NewRouter(s.cfg, log, s.authProvider, cache.NewInMemoryCache(), handlers)
}

func (s *RouterTestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(types.HeaderAuthorization, "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterTestSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (s *RouterTestSuite) TestPreflight() {
	w := s.do(http.MethodOptions, "/cancel-subscription", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
	s.Equal("Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	s.Equal("POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}

func (s *RouterTestSuite) TestMissingAuthHeader() {
	w := s.do(http.MethodPost, "/cancel-subscription", "", map[string]any{
		"subscriptionId": "sub_local_test_123",
	})
	s.Equal(http.StatusUnauthorized, w.Code)

	// The gate fires before any collaborator is touched.
	s.Zero(s.subStore.GetCalls)
	s.Zero(s.billing.ListCalls)
	s.Zero(s.billing.CancelCalls)
	s.Zero(s.feedbackStore.CreateCalls)
}

func (s *RouterTestSuite) TestInvalidToken() {
	w := s.do(http.MethodPost, "/cancel-subscription", "bogus-token", map[string]any{
		"subscriptionId": "sub_local_test_123",
	})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Zero(s.subStore.GetCalls)
	s.Zero(s.billing.CancelCalls)
}

func (s *RouterTestSuite) TestMissingSubscriptionID() {
	w := s.do(http.MethodPost, "/cancel-subscription", "good-token", map[string]any{})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Zero(s.billing.CancelCalls)
}

func (s *RouterTestSuite) TestUnknownSubscription() {
	w := s.do(http.MethodPost, "/cancel-subscription", "good-token", map[string]any{
		"subscriptionId": "sub_local_missing",
	})
	s.Equal(http.StatusNotFound, w.Code)
	s.Zero(s.billing.CancelCalls)
}

func (s *RouterTestSuite) TestSuccessfulCancellation() {
	end := time.Now().UTC().Add(20 * 24 * time.Hour)
	s.billing.Subscriptions = []*billing.ProviderSubscription{
		{
			ID:               "sub_real_456",
			Status:           "active",
			Created:          s.createdAt.Add(2 * time.Hour),
			CurrentPeriodEnd: &end,
		},
	}

	w := s.do(http.MethodPost, "/cancel-subscription", "good-token", map[string]any{
		"subscriptionId": "sub_local_test_123",
		"feedback":       map[string]any{"reason": "too expensive"},
	})
	s.Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	s.Equal(true, body["success"])
	s.Equal("sub_real_456", body["realSubscriptionId"])
	s.NotEmpty(body["message"])

	sub, ok := body["subscription"].(map[string]any)
	s.Require().True(ok)
	s.Equal("canceled", sub["status"])

	rows, err := s.feedbackStore.ListBySubscription(context.Background(), "sub_local_test_123")
	s.NoError(err)
	s.Len(rows, 1)
}

func (s *RouterTestSuite) TestProviderFailureReturns500() {
	stored, err := s.subStore.Get(context.Background(), "sub_local_test_123")
	s.Require().NoError(err)
	s.Require().NoError(s.subStore.UpdateProviderID(context.Background(), stored.ID, "sub_real_789"))

	s.billing.CancelErr = billing.NewProviderError(billing.ErrorKindUnavailable, errors.New("gateway timeout"))

	w := s.do(http.MethodPost, "/cancel-subscription", "good-token", map[string]any{
		"subscriptionId": "sub_local_test_123",
	})
	s.Equal(http.StatusInternalServerError, w.Code)

	body := s.decode(w)
	s.Equal(false, body["success"])
	s.NotEmpty(body["message"])
	s.NotEmpty(body["details"])

	after, err := s.subStore.Get(context.Background(), "sub_local_test_123")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, after.Status)
}

func (s *RouterTestSuite) TestGetSubscription() {
	w := s.do(http.MethodGet, "/subscription", "good-token", nil)
	s.Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	s.Equal("sub_local_test_123", body["id"])
	s.Equal("active", body["status"])
}
