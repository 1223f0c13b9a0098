package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resumeforge/resumeforge/internal/logger"
	"github.com/resumeforge/resumeforge/internal/service"
)

// SubscriptionHandler handles subscription read requests
type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	log                 *logger.Logger
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(
	subscriptionService service.SubscriptionService,
	log *logger.Logger,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		log:                 log,
	}
}

// GetSubscription returns the authenticated user's subscription.
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	response, err := h.subscriptionService.GetCurrentSubscription(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
