package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resumeforge/resumeforge/internal/api/dto"
	ierr "github.com/resumeforge/resumeforge/internal/errors"
	"github.com/resumeforge/resumeforge/internal/logger"
	"github.com/resumeforge/resumeforge/internal/service"
)

// CancellationHandler handles subscription cancellation requests
type CancellationHandler struct {
	cancellationService service.CancellationService
	log                 *logger.Logger
}

// NewCancellationHandler creates a new cancellation handler
func NewCancellationHandler(
	cancellationService service.CancellationService,
	log *logger.Logger,
) *CancellationHandler {
	return &CancellationHandler{
		cancellationService: cancellationService,
		log:                 log,
	}
}

// CancelSubscription runs the cancellation flow for the authenticated user.
// A provider-side failure is reported as a 500 with success=false so the
// caller knows billing is still active; everything else that succeeded or
// was already absent at the provider is a 200.
func (h *CancellationHandler) CancelSubscription(c *gin.Context) {
	var req dto.CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request body").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	outcome, err := h.cancellationService.Cancel(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	resp := buildCancelResponse(outcome)
	if outcome.Kind == service.OutcomeProviderFailure {
		c.JSON(http.StatusInternalServerError, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func buildCancelResponse(outcome *service.CancellationOutcome) *dto.CancelSubscriptionResponse {
	resp := &dto.CancelSubscriptionResponse{
		Subscription:       dto.NewSubscriptionResponse(outcome.Subscription),
		RealSubscriptionID: outcome.ResolvedProviderID,
	}

	switch outcome.Kind {
	case service.OutcomeFullSuccess:
		resp.Success = true
		resp.Message = "Your subscription has been canceled and will not renew."
		if outcome.EffectiveEndDate != nil {
			resp.Message = fmt.Sprintf(
				"Your subscription has been canceled. You keep access until %s.",
				outcome.EffectiveEndDate.Format("January 2, 2006"),
			)
		}
	case service.OutcomeAlreadyAbsent:
		resp.Success = true
		resp.Message = "This subscription was already canceled."
	case service.OutcomeProviderFailure:
		resp.Success = false
		resp.Message = "We could not cancel your subscription. You are still being billed; please try again or contact support."
		if outcome.FailureReason != nil {
			resp.Details = outcome.FailureReason.Error()
		}
	}

	if outcome.LocalUpdateFailed {
		resp.Message += " Your account page may briefly show the subscription as active."
	}
	return resp
}
