package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/resumeforge/resumeforge/internal/api/v1"
	"github.com/resumeforge/resumeforge/internal/auth"
	"github.com/resumeforge/resumeforge/internal/cache"
	"github.com/resumeforge/resumeforge/internal/config"
	"github.com/resumeforge/resumeforge/internal/logger"
	"github.com/resumeforge/resumeforge/internal/rest/middleware"
	"github.com/resumeforge/resumeforge/internal/types"
	"github.com/resumeforge/resumeforge/internal/webhook"
)

// Handlers groups the route handlers the router mounts.
type Handlers struct {
	Cancellation *v1.CancellationHandler
	Subscription *v1.SubscriptionHandler
	Webhook      *webhook.StripeHandler
}

func NewHandlers(
	cancellation *v1.CancellationHandler,
	subscription *v1.SubscriptionHandler,
	webhookHandler *webhook.StripeHandler,
) Handlers {
	return Handlers{
		Cancellation: cancellation,
		Subscription: subscription,
		Webhook:      webhookHandler,
	}
}

// NewRouter builds the gin engine with the full middleware chain and routes.
func NewRouter(
	cfg *config.Configuration,
	log *logger.Logger,
	authProvider auth.Provider,
	tokenCache cache.Cache,
	handlers Handlers,
) *gin.Engine {
	if cfg.Logging.Level != types.LogLevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = log.GetGinLogger()

	router := gin.New()

	// Panics degrade to a structured 500 instead of an empty reply.
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.WithContext(c.Request.Context()).Errorw("panic recovered",
			"panic", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprint(recovered),
		})
	}))
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.SentryMiddleware(cfg))
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.ErrorHandlerMiddleware(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Signature-verified, no bearer auth.
	router.POST("/webhooks/stripe", handlers.Webhook.HandleWebhook)

	private := router.Group("")
	private.Use(middleware.AuthenticateMiddleware(authProvider, tokenCache, cfg, log))
	private.Use(middleware.SentryUserContextMiddleware)

	private.GET("/subscription", handlers.Subscription.GetSubscription)
	private.POST("/cancel-subscription",
		middleware.RateLimitMiddleware(cfg),
		handlers.Cancellation.CancelSubscription,
	)

	return router
}
