package main

import (
	"context"
	"net/http"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	v1 "github.com/resumeforge/resumeforge/internal/api/v1"
	"github.com/resumeforge/resumeforge/internal/auth"
	"github.com/resumeforge/resumeforge/internal/cache"
	"github.com/resumeforge/resumeforge/internal/config"
	"github.com/resumeforge/resumeforge/internal/email"
	billing "github.com/resumeforge/resumeforge/internal/integration/stripe"
	"github.com/resumeforge/resumeforge/internal/logger"
	supabase "github.com/resumeforge/resumeforge/internal/repository/supabase"
	"github.com/resumeforge/resumeforge/internal/rest"
	"github.com/resumeforge/resumeforge/internal/service"
	"github.com/resumeforge/resumeforge/internal/webhook"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			cache.NewInMemoryCache,
			supabase.NewClient,
			supabase.NewSubscriptionRepository,
			supabase.NewFeedbackRepository,
			auth.NewProvider,
			billing.NewClient,
			email.NewEmailClient,
			email.NewService,
			service.NewServiceParams,
			service.NewCancellationService,
			service.NewSubscriptionService,
			v1.NewCancellationHandler,
			v1.NewSubscriptionHandler,
			webhook.NewStripeHandler,
			rest.NewHandlers,
			rest.NewRouter,
		),
		fx.Invoke(
			initSentry,
			startServer,
		),
	)

	app.Run()
}

func initSentry(cfg *config.Configuration, log *logger.Logger) {
	if !cfg.Sentry.Enabled {
		return
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		TracesSampleRate: cfg.Sentry.SampleRate,
	})
	if err != nil {
		log.Errorw("failed to initialize sentry", "error", err)
		return
	}
	log.Infow("sentry initialized", "environment", cfg.Sentry.Environment)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	router *gin.Engine,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infof("starting server on %s", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			sentry.Flush(2 * time.Second)
			return srv.Shutdown(ctx)
		},
	})
}
