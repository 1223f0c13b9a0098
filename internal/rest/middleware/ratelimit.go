package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/resumeforge/resumeforge/internal/config"
	ierr "github.com/resumeforge/resumeforge/internal/errors"
)

// RateLimitMiddleware applies a per-client-IP token bucket. Cancellation is
// a human-paced action; anything faster than the configured rate is noise
// or abuse.
func RateLimitMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.RateLimit.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := limiters[ip]; ok {
			return l
		}
		l := rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		limiters[ip] = l
		return l
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				ierr.NewErrorResponse(ierr.NewError("too many requests").
					WithHint("Slow down and try again shortly").
					Mark(ierr.ErrValidation)))
			return
		}
		c.Next()
	}
}
