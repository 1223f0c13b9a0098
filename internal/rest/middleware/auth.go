package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/resumeforge/resumeforge/internal/auth"
	"github.com/resumeforge/resumeforge/internal/cache"
	"github.com/resumeforge/resumeforge/internal/config"
	domainAuth "github.com/resumeforge/resumeforge/internal/domain/auth"
	ierr "github.com/resumeforge/resumeforge/internal/errors"
	"github.com/resumeforge/resumeforge/internal/logger"
	"github.com/resumeforge/resumeforge/internal/types"
)

const tokenCachePrefix = "auth:token:"

// AuthenticateMiddleware resolves the bearer token to a user via the auth
// provider and injects the identity into the request context. Validated
// tokens are cached for a short TTL to keep the provider off the hot path.
func AuthenticateMiddleware(
	provider auth.Provider,
	tokenCache cache.Cache,
	cfg *config.Configuration,
	log *logger.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(types.HeaderAuthorization)
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		ctx := c.Request.Context()

		var user *domainAuth.User
		if cached, ok := tokenCache.Get(ctx, tokenCachePrefix+token); ok {
			user, _ = cached.(*domainAuth.User)
		}
		if user == nil {
			resolved, err := provider.GetUser(ctx, token)
			if err != nil {
				log.WithContext(ctx).Warnw("token rejected by auth provider",
					"error", err,
				)
				abortUnauthorized(c, "invalid or expired token")
				return
			}
			user = resolved
			tokenCache.Set(ctx, tokenCachePrefix+token, user, cfg.Cache.TokenTTL)
		}

		ctx = types.SetUserID(ctx, user.ID)
		ctx = types.SetUserEmail(ctx, user.Email)
		c.Request = c.Request.WithContext(ctx)
		c.Set("user_id", user.ID)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Error(ierr.NewError(msg).
		WithHint("Provide a valid Authorization: Bearer token").
		Mark(ierr.ErrPermissionDenied))
	c.Abort()
}
