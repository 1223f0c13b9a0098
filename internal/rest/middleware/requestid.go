package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/resumeforge/resumeforge/internal/types"
)

// RequestIDMiddleware attaches a request id to the context and echoes it in
// the response. An inbound X-Request-ID is honored for cross-service tracing.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx := types.SetRequestID(c.Request.Context(), requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Writer.Header().Set(types.HeaderRequestID, requestID)

	c.Next()
}
