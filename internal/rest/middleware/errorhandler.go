package middleware

import (
	"github.com/gin-gonic/gin"

	ierr "github.com/resumeforge/resumeforge/internal/errors"
	"github.com/resumeforge/resumeforge/internal/logger"
)

// ErrorHandlerMiddleware renders errors collected via c.Error as the JSON
// error body, mapped to a status code by the error's mark. Handlers that
// already wrote a response are left alone.
func ErrorHandlerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := ierr.HTTPStatusFromErr(err)

		if status >= 500 {
			log.WithContext(c.Request.Context()).Errorw("request failed",
				"error", err,
				"path", c.Request.URL.Path,
			)
		}

		c.JSON(status, ierr.NewErrorResponse(err))
	}
}
