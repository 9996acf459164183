package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/scribe/pkg/logger"
)

const stackTraceSize = 4096

// RecoveryMiddleware returns a Gin middleware for panic recovery with
// logging
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()
				if len(stack) > stackTraceSize {
					stack = stack[:stackTraceSize]
				}

				logger.Get().Error("Panic recovered",
					logger.Any("panic", err),
					logger.Method(c.Request.Method),
					logger.Path(c.Request.URL.Path),
					logger.ClientIP(c.ClientIP()),
					logger.RequestID(GetRequestID(c)),
					logger.ByteString("stacktrace", stack),
				)

				if c.IsAborted() {
					return
				}

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "internal_server_error",
					"message":    "An unexpected error occurred",
					"request_id": GetRequestID(c),
				})
			}
		}()

		c.Next()
	}
}
