package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bravo68web/scribe/pkg/logger"
)

// RequestIDHeader carries the request ID back to the caller
const RequestIDHeader = "X-Request-ID"

// LoggerMiddleware returns a Gin middleware for logging HTTP requests.
// Health checks are skipped.
func LoggerMiddleware() gin.HandlerFunc {
	skipPaths := map[string]struct{}{
		"/health": {},
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skipPaths[path]; ok {
			c.Next()
			return
		}

		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		c.Set("request_id", requestID)

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := []logger.Field{
			logger.RequestID(requestID),
			logger.Method(c.Request.Method),
			logger.Path(path),
			logger.StatusCode(statusCode),
			logger.Latency(latency),
			logger.ClientIP(c.ClientIP()),
		}

		if user := GetUserFromContext(c); user != nil {
			fields = append(fields, logger.Username(user.Username))
		}

		if len(c.Errors) > 0 {
			errors := make([]string, len(c.Errors))
			for i, e := range c.Errors {
				errors[i] = e.Error()
			}
			fields = append(fields, logger.Strings("errors", errors))
		}

		msg := "HTTP Request"
		switch {
		case statusCode >= 500:
			logger.Get().Error(msg, fields...)
		case statusCode >= 400:
			logger.Get().Warn(msg, fields...)
		default:
			logger.Get().Info(msg, fields...)
		}
	}
}

// GetRequestID retrieves the request ID from the gin context
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get("request_id"); exists {
		if reqID, ok := id.(string); ok {
			return reqID
		}
	}
	return ""
}
