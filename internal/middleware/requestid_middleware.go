package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the header used to propagate the request ID both
// inbound (from a trusted proxy) and outbound (to the client).
const RequestIDHeader = "X-Request-ID"

const requestIDContextKey = "requestID"

// RequestID assigns each request a UUID unless the caller already supplied
// one, stores it in the gin context and echoes it in the response headers.
// It runs first in the chain so the request logger can pick it up.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDContextKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Next()
	}
}

// RequestIDFromContext returns the request ID set by RequestID, or "".
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}
