package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id across service boundaries.
const RequestIDHeader = "X-Request-ID"

// RequestIDContextKey locates the request id in the gin context.
const RequestIDContextKey = "request_id"

// RequestID tags every request with a correlation id, generating one when
// the caller did not supply it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDContextKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}
