package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader carries the caller-supplied request identifier.
	CorrelationIDHeader = "X-Correlation-ID"

	// CorrelationIDKey stores the identifier in the gin context so the
	// request logger and the response envelope can echo it back.
	CorrelationIDKey = "correlation_id"
)

// CorrelationID tags every request with an identifier that ties the access
// log line, the response envelope, and any ledger log entries for the same
// request together. A caller-supplied header is honored; otherwise a fresh
// UUID is assigned.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Header(CorrelationIDHeader, id)
		c.Set(CorrelationIDKey, id)

		c.Next()
	}
}

// GetCorrelationID returns the request's correlation ID, or an empty string
// outside a request handled by the CorrelationID middleware.
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(CorrelationIDKey)
}
