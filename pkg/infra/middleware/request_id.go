// Package middleware provides gin middleware for the HTTP server.
package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderXRequestID is the header name for request ID.
const HeaderXRequestID = "X-Request-ID"

// ContextKeyRequestID is the gin context key for request ID.
const ContextKeyRequestID = "request_id"

// requestIDKey is the context key type for request ID.
type requestIDKey struct{}

// GetRequestID returns the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// requestIDCounter is the atomic counter for fallback request ID generation.
var requestIDCounter uint64

// GenerateRequestID generates a random request ID using cryptographic random bytes.
// If random generation fails, it falls back to a deterministic ID.
func GenerateRequestID() string {
	b := make([]byte, 16)
	n, err := rand.Read(b)
	if err != nil || n != 16 {
		timestamp := time.Now().Unix()
		counter := atomic.AddUint64(&requestIDCounter, 1)
		return fmt.Sprintf("%x-%x", timestamp, counter)
	}
	return hex.EncodeToString(b)
}

// RequestID returns a middleware that adds a unique request ID to each request.
// The request ID is added to:
//   - Response header (X-Request-ID)
//   - Request context (can be retrieved with GetRequestID)
//   - Gin context under the "request_id" key
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Honor an incoming request ID if the client provided one
		requestID := c.GetHeader(HeaderXRequestID)
		if requestID == "" {
			requestID = GenerateRequestID()
		}

		c.Header(HeaderXRequestID, requestID)
		c.Set(ContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}
