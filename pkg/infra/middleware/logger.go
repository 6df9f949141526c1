package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
)

// fieldsPool is a sync.Pool for reusing fields slices to reduce heap allocations.
var fieldsPool = sync.Pool{
	New: func() interface{} {
		s := make([]interface{}, 0, 16)
		return &s
	},
}

// Logger returns a middleware that logs HTTP requests with structured fields.
func Logger() gin.HandlerFunc {
	return LoggerWithSkipPaths(nil)
}

// LoggerWithSkipPaths returns a Logger middleware that skips the given paths.
// 健康检查等高频端点建议跳过。
func LoggerWithSkipPaths(skipPaths []string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = true
	}

	return func(c *gin.Context) {
		req := c.Request
		path := req.URL.Path

		if skip[path] {
			c.Next()
			return
		}

		start := time.Now()
		requestID := c.GetString(ContextKeyRequestID)

		c.Next()

		latency := time.Since(start)

		fields := fieldsPool.Get().(*[]interface{})
		defer func() {
			*fields = (*fields)[:0]
			fieldsPool.Put(fields)
		}()

		*fields = append(*fields,
			"method", req.Method,
			"path", path,
			"status", c.Writer.Status(),
			"remote_addr", req.RemoteAddr,
			"latency", latency.String(),
			"latency_ms", latency.Milliseconds(),
		)
		if requestID != "" {
			*fields = append(*fields, "request_id", requestID)
		}
		if len(c.Errors) > 0 {
			*fields = append(*fields, "errors", c.Errors.String())
		}

		logger.Infow("HTTP Request", (*fields)...)
	}
}
