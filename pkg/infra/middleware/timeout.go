package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout returns a middleware that attaches a deadline to the request context.
// Handlers doing long work (LLM generation, vector search) are expected to
// respect the context and abort when the deadline passes.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return TimeoutWithSkipPaths(timeout, nil)
}

// TimeoutWithSkipPaths returns a Timeout middleware that skips the given paths.
// 流式或长轮询端点建议跳过。
func TimeoutWithSkipPaths(timeout time.Duration, skipPaths []string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
