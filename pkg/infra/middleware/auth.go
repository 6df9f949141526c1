package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/camos-io/camos-assist/pkg/security/auth"
	"github.com/camos-io/camos-assist/pkg/utils/errors"
	"github.com/camos-io/camos-assist/pkg/utils/response"
)

// AuthConfig defines the config for the Auth middleware.
type AuthConfig struct {
	// Authenticator 身份验证器（运行时依赖，不能从配置文件加载）
	Authenticator auth.Authenticator

	// AuthScheme is the Authorization header scheme. Default: "Bearer"
	AuthScheme string

	// SkipPaths is a list of exact paths that bypass authentication.
	SkipPaths []string

	// SkipPathPrefixes is a list of path prefixes that bypass authentication.
	SkipPathPrefixes []string
}

// Auth returns a JWT authentication middleware.
// Verified claims are injected into the request context and can be
// retrieved with auth.ClaimsFromContext.
func Auth(config AuthConfig) gin.HandlerFunc {
	if config.AuthScheme == "" {
		config.AuthScheme = "Bearer"
	}

	skip := make(map[string]bool, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skip[path] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skip[path] {
			c.Next()
			return
		}
		for _, prefix := range config.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		if config.Authenticator == nil {
			response.Fail(c, errors.ErrInternal.WithMessage("authenticator not configured"))
			c.Abort()
			return
		}

		tokenString := extractToken(c, config.AuthScheme)
		if tokenString == "" {
			response.Fail(c, errors.ErrUnauthorized.WithMessage("missing authentication token"))
			c.Abort()
			return
		}

		claims, err := config.Authenticator.Verify(c.Request.Context(), tokenString)
		if err != nil {
			response.FailWithError(c, err)
			c.Abort()
			return
		}

		// Inject claims into context
		newCtx := auth.InjectAuth(c.Request.Context(), claims, tokenString)
		c.Request = c.Request.WithContext(newCtx)

		c.Next()
	}
}

// extractToken extracts the bearer token from the Authorization header.
func extractToken(c *gin.Context, scheme string) string {
	token := c.GetHeader("Authorization")
	if scheme != "" && strings.HasPrefix(token, scheme+" ") {
		return strings.TrimPrefix(token, scheme+" ")
	}
	if scheme != "" && token != "" {
		// Header present but scheme mismatch
		return ""
	}
	return token
}
