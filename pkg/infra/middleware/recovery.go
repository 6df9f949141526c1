package middleware

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/camos-io/camos-assist/pkg/utils/errors"
	"github.com/camos-io/camos-assist/pkg/utils/response"
)

// PanicHandler 定义 panic 处理器类型。
// 参数：
//   - ctx: 请求上下文
//   - err: panic 值
//   - stack: 堆栈跟踪信息
type PanicHandler func(ctx *gin.Context, err interface{}, stack []byte)

// Recovery returns a middleware that recovers from panics.
func Recovery() gin.HandlerFunc {
	return RecoveryWithHandler(nil)
}

// RecoveryWithHandler 返回一个带自定义 panic 处理器的 Recovery 中间件。
//
// 参数：
//   - onPanic: 可选的 panic 处理器，用于自定义日志或告警逻辑
//     如果为 nil，则仅记录日志和返回错误响应
func RecoveryWithHandler(onPanic PanicHandler) gin.HandlerFunc {
	// 生产环境不向客户端返回堆栈
	includeStack := !isProductionEnvironment()

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()

				// Always log full stack trace to logs
				logger.Errorw("panic recovered",
					"panic", r,
					"stack_trace", string(stack),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				if onPanic != nil {
					onPanic(c, r, stack)
				}

				err := errors.ErrPanic.WithMessage(fmt.Sprintf("panic: %v", r))
				if includeStack {
					err = errors.ErrPanic.WithMessage(fmt.Sprintf("panic: %v\n%s", r, string(stack)))
				}

				response.Fail(c, err)
				c.Abort()
			}
		}()
		c.Next()
	}
}

// isProductionEnvironment checks if the application is running in production.
// It checks APP_ENV or GO_ENV environment variables.
func isProductionEnvironment() bool {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("GO_ENV")
	}

	switch env {
	case "production", "prod", "PRODUCTION", "PROD":
		return true
	default:
		return false
	}
}
