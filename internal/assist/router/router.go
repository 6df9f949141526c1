// Package router 注册问答服务的 HTTP 路由。
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/camos-io/camos-assist/internal/assist/handler"
	"github.com/camos-io/camos-assist/internal/assist/metrics"
	"github.com/camos-io/camos-assist/pkg/infra/app"
)

// metricsNamespace Prometheus 指标命名空间。
const (
	metricsNamespace = "camos"
	metricsSubsystem = "assist"
)

// Register 注册全部路由。
func Register(engine *gin.Engine, assist *handler.AssistHandler, faqHandler *handler.FAQHandler, authHandler *handler.AuthHandler) {
	logger.Info("注册 HTTP 路由")

	// 运维端点（免认证）
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": app.GetVersion(),
		})
	})
	engine.GET("/metrics", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8",
			[]byte(metrics.Get().Export(metricsNamespace, metricsSubsystem)))
	})

	v1 := engine.Group("/v1")
	{
		// 登录免认证，登出需携带有效令牌
		v1.POST("/auth/login", authHandler.Login)
		v1.POST("/auth/logout", authHandler.Logout)

		assistGroup := v1.Group("/assist")
		{
			assistGroup.POST("/query", assist.Query)
			assistGroup.POST("/debug", assist.Debug)
			assistGroup.POST("/index/directory", assist.IndexDirectory)
			assistGroup.POST("/index/upload", assist.IndexUpload)
			assistGroup.DELETE("/documents/:id", assist.RemoveDocument)
			assistGroup.GET("/stats", assist.Stats)
		}

		faqGroup := v1.Group("/faq")
		{
			faqGroup.GET("", faqHandler.List)
			faqGroup.GET("/search", faqHandler.Search)
			faqGroup.POST("/questions", faqHandler.SubmitQuestion)
			faqGroup.GET("/pending", faqHandler.ListPending)
			faqGroup.POST("/pending/:id/answer", faqHandler.AnswerQuestion)
		}
	}
}

// AuthSkipPaths 免认证路径，供认证中间件使用。
func AuthSkipPaths() []string {
	return []string{
		"/v1/auth/login",
		"/healthz",
		"/metrics",
	}
}
