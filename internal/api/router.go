// internal/api/router.go
package api

import (
	"fmt"
	"net/http"

	"github.com/Corphon/PromptForge/internal/config"
	"github.com/Corphon/PromptForge/internal/di"
	"github.com/Corphon/PromptForge/internal/services"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置HTTP路由
func SetupRouter() (*gin.Engine, error) {
	// 获取配置
	cfg := config.GetCurrentConfig()

	// 获取依赖注入容器
	container := di.GetContainer()

	// ✅ 只从容器获取服务，不再创建新实例
	wizardService, ok := container.Get("wizard").(*services.WizardService)
	if !ok {
		return nil, fmt.Errorf("向导服务未正确初始化")
	}

	generatorService, ok := container.Get("generator").(*services.GeneratorService)
	if !ok {
		return nil, fmt.Errorf("生成服务未正确初始化")
	}

	scoreService, ok := container.Get("score").(*services.ScoreService)
	if !ok {
		return nil, fmt.Errorf("评分服务未正确初始化")
	}

	promptService, ok := container.Get("prompt").(*services.PromptService)
	if !ok {
		return nil, fmt.Errorf("提示词服务未正确初始化")
	}

	userService, ok := container.Get("user").(*services.UserService)
	if !ok {
		return nil, fmt.Errorf("用户服务未正确初始化")
	}

	statsService, ok := container.Get("stats").(*services.StatsService)
	if !ok {
		return nil, fmt.Errorf("统计服务未正确初始化")
	}

	// ✅ 创建API处理器 - 只传递从容器获取的服务
	handler := NewHandler(
		wizardService,
		generatorService,
		scoreService,
		promptService,
		userService,
		statsService,
	)

	// 创建路由
	r := gin.Default()

	// 启用CORS
	r.Use(corsMiddleware())

	// 请求ID用于响应追踪
	r.Use(RequestIDMiddleware())

	// HTTPS重定向（生产环境）
	if !cfg.DebugMode {
		r.Use(func(c *gin.Context) {
			if c.Request.Header.Get("X-Forwarded-Proto") != "https" {
				c.Redirect(http.StatusPermanentRedirect,
					"https://"+c.Request.Host+c.Request.URL.Path)
				return
			}
			c.Next()
		})
	}

	// 认证中间件（识别用户，未认证则降级为访客）
	r.Use(AuthMiddleware())

	// WebSocket 支持
	r.GET("/ws/wizard/:session_id", handler.WizardWebSocket)

	// ===============================
	// API路由组
	// ===============================
	api := r.Group("/api")
	{
		// 健康检查
		api.GET("/health", handler.HealthCheck)

		// ===============================
		// 认证相关路由
		// ===============================
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", handler.Login)
			authGroup.POST("/logout", handler.Logout)
			authGroup.GET("/me", handler.GetCurrentUser)
		}

		// ===============================
		// 向导会话相关路由（访客可用）
		// ===============================
		wizardGroup := api.Group("/wizard")
		{
			wizardGroup.GET("/sections", handler.GetWizardSections)

			sessionsGroup := wizardGroup.Group("/sessions")
			{
				sessionsGroup.POST("", handler.CreateWizardSession)
				sessionsGroup.GET("/:session_id", handler.GetWizardSession)
				sessionsGroup.PUT("/:session_id", handler.LoadWizardForm)
				sessionsGroup.PUT("/:session_id/fields", handler.UpdateWizardField)
				sessionsGroup.PUT("/:session_id/section", handler.SetWizardSection)
				sessionsGroup.POST("/:session_id/reset", handler.ResetWizardForm)
				sessionsGroup.GET("/:session_id/master-prompt", handler.GetMasterPrompt)
			}
		}

		// ===============================
		// 提示词存储路由（需要认证）
		// ===============================
		promptsGroup := api.Group("/prompts")
		promptsGroup.Use(RequireAuth())
		{
			promptsGroup.POST("", handler.CreatePrompt)
			promptsGroup.GET("", handler.GetRecentPrompts)
		}

		// ===============================
		// 评分路由（需要认证，限流）
		// ===============================
		api.POST("/score", RequireAuth(), ScoreRateLimit(), handler.ScorePrompt)

		// ===============================
		// 统计路由
		// ===============================
		api.GET("/stats", handler.GetStats)

		// WebSocket 管理路由
		wsGroup := api.Group("/ws")
		{
			wsGroup.GET("/status", handler.GetWebSocketStatus)
			wsGroup.POST("/cleanup", handler.CleanupWebSocketConnections)
		}
	}

	return r, nil
}

// corsMiddleware 实现跨域资源共享
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
