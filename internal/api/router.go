package api

import (
	"context"
	"net/http"
	"time"

	"cooking-buddy/internal/api/handlers"
	"cooking-buddy/internal/api/handlers/health"
	recipeHandler "cooking-buddy/internal/api/handlers/recipe"
	sessionHandler "cooking-buddy/internal/api/handlers/session"
	"cooking-buddy/internal/api/middleware"
	"cooking-buddy/internal/core/ai/queue"
	sessionService "cooking-buddy/internal/core/session"
	"cooking-buddy/internal/infrastructure/config"
	"cooking-buddy/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 音訊以外的請求體額外保留的空間 (1MB)
const bodyOverhead = 1 << 20

// Transcriber 可回報後端名稱的轉錄服務
type Transcriber interface {
	handlers.Transcriber
	Backend() string
}

// Services 路由所需的服務
type Services struct {
	Recipes     recipeHandler.Pipeline
	Sessions    *sessionService.Service
	Transcriber Transcriber
	Queue       *queue.Manager
	Renderer    handlers.DocumentRenderer
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc *Services) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.RequestContext())
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制：最大音訊加上表單開銷
	maxBodySize := cfg.Audio.MaxSizeBytes + bodyOverhead
	router.Use(middleware.BodySizeLimit(maxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	timeout := cfg.Server.RequestTimeout

	// 全局中間件：設置超時和服務
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set(health.ConfigKey, cfg)
		if svc.Queue != nil {
			c.Set(health.QueueKey, svc.Queue)
		}
		if svc.Sessions != nil {
			c.Set(health.SessionsKey, svc.Sessions)
		}
		if svc.Transcriber != nil {
			c.Set(health.BackendKey, svc.Transcriber.Backend())
		}

		c.Next()

		// 處理器尚未回應時才補上超時響應
		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
				Code:    common.ErrCodeGatewayTimeout,
				Message: "Request timeout",
				Details: timeout.String(),
			})
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	v1 := router.Group("/api/v1")
	{
		// 無狀態的耗時端點擋下短時間內的重複請求
		dedup := middleware.Deduplication(cfg)

		recipes := recipeHandler.NewHandler(svc.Recipes, svc.Renderer)
		recipeGroup := v1.Group("/recipes", dedup)
		{
			recipeGroup.POST("/generate", recipes.HandleGenerate)
			recipeGroup.POST("/document", recipes.HandleDocument)
		}

		v1.POST("/transcribe", dedup, handlers.NewAIHandler(svc.Transcriber).Transcribe)

		sessionHandler.NewHandler(svc.Sessions, svc.Renderer).Register(v1)
	}

	common.LogInfo("Router setup completed successfully",
		zap.String("dietary_mode", cfg.Dietary.Mode),
		zap.String("session_store", cfg.Session.Store),
		zap.Duration("timeout", timeout),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router
}
