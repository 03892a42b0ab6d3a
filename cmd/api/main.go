package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cooking-buddy/internal/api"
	"cooking-buddy/internal/core/ai/cache"
	"cooking-buddy/internal/core/ai/completion"
	"cooking-buddy/internal/core/ai/queue"
	"cooking-buddy/internal/core/ai/service"
	"cooking-buddy/internal/core/dietary"
	"cooking-buddy/internal/core/document"
	"cooking-buddy/internal/core/recipe"
	"cooking-buddy/internal/core/session"
	"cooking-buddy/internal/core/transcribe"
	"cooking-buddy/internal/infrastructure/config"
	"cooking-buddy/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（包含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("llm_api_key", config.MaskAPIKey(cfg.LLM.APIKey)),
		zap.String("llm_model", cfg.LLM.Model),
		zap.String("transcribe_backend", cfg.Transcribe.Backend),
		zap.String("dietary_mode", cfg.Dietary.Mode),
	)
	if cfg.LLM.APIKey == "" {
		common.LogWarn("未設定 GROQ_API_KEY，補全請求將會失敗")
	}

	// 初始化快取，關閉時為 nil
	cacheManager := cache.NewManager(&cfg.Cache)
	defer cacheManager.Close()

	// 補全客戶端與 AI 服務
	client := completion.NewClient(&cfg.LLM)
	aiService := service.NewService(client, cacheManager)
	defer aiService.Close()

	recipeService := recipe.NewService(aiService, dietary.Mode(cfg.Dietary.Mode))

	// 轉錄：後端加上有界的工作隊列
	backend, err := transcribe.New(&cfg.Transcribe)
	if err != nil {
		common.LogFatal("Failed to initialize transcriber", zap.Error(err))
	}
	if w, ok := backend.(*transcribe.WhisperTranscriber); ok {
		if err := w.Available(); err != nil {
			common.LogWarn("whisper 不可用，語音輸入將會失敗", zap.Error(err))
		}
	}
	queueManager := queue.NewManager(&cfg.Queue)
	defer queueManager.Close()
	transcribeService := transcribe.NewService(backend, queueManager, cfg.Audio.MaxSizeBytes)

	// 會話
	store, err := session.NewStore(&cfg.Session)
	if err != nil {
		common.LogFatal("Failed to initialize session store", zap.Error(err))
	}
	defer store.Close()
	sessionService := session.NewService(store, recipeService, transcribeService)

	renderer := document.NewRenderer(&cfg.Document)

	// 設置路由
	router := api.SetupRouter(cfg, &api.Services{
		Recipes:     recipeService,
		Sessions:    sessionService,
		Transcriber: transcribeService,
		Queue:       queueManager,
		Renderer:    renderer,
	})

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
