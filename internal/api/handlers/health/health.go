package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"cooking-buddy/internal/core/ai/queue"
	"cooking-buddy/internal/infrastructure/config"
	"cooking-buddy/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// context 鍵，由路由的注入中間件設定
const (
	ConfigKey   = "config"
	QueueKey    = "queue"
	SessionsKey = "session_service"
	BackendKey  = "transcribe_backend"
)

const readinessTimeout = 2 * time.Second

// QueueReporter 回報隊列狀態
type QueueReporter interface {
	GetQueueStatus() *queue.Status
}

// Pinger 可檢查連線的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Version    string                 `json:"version"`
	Model      string                 `json:"model,omitempty"`
	Transcribe string                 `json:"transcribe_backend,omitempty"`
	Dietary    string                 `json:"dietary_mode,omitempty"`
	Runtime    map[string]interface{} `json:"runtime"`
	Queue      *queue.Status          `json:"queue,omitempty"`
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	// 獲取配置
	v, exists := c.Get(ConfigKey)
	cfg, ok := v.(*config.Config)
	if !exists || !ok {
		common.LogError("Configuration not found in context")
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrCodeInternalError,
			Message: "Configuration not found",
		})
		return
	}

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now(),
		Version:    cfg.App.Version,
		Model:      cfg.LLM.Model,
		Transcribe: c.GetString(BackendKey),
		Dietary:    cfg.Dietary.Mode,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if q, ok := c.Value(QueueKey).(QueueReporter); ok {
		response.Queue = q.GetQueueStatus()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：會話儲存必須可用
func ReadinessCheck(c *gin.Context) {
	p, ok := c.Value(SessionsKey).(Pinger)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		common.LogWarn("Session store not ready", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
