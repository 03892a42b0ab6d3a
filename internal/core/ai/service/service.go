package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cooking-buddy/internal/core/ai/cache"
	"cooking-buddy/internal/core/ai/provider"
	"cooking-buddy/internal/pkg/common"

	"go.uber.org/zap"
)

// Call 一次階段呼叫：固定指令模板 + 使用者內容 + 溫度
type Call struct {
	Stage       string
	Messages    []provider.Message
	Temperature float64
	// Cacheable 只有低隨機性的階段才值得快取
	Cacheable bool
}

// Response AI 回應結構
type Response struct {
	Content  string
	CacheHit bool
	Duration time.Duration
}

// Service AI 服務
type Service struct {
	provider     provider.Provider
	cacheManager *cache.CacheManager
}

// NewService 創建 AI 服務，cacheManager 可為 nil
func NewService(p provider.Provider, cacheManager *cache.CacheManager) *Service {
	return &Service{
		provider:     p,
		cacheManager: cacheManager,
	}
}

// ProcessRequest 統一對外方法：送出一次補全並回傳單一文字回覆
func (s *Service) ProcessRequest(ctx context.Context, call Call) (*Response, error) {
	req := &provider.Request{
		Model:       s.provider.GetModel(),
		Messages:    call.Messages,
		Temperature: call.Temperature,
	}

	if call.Cacheable && s.cacheManager != nil {
		if val, err := s.cacheManager.Get(ctx, req); err == nil && val != "" {
			return &Response{Content: val, CacheHit: true}, nil
		}
	}

	start := time.Now()
	resp, err := s.provider.Generate(ctx, req)
	duration := time.Since(start)
	common.LogAICall(call.Stage, duration, err, common.RequestIDFrom(ctx))
	if err != nil {
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("stage %s: %w", call.Stage, err))
	}

	content := strings.TrimSpace(resp.Content)

	if call.Cacheable && s.cacheManager != nil {
		if err := s.cacheManager.Set(ctx, req, content); err != nil {
			common.LogWarn("快取寫入失敗", zap.String("stage", call.Stage), zap.Error(err))
		}
	}

	return &Response{Content: content, Duration: duration}, nil
}

// Model 目前使用的模型
func (s *Service) Model() string {
	return s.provider.GetModel()
}

// Close 關閉底層提供者
func (s *Service) Close() error {
	return s.provider.Close()
}
