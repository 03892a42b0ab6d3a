// Package providertest 提供測試用的記憶體內 provider.Provider
package providertest

import (
	"context"
	"sync"
	"time"

	"cooking-buddy/internal/core/ai/provider"
)

// Fake 以 Respond 回覆並記錄收到的每個請求
type Fake struct {
	Model   string
	Respond func(req *provider.Request) (string, error)

	mu       sync.Mutex
	requests []*provider.Request
}

// Generate 實作 provider.Provider
func (f *Fake) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := f.Respond(req)
	if err != nil {
		return nil, err
	}
	return &provider.Response{Content: content}, nil
}

// GetModel 實作 provider.Provider
func (f *Fake) GetModel() string {
	if f.Model == "" {
		return "fake-model"
	}
	return f.Model
}

// GetTimeout 實作 provider.Provider
func (f *Fake) GetTimeout() time.Duration { return time.Second }

// Close 實作 provider.Provider
func (f *Fake) Close() error { return nil }

// Requests 回傳已記錄請求的副本
func (f *Fake) Requests() []*provider.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*provider.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// SystemPrompt 取得 req 的系統訊息，沒有則回傳空字串
func SystemPrompt(req *provider.Request) string {
	for _, m := range req.Messages {
		if m.Role == provider.RoleSystem {
			return m.Content
		}
	}
	return ""
}

// UserPrompt 取得 req 最後一則使用者訊息
func UserPrompt(req *provider.Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == provider.RoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}
