package session

import (
	"context"
	"fmt"

	"cooking-buddy/internal/infrastructure/config"
)

// Store 會話儲存；實作需可被多個 goroutine 同時使用
type Store interface {
	// Get 找不到或已過期時回傳 common.ErrSessionNotFound
	Get(ctx context.Context, id string) (*Session, error)
	// Save 寫入並重新計算存活時間
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// NewStore 依設定建立儲存
func NewStore(cfg *config.SessionConfig) (Store, error) {
	switch cfg.Store {
	case "memory", "":
		return NewMemoryStore(cfg), nil
	case "redis":
		return NewRedisStore(cfg)
	default:
		return nil, fmt.Errorf("unknown session store %q (supported: memory, redis)", cfg.Store)
	}
}

// clone 深拷貝，避免呼叫端修改到儲存中的資料
func clone(s *Session) *Session {
	c := *s
	if s.Warnings != nil {
		c.Warnings = append([]string(nil), s.Warnings...)
	}
	return &c
}
