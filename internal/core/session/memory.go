package session

import (
	"context"
	"sync"
	"time"

	"cooking-buddy/internal/infrastructure/config"
	"cooking-buddy/internal/pkg/common"

	"go.uber.org/zap"
)

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// MemoryStore 行程內的會話儲存，定期清除過期項目
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
	now     func() time.Time
}

// NewMemoryStore 創建記憶體儲存並啟動清理
func NewMemoryStore(cfg *config.SessionConfig) *MemoryStore {
	m := &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     cfg.TTL,
		done:    make(chan struct{}),
		now:     time.Now,
	}
	if cfg.CleanupInterval > 0 {
		go m.startCleanup(cfg.CleanupInterval)
	}
	return m
}

func (m *MemoryStore) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.cleanup(); n > 0 {
				common.LogDebug("清除過期會話", zap.Int("removed", n))
			}
		case <-m.done:
			return
		}
	}
}

func (m *MemoryStore) cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, e := range m.entries {
		if m.expired(e, now) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

func (m *MemoryStore) expired(e *memoryEntry, now time.Time) bool {
	return m.ttl > 0 && now.After(e.expiresAt)
}

// Get 取得會話副本
func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()

	if !ok || m.expired(e, m.now()) {
		return nil, common.ErrSessionNotFound
	}
	return clone(e.session), nil
}

// Save 保存會話副本
func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[s.ID] = &memoryEntry{
		session:   clone(s),
		expiresAt: m.now().Add(m.ttl),
	}
	return nil
}

// Delete 刪除會話
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return common.ErrSessionNotFound
	}
	delete(m.entries, id)
	return nil
}

// Ping 記憶體儲存永遠可用
func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

// Len 目前保存的會話數
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close 停止清理
func (m *MemoryStore) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}
