package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cooking-buddy/internal/infrastructure/config"
	"cooking-buddy/internal/pkg/common"
)

const defaultDedupWindow = time.Second

// dedupEntry 進行中的請求沒有完成時間
type dedupEntry struct {
	inflight bool
	doneAt   time.Time
}

// dedupCache 以請求指紋記錄處理中與近期成功的請求
type dedupCache struct {
	mu      sync.Mutex
	entries map[string]*dedupEntry
	window  time.Duration
}

func newDedupCache(window time.Duration) *dedupCache {
	if window <= 0 {
		window = defaultDedupWindow
	}
	return &dedupCache{entries: make(map[string]*dedupEntry), window: window}
}

// acquire 回傳 false 表示同指紋的請求正在處理或剛成功
func (d *dedupCache) acquire(key string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.entries[key]; ok {
		if e.inflight || now.Sub(e.doneAt) <= d.window {
			return false
		}
	}
	d.entries[key] = &dedupEntry{inflight: true}
	return true
}

// release 只有 2xx 會留下指紋，失敗的請求可立即重試
func (d *dedupCache) release(key string, status int, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		delete(d.entries, key)
		return
	}
	d.entries[key] = &dedupEntry{doneAt: now}
}

func (d *dedupCache) sweep(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for k, e := range d.entries {
		if !e.inflight && now.Sub(e.doneAt) > d.window {
			delete(d.entries, k)
			n++
		}
	}
	return n
}

func (d *dedupCache) startCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for now := range ticker.C {
			if n := d.sweep(now); n > 0 {
				common.LogDebug("清理去重指紋", zap.Int("removed", n))
			}
		}
	}()
}

func fingerprint(r *http.Request, body []byte) string {
	key := r.Method + ":" + r.URL.Path
	if len(body) > 0 {
		sum := sha256.Sum256(body)
		key += ":" + hex.EncodeToString(sum[:])
	}
	return key
}

// Deduplication 拒絕與處理中或剛成功請求相同的 POST，視窗取自 cfg.DedupWindow
func Deduplication(cfg *config.Config) gin.HandlerFunc {
	var window time.Duration
	if cfg != nil {
		window = cfg.DedupWindow
	}
	cache := newDedupCache(window)
	cache.startCleanup(10 * time.Minute)

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			var err error
			body, err = io.ReadAll(c.Request.Body)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, common.ErrorResponse{
						Code:    "REQUEST_TOO_LARGE",
						Message: fmt.Sprintf("請求體超過 %d bytes", tooLarge.Limit),
					})
					return
				}
				common.LogError("讀取請求體失敗", zap.Error(err))
				status, resp := common.ToResponse(common.ErrInvalidRequest.Wrap(err), false)
				c.AbortWithStatusJSON(status, resp)
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		key := fingerprint(c.Request, body)
		if !cache.acquire(key, time.Now()) {
			status, resp := common.ToResponse(common.ErrTooManyRequests, false)
			c.AbortWithStatusJSON(status, resp)
			return
		}
		defer func() {
			if p := recover(); p != nil {
				cache.release(key, http.StatusInternalServerError, time.Now())
				panic(p)
			}
			cache.release(key, c.Writer.Status(), time.Now())
		}()

		c.Next()
	}
}
