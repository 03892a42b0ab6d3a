package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cooking-buddy/internal/infrastructure/config"
	"cooking-buddy/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	common.InitTestLogger()
	r := gin.New()
	r.Use(handlers...)
	r.POST("/echo", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/echo", func(c *gin.Context) { c.String(http.StatusOK, common.RequestIDFrom(c.Request.Context())) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	r := newEngine(RateLimit(2, time.Hour))

	for i := 0; i < 2; i++ {
		if w := do(r, http.MethodPost, "/echo", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}
	w := do(r, http.MethodPost, "/echo", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
	if !strings.Contains(w.Body.String(), common.ErrCodeTooManyRequests) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestDeduplication(t *testing.T) {
	r := newEngine(Deduplication(&config.Config{DedupWindow: time.Minute}))

	if w := do(r, http.MethodPost, "/echo", `{"text":"eggs"}`); w.Code != http.StatusOK {
		t.Fatalf("first request: %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/echo", `{"text":"eggs"}`); w.Code != http.StatusTooManyRequests {
		t.Fatalf("duplicate request: %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/echo", `{"text":"rice"}`); w.Code != http.StatusOK {
		t.Fatalf("different body: %d", w.Code)
	}
}

func TestDeduplicationAllowsRetryAfterFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	common.InitTestLogger()
	calls := 0
	r := gin.New()
	r.Use(Deduplication(&config.Config{DedupWindow: time.Minute}))
	r.POST("/generate", func(c *gin.Context) {
		calls++
		if calls == 1 {
			status, body := common.ToResponse(common.ErrAIServiceError, false)
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.String(http.StatusOK, "ok")
	})

	body := `{"ingredients":"eggs, flour"}`
	if w := do(r, http.MethodPost, "/generate", body); w.Code < 500 {
		t.Fatalf("first request should fail upstream, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/generate", body); w.Code != http.StatusOK {
		t.Fatalf("retry after failure: %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/generate", body); w.Code != http.StatusTooManyRequests {
		t.Fatalf("duplicate after success: %d", w.Code)
	}
	if calls != 2 {
		t.Fatalf("handler calls = %d, want 2", calls)
	}
}

func TestDeduplicationRejectsInflightDuplicate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	common.InitTestLogger()
	started := make(chan struct{})
	release := make(chan struct{})
	r := gin.New()
	r.Use(Deduplication(&config.Config{DedupWindow: time.Minute}))
	r.POST("/slow", func(c *gin.Context) {
		close(started)
		<-release
		c.String(http.StatusOK, "ok")
	})

	done := make(chan int, 1)
	go func() { done <- do(r, http.MethodPost, "/slow", "same").Code }()
	<-started

	if w := do(r, http.MethodPost, "/slow", "same"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("in-flight duplicate: %d", w.Code)
	}
	close(release)
	if code := <-done; code != http.StatusOK {
		t.Fatalf("original request: %d", code)
	}
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(8))

	w := do(r, http.MethodPost, "/echo", "this body is too long")
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}

func TestRecoveryAndRequestContext(t *testing.T) {
	r := newEngine(Recovery(), requestid.New(), RequestContext())

	if w := do(r, http.MethodGet, "/panic", ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	w := do(r, http.MethodGet, "/echo", "")
	if w.Body.String() == "" || w.Body.String() != w.Header().Get("X-Request-ID") {
		t.Fatalf("request id not propagated: body %q header %q", w.Body.String(), w.Header().Get("X-Request-ID"))
	}
}
