// Package session 提供表單會話的 HTTP 介面
package session

import (
	"net/http"

	"cooking-buddy/internal/api/handlers"
	sessionService "cooking-buddy/internal/core/session"
	"cooking-buddy/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FieldRequest 編輯欄位
type FieldRequest struct {
	Text string `json:"text"`
}

// View 會話回應
type View struct {
	*sessionService.Session
	DocumentAvailable bool `json:"document_available"`
}

func newView(s *sessionService.Session) View {
	return View{Session: s, DocumentAvailable: s.HasDocument()}
}

// Handler 會話處理程序
type Handler struct {
	sessions *sessionService.Service
	renderer handlers.DocumentRenderer
}

// NewHandler 創建會話處理程序
func NewHandler(sessions *sessionService.Service, renderer handlers.DocumentRenderer) *Handler {
	return &Handler{
		sessions: sessions,
		renderer: renderer,
	}
}

// Register 註冊會話路由
func (h *Handler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/sessions")
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.PUT("/:id/fields/:field", h.EditField)
	g.POST("/:id/fields/:field/audio", h.TranscribeField)
	g.DELETE("/:id/fields/:field", h.ResetField)
	g.POST("/:id/submit", h.Submit)
	g.GET("/:id/document", h.Document)
	g.POST("/:id/reset", h.Reset)
}

func (h *Handler) respond(c *gin.Context, status int, s *sessionService.Session, err error) {
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(status, newView(s))
}

// Create 建立會話
func (h *Handler) Create(c *gin.Context) {
	s, err := h.sessions.Create(c.Request.Context())
	h.respond(c, http.StatusCreated, s, err)
}

// Get 取得會話
func (h *Handler) Get(c *gin.Context) {
	s, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, s, err)
}

// Delete 刪除會話
func (h *Handler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EditField 以文字更新欄位
func (h *Handler) EditField(c *gin.Context) {
	kind, err := sessionService.ParseFieldKind(c.Param("field"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	var req FieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	s, err := h.sessions.EditField(c.Request.Context(), c.Param("id"), kind, req.Text)
	h.respond(c, http.StatusOK, s, err)
}

// TranscribeField 將錄音轉成文字並填入欄位
func (h *Handler) TranscribeField(c *gin.Context) {
	kind, err := sessionService.ParseFieldKind(c.Param("field"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	audio, err := handlers.ReadAudio(c)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	s, err := h.sessions.TranscribeField(c.Request.Context(), c.Param("id"), kind, audio)
	h.respond(c, http.StatusOK, s, err)
}

// ResetField 清除單一欄位
func (h *Handler) ResetField(c *gin.Context) {
	kind, err := sessionService.ParseFieldKind(c.Param("field"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	s, err := h.sessions.ResetField(c.Request.Context(), c.Param("id"), kind)
	h.respond(c, http.StatusOK, s, err)
}

// Submit 送出表單並產生食譜
func (h *Handler) Submit(c *gin.Context) {
	id := c.Param("id")
	common.LogInfo("送出表單", zap.String("session_id", id))

	s, err := h.sessions.Submit(c.Request.Context(), id)
	h.respond(c, http.StatusOK, s, err)
}

// Document 下載最後一次產生的食譜 PDF
func (h *Handler) Document(c *gin.Context) {
	s, err := h.sessions.Document(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	handlers.SendDocument(c, h.renderer, s.FinalRecipes)
}

// Reset 清除整個表單
func (h *Handler) Reset(c *gin.Context) {
	s, err := h.sessions.Reset(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, s, err)
}
