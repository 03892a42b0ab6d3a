package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Transcriber 語音轉文字服務
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// AIHandler 不綁定會話的轉錄處理器
type AIHandler struct {
	transcriber Transcriber
}

// NewAIHandler 創建轉錄處理器
func NewAIHandler(transcriber Transcriber) *AIHandler {
	return &AIHandler{
		transcriber: transcriber,
	}
}

// TranscribeResponse 轉錄結果
type TranscribeResponse struct {
	Text string `json:"text"`
}

// Transcribe 將上傳的錄音轉成文字
func (h *AIHandler) Transcribe(c *gin.Context) {
	audio, err := ReadAudio(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	text, err := h.transcriber.Transcribe(c.Request.Context(), audio)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, TranscribeResponse{Text: text})
}
