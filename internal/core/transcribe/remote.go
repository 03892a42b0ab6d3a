package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cooking-buddy/internal/infrastructure/config"
	"cooking-buddy/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RemoteTranscriber 呼叫 OpenAI 相容的 /audio/transcriptions 端點
type RemoteTranscriber struct {
	client   *resty.Client
	model    string
	language string
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

type transcriptionError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewRemoteTranscriber 創建遠端轉錄器
func NewRemoteTranscriber(cfg *config.TranscribeConfig) *RemoteTranscriber {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.RemoteURL, "/")).
		SetTimeout(cfg.Timeout)
	if cfg.RemoteKey != "" {
		client.SetAuthToken(cfg.RemoteKey)
	}
	return &RemoteTranscriber{
		client:   client,
		model:    cfg.Model,
		language: cfg.Language,
	}
}

// Name 後端名稱
func (r *RemoteTranscriber) Name() string { return BackendRemote }

// Transcribe 以 multipart 上傳音訊並回傳文字
func (r *RemoteTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	form := map[string]string{
		"model":           r.model,
		"response_format": "json",
	}
	// 端點只接受 ISO-639-1 代碼，auto 交給服務端偵測
	if r.language != "" && r.language != "auto" {
		form["language"] = r.language
	}

	var result transcriptionResponse
	var failure transcriptionError
	start := time.Now()
	resp, err := r.client.R().
		SetContext(ctx).
		SetFileReader("file", "audio.wav", bytes.NewReader(audio)).
		SetFormData(form).
		SetResult(&result).
		SetError(&failure).
		Post("/audio/transcriptions")
	if err != nil {
		return "", fmt.Errorf("send transcription request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		msg := failure.Error.Message
		if msg == "" {
			msg = common.Preview(resp.String(), 300)
		}
		common.LogError("Transcription returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", r.model),
			zap.String("error", msg),
		)
		return "", fmt.Errorf("transcription error (status %d): %s", resp.StatusCode(), msg)
	}

	common.LogDebug("Transcription succeeded",
		zap.Duration("duration", time.Since(start)),
		zap.Int("text_length", len(result.Text)),
	)
	return result.Text, nil
}
