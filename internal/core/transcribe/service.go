package transcribe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cooking-buddy/internal/core/ai/queue"
	"cooking-buddy/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 驗證音訊、經由隊列限制並行數後轉錄並清理文字
type Service struct {
	backend Transcriber
	queue   *queue.Manager
	maxSize int64
}

// NewService 創建轉錄服務；queueManager 為 nil 時直接呼叫後端
func NewService(backend Transcriber, queueManager *queue.Manager, maxSize int64) *Service {
	return &Service{
		backend: backend,
		queue:   queueManager,
		maxSize: maxSize,
	}
}

// Transcribe 同步轉錄，呼叫端會阻塞直到結果完成
func (s *Service) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if err := ValidateAudio(audio, s.maxSize); err != nil {
		return "", err
	}
	if fc, ok := s.backend.(FormatChecker); ok {
		if format := DetectFormat(audio); !fc.Accepts(format) {
			return "", common.ErrInvalidAudio.Wrap(fmt.Errorf("%s backend cannot decode %s audio", s.backend.Name(), format))
		}
	}

	task := func(ctx context.Context) (string, error) {
		return s.backend.Transcribe(ctx, audio)
	}

	start := time.Now()
	var (
		raw string
		err error
	)
	if s.queue != nil {
		raw, err = s.queue.Do(ctx, task)
	} else {
		raw, err = task(ctx)
	}
	if err != nil {
		if errors.Is(err, common.ErrQueueFull) {
			return "", err
		}
		common.LogError("轉錄失敗",
			zap.String("backend", s.backend.Name()),
			zap.Error(err),
			zap.String("request_id", common.RequestIDFrom(ctx)))
		return "", common.ErrTranscriptionFailed.Wrap(err)
	}

	text := CleanTranscript(raw)
	common.LogInfo("轉錄完成",
		zap.String("backend", s.backend.Name()),
		zap.Duration("duration", time.Since(start)),
		zap.Int("text_length", len(text)),
		zap.String("request_id", common.RequestIDFrom(ctx)))
	return text, nil
}

// Backend 後端名稱
func (s *Service) Backend() string {
	return s.backend.Name()
}
