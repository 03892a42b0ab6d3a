package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"cooking-buddy/internal/infrastructure/config"
	"cooking-buddy/internal/pkg/common"

	"go.uber.org/zap"
)

// WhisperTranscriber 透過 whisper.cpp 的 whisper-cli 轉錄
type WhisperTranscriber struct {
	bin       string
	modelPath string
	tempDir   string
	language  string
	timeout   time.Duration
}

// NewWhisperTranscriber 創建本機轉錄器
func NewWhisperTranscriber(cfg *config.TranscribeConfig) *WhisperTranscriber {
	bin := cfg.WhisperBin
	if bin == "" {
		bin = "whisper-cli"
	}
	return &WhisperTranscriber{
		bin:       bin,
		modelPath: cfg.ModelPath,
		tempDir:   cfg.TempDir,
		language:  cfg.Language,
		timeout:   cfg.Timeout,
	}
}

// Name 後端名稱
func (w *WhisperTranscriber) Name() string { return BackendWhisper }

// Accepts whisper-cli 只讀 wav、flac 與 mp3
func (w *WhisperTranscriber) Accepts(format string) bool {
	switch format {
	case FormatWAV, FormatFLAC, FormatMP3:
		return true
	}
	return false
}

// Available 檢查執行檔是否存在
func (w *WhisperTranscriber) Available() error {
	if _, err := exec.LookPath(w.bin); err != nil {
		return fmt.Errorf("whisper binary %q not found: %w", w.bin, err)
	}
	return nil
}

// Transcribe 將音訊寫入暫存檔（副檔名依格式），執行 whisper-cli 並讀取 stdout
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	ext := DetectFormat(audio)
	if !w.Accepts(ext) {
		ext = FormatWAV
	}
	f, err := os.CreateTemp(w.tempDir, "cooking-buddy-*."+ext)
	if err != nil {
		return "", fmt.Errorf("create temp audio file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return "", fmt.Errorf("write temp audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp audio file: %w", err)
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	args := []string{"-m", w.modelPath, "-f", path, "-nt", "-np"}
	if w.language != "" {
		args = append(args, "-l", w.language)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, w.bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		common.LogError("whisper 執行失敗",
			zap.String("bin", w.bin),
			zap.Error(err),
			zap.String("stderr", common.Preview(strings.TrimSpace(stderr.String()), 300)),
		)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("whisper: %w", ctxErr)
		}
		return "", fmt.Errorf("whisper: %w", err)
	}

	common.LogDebug("whisper 轉錄完成",
		zap.Duration("duration", time.Since(start)),
		zap.Int("audio_bytes", len(audio)),
	)
	return stdout.String(), nil
}
