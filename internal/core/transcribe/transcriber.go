// Package transcribe 將錄音轉成文字：本機 whisper.cpp 或遠端 OpenAI 相容端點
package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"cooking-buddy/internal/infrastructure/config"
	"cooking-buddy/internal/pkg/common"
)

// Transcriber 語音轉文字介面；同步呼叫，無串流
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
	Name() string
}

// 後端名稱
const (
	BackendWhisper = "whisper"
	BackendRemote  = "remote"
)

// New 依設定建立轉錄器
func New(cfg *config.TranscribeConfig) (Transcriber, error) {
	switch cfg.Backend {
	case BackendWhisper, "":
		return NewWhisperTranscriber(cfg), nil
	case BackendRemote:
		return NewRemoteTranscriber(cfg), nil
	default:
		return nil, fmt.Errorf("unknown transcribe backend %q (supported: whisper, remote)", cfg.Backend)
	}
}

// 音訊格式
const (
	FormatWAV  = "wav"
	FormatOgg  = "ogg"
	FormatFLAC = "flac"
	FormatMP3  = "mp3"
	FormatWebM = "webm"
	FormatMP4  = "mp4"
)

// 已知的音訊容器開頭
var audioSignatures = []struct {
	offset int
	magic  []byte
	format string
}{
	{0, []byte("RIFF"), FormatWAV},
	{0, []byte("OggS"), FormatOgg},
	{0, []byte("fLaC"), FormatFLAC},
	{0, []byte("ID3"), FormatMP3},
	{0, []byte{0xFF, 0xFB}, FormatMP3},
	{0, []byte{0xFF, 0xF3}, FormatMP3},
	{0, []byte{0x1A, 0x45, 0xDF, 0xA3}, FormatWebM},
	{4, []byte("ftyp"), FormatMP4},
}

// FormatChecker 只能解碼部分格式的後端
type FormatChecker interface {
	Accepts(format string) bool
}

// DetectFormat 依檔頭判斷音訊格式，無法辨識時回傳空字串
func DetectFormat(audio []byte) string {
	for _, sig := range audioSignatures {
		end := sig.offset + len(sig.magic)
		if len(audio) >= end && bytes.Equal(audio[sig.offset:end], sig.magic) {
			return sig.format
		}
	}
	return ""
}

// ValidateAudio 檢查錄音不為空、不超過大小限制且是已知格式
func ValidateAudio(audio []byte, maxSize int64) error {
	if len(audio) == 0 {
		return common.ErrInvalidAudio.Wrap(fmt.Errorf("empty audio"))
	}
	if maxSize > 0 && int64(len(audio)) > maxSize {
		return common.ErrInvalidAudio.Wrap(fmt.Errorf("audio is %d bytes, limit %d", len(audio), maxSize))
	}
	if DetectFormat(audio) == "" {
		return common.ErrInvalidAudio.Wrap(fmt.Errorf("unrecognised audio container"))
	}
	return nil
}

// junkMarkers whisper 在無語音時常見的輸出
var junkMarkers = []string{
	"[BLANK_AUDIO]",
	"[BLANK AUDIO]",
	"(silence)",
	"[silence]",
	"(no speech)",
	"[no speech]",
	"[Music]",
	"(music)",
	"(inaudible)",
	"(unintelligible)",
	"(background noise)",
}

// hallucinations 整段只剩這些時視為沒有內容
var hallucinations = []string{
	"...",
	"you",
	"thank you.",
	"thanks for watching!",
	"thank you for watching.",
	"bye.",
	"the end.",
}

var (
	// "(keyboard clicking)"、"[laughter]" 這類環境註記
	envAnnotation = regexp.MustCompile(`[\(\[][a-zA-Z][a-zA-Z\s]*[\)\]]`)
	timestamp     = regexp.MustCompile(`\[\d{2}:\d{2}:\d{2}\.\d{3}\s*-->\s*\d{2}:\d{2}:\d{2}\.\d{3}\]`)
	spaces        = regexp.MustCompile(`\s+`)
)

// CleanTranscript 移除 whisper 產生的雜訊標記並壓縮空白
func CleanTranscript(s string) string {
	s = timestamp.ReplaceAllString(s, " ")
	for _, j := range junkMarkers {
		s = strings.ReplaceAll(s, j, " ")
		s = strings.ReplaceAll(s, strings.ToLower(j), " ")
		s = strings.ReplaceAll(s, strings.ToUpper(j), " ")
	}
	s = envAnnotation.ReplaceAllString(s, " ")
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))

	lower := strings.ToLower(s)
	for _, h := range hallucinations {
		if lower == h {
			return ""
		}
	}
	return s
}
