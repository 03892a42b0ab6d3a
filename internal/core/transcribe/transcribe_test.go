package transcribe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"cooking-buddy/internal/core/ai/queue"
	"cooking-buddy/internal/infrastructure/config"
	"cooking-buddy/internal/pkg/common"
)

var testWAV = append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 32)...)

func TestCleanTranscript(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" I have two eggs\n and some milk ", "I have two eggs and some milk"},
		{"[BLANK_AUDIO]", ""},
		{"(keyboard clicking) flour, sugar [laughter]", "flour, sugar"},
		{"[00:00:00.000 --> 00:00:03.000]  no peanuts please", "no peanuts please"},
		{"Thank you.", ""},
		{"  you ", ""},
		{"chickpeas (canned)", "chickpeas"},
	}
	for _, tt := range tests {
		if got := CleanTranscript(tt.in); got != tt.want {
			t.Errorf("CleanTranscript(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateAudio(t *testing.T) {
	mp4 := append([]byte{0, 0, 0, 0x20}, []byte("ftypM4A ")...)
	tests := []struct {
		name    string
		audio   []byte
		max     int64
		wantErr bool
	}{
		{"wav", testWAV, 1024, false},
		{"ogg", []byte("OggS\x00\x02rest"), 1024, false},
		{"m4a", mp4, 1024, false},
		{"empty", nil, 1024, true},
		{"too large", testWAV, 8, true},
		{"text", []byte("hello world"), 1024, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAudio(tt.audio, tt.max)
			if tt.wantErr {
				if !errors.Is(err, common.ErrInvalidAudio) {
					t.Fatalf("expected invalid audio, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string][]byte{
		FormatWAV:  testWAV,
		FormatOgg:  []byte("OggS\x00\x02"),
		FormatFLAC: []byte("fLaC\x00"),
		FormatMP3:  []byte("ID3\x04"),
		FormatWebM: {0x1A, 0x45, 0xDF, 0xA3, 0x01},
		"":         []byte("hello"),
	}
	for want, audio := range tests {
		if got := DetectFormat(audio); got != want {
			t.Errorf("DetectFormat(%q) = %q, want %q", audio, got, want)
		}
	}
}

func TestWhisperRejectsUndecodableFormats(t *testing.T) {
	common.InitTestLogger()
	w := NewWhisperTranscriber(&config.TranscribeConfig{WhisperBin: "/nonexistent/whisper-cli"})
	svc := NewService(w, nil, 1024)

	for _, audio := range [][]byte{
		[]byte("OggS\x00\x02rest"),
		{0x1A, 0x45, 0xDF, 0xA3, 0x01},
		append([]byte{0, 0, 0, 0x20}, []byte("ftypM4A ")...),
	} {
		_, err := svc.Transcribe(context.Background(), audio)
		if !errors.Is(err, common.ErrInvalidAudio) {
			t.Fatalf("format %s: expected invalid audio, got %v", DetectFormat(audio), err)
		}
	}

	// wav 可以通過格式檢查，失敗在執行檔
	if _, err := svc.Transcribe(context.Background(), testWAV); !errors.Is(err, common.ErrTranscriptionFailed) {
		t.Fatalf("wav: expected transcription failure, got %v", err)
	}
}

func TestNewBackends(t *testing.T) {
	if tr, err := New(&config.TranscribeConfig{Backend: "whisper"}); err != nil || tr.Name() != BackendWhisper {
		t.Fatalf("whisper backend: %v, %v", tr, err)
	}
	if tr, err := New(&config.TranscribeConfig{Backend: "remote", RemoteURL: "http://localhost"}); err != nil || tr.Name() != BackendRemote {
		t.Fatalf("remote backend: %v, %v", tr, err)
	}
	if _, err := New(&config.TranscribeConfig{Backend: "vosk"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script backend not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "whisper-cli")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestWhisperTranscriber(t *testing.T) {
	common.InitTestLogger()
	bin := writeScript(t, `
while [ $# -gt 0 ]; do
  case "$1" in
    -f) file="$2"; shift ;;
    -m) model="$2"; shift ;;
  esac
  shift
done
[ -f "$file" ] || { echo "missing input" >&2; exit 2; }
[ "$model" = "ggml-base.bin" ] || { echo "bad model" >&2; exit 3; }
case "$file" in *.wav) ;; *) exit 4 ;; esac
printf '%s' "$(head -c 4 "$file")"
echo " [BLANK_AUDIO] two eggs and milk"
`)
	tempDir := t.TempDir()
	w := NewWhisperTranscriber(&config.TranscribeConfig{
		WhisperBin: bin,
		ModelPath:  "ggml-base.bin",
		TempDir:    tempDir,
		Timeout:    5 * time.Second,
	})

	out, err := w.Transcribe(context.Background(), testWAV)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if !strings.HasPrefix(out, "RIFF") || !strings.Contains(out, "two eggs and milk") {
		t.Fatalf("unexpected output %q", out)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("temp audio file not removed: %v", entries)
	}
}

func TestWhisperTranscriberFailure(t *testing.T) {
	common.InitTestLogger()
	bin := writeScript(t, "echo 'model not found' >&2\nexit 1\n")
	w := NewWhisperTranscriber(&config.TranscribeConfig{WhisperBin: bin, TempDir: t.TempDir()})

	if _, err := w.Transcribe(context.Background(), testWAV); err == nil {
		t.Fatal("expected error from failing binary")
	}
}

func TestRemoteTranscriber(t *testing.T) {
	common.InitTestLogger()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-large-v3" {
			t.Errorf("unexpected model %q", got)
		}
		if _, ok := r.MultipartForm.Value["language"]; ok {
			t.Errorf("language auto should not be sent, got %q", r.FormValue("language"))
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file: %v", err)
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)
		if string(data[:4]) != "RIFF" {
			t.Errorf("unexpected upload %q", data[:4])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":" Eggs, flour and milk. "}`))
	}))
	defer server.Close()

	r := NewRemoteTranscriber(&config.TranscribeConfig{
		RemoteURL: server.URL + "/v1/",
		RemoteKey: "secret",
		Model:     "whisper-large-v3",
		Language:  "auto",
		Timeout:   5 * time.Second,
	})
	text, err := r.Transcribe(context.Background(), testWAV)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != " Eggs, flour and milk. " {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestRemoteTranscriberLanguage(t *testing.T) {
	common.InitTestLogger()
	var got []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		got = append(got, r.FormValue("language"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"ok"}`))
	}))
	defer server.Close()

	for _, lang := range []string{"", "auto", "en"} {
		r := NewRemoteTranscriber(&config.TranscribeConfig{RemoteURL: server.URL, Language: lang, Timeout: time.Second})
		if _, err := r.Transcribe(context.Background(), testWAV); err != nil {
			t.Fatalf("language %q: %v", lang, err)
		}
	}
	want := []string{"", "", "en"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("language fields = %q, want %q", got, want)
		}
	}
}

func TestRemoteTranscriberErrorStatus(t *testing.T) {
	common.InitTestLogger()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer server.Close()

	r := NewRemoteTranscriber(&config.TranscribeConfig{RemoteURL: server.URL, Timeout: time.Second})
	_, err := r.Transcribe(context.Background(), testWAV)
	if err == nil || !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("expected api error, got %v", err)
	}
}

type fakeBackend struct {
	text string
	err  error
}

func (f *fakeBackend) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return f.text, f.err
}

func (f *fakeBackend) Name() string { return "fake" }

func TestServiceTranscribe(t *testing.T) {
	common.InitTestLogger()
	q := queue.NewManager(&config.QueueConfig{Workers: 1, MaxSize: 2})
	defer q.Close()

	svc := NewService(&fakeBackend{text: "[BLANK_AUDIO] I've got rice and beans\n"}, q, 1024)
	text, err := svc.Transcribe(context.Background(), testWAV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "I've got rice and beans" {
		t.Fatalf("unexpected text %q", text)
	}

	if _, err := svc.Transcribe(context.Background(), []byte("not audio")); !errors.Is(err, common.ErrInvalidAudio) {
		t.Fatalf("expected invalid audio, got %v", err)
	}

	failing := NewService(&fakeBackend{err: errors.New("model missing")}, nil, 1024)
	if _, err := failing.Transcribe(context.Background(), testWAV); !errors.Is(err, common.ErrTranscriptionFailed) {
		t.Fatalf("expected transcription failure, got %v", err)
	}
}
