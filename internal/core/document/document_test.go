package document

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"cooking-buddy/internal/infrastructure/config"
	"cooking-buddy/internal/pkg/common"

	"github.com/ledongthuc/pdf"
)

func TestCleanMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "**Fluffy** crepes", "Fluffy crepes"},
		{"italic", "a *light* touch", "a light touch"},
		{"heading", "## Dish 1: Soup\n# Title", "Dish 1: Soup\nTitle"},
		{"rule", "above\n---\nbelow\n-----", "above\n\nbelow\n"},
		{"prose untouched", "Mix 2-3 eggs - gently.", "Mix 2-3 eggs - gently."},
		{"bold inside line", "- **Time:** 20 min", "- Time: 20 min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanMarkdown(tt.in); got != tt.want {
				t.Fatalf("CleanMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	got := Filename(time.Date(2024, time.May, 1, 18, 30, 0, 0, time.UTC))
	if got != "recipes_2024-05-01.pdf" {
		t.Fatalf("Filename() = %q", got)
	}
}

func TestRenderReadsBack(t *testing.T) {
	common.InitTestLogger()
	r := NewRenderer(&config.DocumentConfig{FontDir: t.TempDir()})

	markdown := "Hey friend! 👋\n\n## Dish 1: **Fluffy Cloud Crepes** ☁️\n\n---\n\nWhisk the eggs.\n"
	data, err := r.RenderBytes(markdown)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 16)])
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if reader.NumPage() != 1 {
		t.Fatalf("expected 1 page, got %d", reader.NumPage())
	}

	var text strings.Builder
	for _, chunk := range reader.Page(1).Content().Text {
		text.WriteString(chunk.S)
	}
	flat := strings.ReplaceAll(text.String(), " ", "")
	for _, want := range []string{"YourCookingBuddy", "Dish1:FluffyCloudCrepes", "Whisktheeggs."} {
		if !strings.Contains(flat, want) {
			t.Errorf("page text %q missing %q", flat, want)
		}
	}
	if strings.Contains(flat, "**") || strings.Contains(flat, "##") {
		t.Errorf("markdown markers left in %q", flat)
	}
}

func TestRenderBreaksLongDocuments(t *testing.T) {
	common.InitTestLogger()
	r := NewRenderer(nil)

	var b strings.Builder
	for i := 0; i < 120; i++ {
		b.WriteString("Stir the pot and taste as you go.\n")
	}
	data, err := r.RenderBytes(b.String())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if reader.NumPage() < 2 {
		t.Fatalf("expected auto page break, got %d page(s)", reader.NumPage())
	}
}

func TestLatinTextDropsEmoji(t *testing.T) {
	enc := latinText(func(s string) string { return s })
	if got := enc("Crêpes 🍳 — yum ☀️"); got != "Crêpes  — yum " {
		t.Fatalf("latinText() = %q", got)
	}
}
