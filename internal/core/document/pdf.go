// Package document 將最終食譜渲染成可下載的 PDF
package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"cooking-buddy/internal/infrastructure/config"
	"cooking-buddy/internal/pkg/common"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

// MediaType PDF 的 MIME 類型
const MediaType = "application/pdf"

const (
	regularFont = "DejaVuSans.ttf"
	boldFont    = "DejaVuSans-Bold.ttf"
	unicodeFont = "DejaVu"
	coreFont    = "Helvetica"

	titleSize     = 20
	bodySize      = 11
	lineHeight    = 8
	bottomMargin  = 40
	headerHeight  = 15
	headerSpacing = 10
	pageGrey      = 245
)

// Renderer PDF 渲染器
type Renderer struct {
	fontDir string
	title   string
}

// NewRenderer 創建渲染器；字型目錄缺少 DejaVu 時退回 Helvetica
func NewRenderer(cfg *config.DocumentConfig) *Renderer {
	r := &Renderer{title: "Your Cooking Buddy"}
	if cfg != nil {
		r.fontDir = cfg.FontDir
		if cfg.Title != "" {
			r.title = cfg.Title
		}
	}
	return r
}

// Filename 下載檔名，例如 recipes_2024-05-01.pdf
func Filename(t time.Time) string {
	return fmt.Sprintf("recipes_%s.pdf", t.Format("2006-01-02"))
}

func (r *Renderer) hasUnicodeFonts() bool {
	if r.fontDir == "" {
		return false
	}
	for _, name := range []string{regularFont, boldFont} {
		if _, err := os.Stat(filepath.Join(r.fontDir, name)); err != nil {
			return false
		}
	}
	return true
}

// Render 清理 markdown 後寫出 PDF：每頁淺灰底與置中標題，內文自動換頁
func (r *Renderer) Render(w io.Writer, markdown string) error {
	text := CleanMarkdown(markdown)

	pdf := fpdf.New("P", "mm", "A4", r.fontDir)
	family := coreFont
	encode := latinText(pdf.UnicodeTranslatorFromDescriptor(""))
	if r.hasUnicodeFonts() {
		pdf.AddUTF8Font(unicodeFont, "", regularFont)
		pdf.AddUTF8Font(unicodeFont, "B", boldFont)
		family = unicodeFont
		encode = bmpText
	} else {
		common.LogDebug("找不到 UTF-8 字型，改用 Helvetica", zap.String("font_dir", r.fontDir))
	}

	title := encode(r.title)
	pdf.SetHeaderFunc(func() {
		pw, ph := pdf.GetPageSize()
		pdf.SetFillColor(pageGrey, pageGrey, pageGrey)
		pdf.Rect(0, 0, pw, ph, "F")
		pdf.SetFont(family, "B", titleSize)
		pdf.CellFormat(0, headerHeight, title, "", 1, "C", false, 0, "")
		pdf.Ln(headerSpacing)
	})
	pdf.SetAutoPageBreak(true, bottomMargin)

	pdf.AddPage()
	pdf.SetFont(family, "", bodySize)
	pdf.MultiCell(0, lineHeight, encode(text), "", "L", false)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// RenderBytes 渲染到記憶體
func (r *Renderer) RenderBytes(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, markdown); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// latinText 丟棄 cp1252 無法表示的字元（例如 emoji）後再轉碼
func latinText(translate func(string) string) func(string) string {
	return func(s string) string {
		s = strings.Map(func(r rune) rune {
			if r == '\n' || r == '\t' || (r >= 0x20 && r <= 0xFF) || strings.ContainsRune(cp1252Extras, r) {
				return r
			}
			return -1
		}, s)
		return translate(s)
	}
}

// cp1252 中 0x80-0x9F 區段可表示的字元
const cp1252Extras = "€‚ƒ„…†‡ˆ‰Š‹ŒŽ‘’“”•–—˜™š›œžŸ"

// bmpText 丟棄 DejaVu 沒有字形的補充平面字元與組合符號
func bmpText(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF || r == 0xFE0F || r == 0x200D || (unicode.Is(unicode.Mn, r) && r >= 0xFE00) {
			return -1
		}
		return r
	}, s)
}
