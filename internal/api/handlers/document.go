package handlers

import (
	"fmt"
	"net/http"
	"time"

	"cooking-buddy/internal/core/document"
	"cooking-buddy/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DocumentRenderer 將食譜 markdown 轉為 PDF
type DocumentRenderer interface {
	RenderBytes(markdown string) ([]byte, error)
}

// SendDocument 產生 PDF 並以附件下載
func SendDocument(c *gin.Context, renderer DocumentRenderer, markdown string) {
	data, err := renderer.RenderBytes(markdown)
	if err != nil {
		RespondError(c, common.ErrInternalError.Wrap(fmt.Errorf("render pdf: %w", err)))
		return
	}

	filename := document.Filename(time.Now())
	common.LogInfo("產生 PDF",
		zap.String("filename", filename),
		zap.Int("bytes", len(data)),
	)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, document.MediaType, data)
}
