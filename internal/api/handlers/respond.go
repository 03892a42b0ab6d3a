package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cooking-buddy/internal/infrastructure/config"
	"cooking-buddy/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondError 將錯誤轉為統一的 JSON 錯誤響應；除錯模式附上原始錯誤
func RespondError(c *gin.Context, err error) {
	debug := false
	if v, ok := c.Get("config"); ok {
		if cfg, ok := v.(*config.Config); ok {
			debug = cfg.App.Debug
		}
	}

	var ce *common.CustomError
	if errors.Is(err, context.DeadlineExceeded) && !errors.As(err, &ce) {
		err = common.ErrGatewayTimeout.Wrap(err)
	}

	status, body := common.ToResponse(err, debug)
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("code", body.Code),
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
	}
	if status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求被拒絕", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// ReadAudio 讀取錄音：multipart 的 audio 欄位，或直接以請求體上傳
func ReadAudio(c *gin.Context) ([]byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("audio")
		if err != nil {
			return nil, common.ErrInvalidAudio.Wrap(fmt.Errorf("multipart field audio: %w", err))
		}
		f, err := fh.Open()
		if err != nil {
			return nil, common.ErrInvalidAudio.Wrap(err)
		}
		defer f.Close()
		return readAll(f)
	}
	return readAll(c.Request.Body)
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, common.ErrInvalidAudio.Wrap(fmt.Errorf("audio exceeds %d bytes", tooLarge.Limit))
		}
		return nil, common.ErrInvalidAudio.Wrap(err)
	}
	return data, nil
}
