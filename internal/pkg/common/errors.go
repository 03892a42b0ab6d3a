package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 讓 errors.Is / errors.As 可以取得原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，使包裝後的錯誤仍可與預定義錯誤比較
func (e *CustomError) Is(target error) bool {
	var t *CustomError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Wrap 以相同代碼包裝原始錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return &CustomError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Err:     err,
	}
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ToResponse 將錯誤轉換為 HTTP 狀態碼與響應內容
func ToResponse(err error, debug bool) (int, ErrorResponse) {
	var ce *CustomError
	if !errors.As(err, &ce) {
		ce = ErrInternalError.Wrap(err)
	}

	resp := ErrorResponse{
		Code:    ce.Code,
		Message: ce.Message,
	}
	if debug && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}
	return ce.Status, resp
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest    = "INVALID_REQUEST"     // 400
	ErrCodeInvalidField      = "INVALID_FIELD"       // 400
	ErrCodeEmptyIngredients  = "EMPTY_INGREDIENTS"   // 400
	ErrCodeInvalidAudio      = "INVALID_AUDIO"       // 400
	ErrCodeSessionNotFound   = "SESSION_NOT_FOUND"   // 404
	ErrCodeNoDocument        = "NO_DOCUMENT"         // 404
	ErrCodeInvalidTransition = "INVALID_TRANSITION"  // 409
	ErrCodeNoCompliantDishes = "NO_COMPLIANT_DISHES" // 422
	ErrCodeTooManyRequests   = "TOO_MANY_REQUESTS"   // 429
	ErrCodeRequestTimeout    = "REQUEST_TIMEOUT"     // 408

	// 服務器錯誤 (5xx)
	ErrCodeInternalError       = "INTERNAL_ERROR"       // 500
	ErrCodeInvalidMode         = "INVALID_MODE"         // 500
	ErrCodeAIServiceError      = "AI_SERVICE_ERROR"     // 502
	ErrCodeTranscriptionFailed = "TRANSCRIPTION_FAILED" // 502
	ErrCodeQueueFull           = "QUEUE_FULL"           // 503
	ErrCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"  // 503
	ErrCodeGatewayTimeout      = "GATEWAY_TIMEOUT"      // 504
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest    = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrInvalidField      = NewError(ErrCodeInvalidField, "未知的表單欄位", http.StatusBadRequest, nil)
	ErrEmptyIngredients  = NewError(ErrCodeEmptyIngredients, "請先輸入食材", http.StatusBadRequest, nil)
	ErrInvalidAudio      = NewError(ErrCodeInvalidAudio, "無效的音訊資料", http.StatusBadRequest, nil)
	ErrSessionNotFound   = NewError(ErrCodeSessionNotFound, "會話不存在或已過期", http.StatusNotFound, nil)
	ErrNoDocument        = NewError(ErrCodeNoDocument, "尚未產生食譜", http.StatusNotFound, nil)
	ErrInvalidTransition = NewError(ErrCodeInvalidTransition, "目前狀態不允許此操作", http.StatusConflict, nil)
	ErrNoCompliantDishes = NewError(ErrCodeNoCompliantDishes, "沒有符合飲食限制的料理", http.StatusUnprocessableEntity, nil)
	ErrTooManyRequests   = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)
	ErrRequestTimeout    = NewError(ErrCodeRequestTimeout, "請求超時", http.StatusRequestTimeout, nil)

	// 服務器錯誤
	ErrInternalError       = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrInvalidMode         = NewError(ErrCodeInvalidMode, "無效的正規化模式，必須是 ingredients 或 preferences", http.StatusInternalServerError, nil)
	ErrAIServiceError      = NewError(ErrCodeAIServiceError, "AI 服務錯誤", http.StatusBadGateway, nil)
	ErrTranscriptionFailed = NewError(ErrCodeTranscriptionFailed, "語音轉文字失敗", http.StatusBadGateway, nil)
	ErrQueueFull           = NewError(ErrCodeQueueFull, "轉錄隊列已滿", http.StatusServiceUnavailable, nil)
	ErrServiceUnavailable  = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout      = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)
)
