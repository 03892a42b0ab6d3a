// Package session 管理單一使用者的表單：兩個欄位、狀態機與最後產生的食譜
package session

import (
	"fmt"
	"strings"
	"time"

	"cooking-buddy/internal/pkg/common"
)

// FieldKind 表單欄位
type FieldKind string

const (
	FieldIngredients FieldKind = "ingredients"
	FieldPreferences FieldKind = "preferences"
)

// ParseFieldKind 解析路徑上的欄位名稱
func ParseFieldKind(s string) (FieldKind, error) {
	switch FieldKind(s) {
	case FieldIngredients, FieldPreferences:
		return FieldKind(s), nil
	}
	return "", common.ErrInvalidField.Wrap(fmt.Errorf("field %q", s))
}

// Field 單一輸入欄位
type Field struct {
	Text        string `json:"text"`
	Transcribed bool   `json:"transcribed"`
	// RecorderKey 重設欄位時更新，讓前端重新掛載錄音元件
	RecorderKey string `json:"recorder_key"`
}

func newField(kind FieldKind) Field {
	return Field{RecorderKey: string(kind) + common.GenerateUUID()}
}

// Session 表單會話
type Session struct {
	ID           string    `json:"id"`
	State        State     `json:"state"`
	Ingredients  Field     `json:"ingredients"`
	Preferences  Field     `json:"preferences"`
	FinalRecipes string    `json:"final_recipes,omitempty"`
	Warnings     []string  `json:"warnings,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// New 建立處於 Idle 的新會話
func New(now time.Time) *Session {
	return &Session{
		ID:          common.GenerateUUID(),
		State:       StateIdle,
		Ingredients: newField(FieldIngredients),
		Preferences: newField(FieldPreferences),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Field 取得欄位指標
func (s *Session) Field(kind FieldKind) *Field {
	if kind == FieldPreferences {
		return &s.Preferences
	}
	return &s.Ingredients
}

// apply 套用事件，成功時更新狀態
func (s *Session) apply(event Event, now time.Time) error {
	next, err := Transition(s.State, event)
	if err != nil {
		return err
	}
	s.State = next
	s.UpdatedAt = now
	return nil
}

// Open 開啟表單
func (s *Session) Open(now time.Time) error {
	return s.apply(EventOpen, now)
}

// Edit 以使用者輸入覆寫欄位文字
func (s *Session) Edit(kind FieldKind, text string, now time.Time) error {
	if err := s.apply(EventEdit, now); err != nil {
		return err
	}
	s.Field(kind).Text = text
	return nil
}

// ApplyTranscription 以轉錄結果覆寫欄位並標記為已轉錄
func (s *Session) ApplyTranscription(kind FieldKind, text string, now time.Time) error {
	if err := s.apply(EventTranscribe, now); err != nil {
		return err
	}
	f := s.Field(kind)
	f.Text = text
	f.Transcribed = true
	return nil
}

// ResetField 清除單一欄位，不影響另一個欄位
func (s *Session) ResetField(kind FieldKind, now time.Time) error {
	if err := s.apply(EventResetField, now); err != nil {
		return err
	}
	*s.Field(kind) = newField(kind)
	return nil
}

// Submit 送出表單：清除兩個轉錄旗標，食材不可為空
func (s *Session) Submit(now time.Time) error {
	if _, err := Transition(s.State, EventSubmit); err != nil {
		return err
	}
	s.Ingredients.Transcribed = false
	s.Preferences.Transcribed = false
	if strings.TrimSpace(s.Ingredients.Text) == "" {
		s.UpdatedAt = now
		return common.ErrEmptyIngredients
	}
	s.LastError = ""
	return s.apply(EventSubmit, now)
}

// Complete 流程成功，保存食譜
func (s *Session) Complete(recipes string, warnings []string, now time.Time) error {
	if err := s.apply(EventComplete, now); err != nil {
		return err
	}
	s.FinalRecipes = recipes
	s.Warnings = warnings
	return nil
}

// Fail 流程失敗，回到輸入狀態；先前的食譜保留
func (s *Session) Fail(cause error, now time.Time) error {
	if err := s.apply(EventFail, now); err != nil {
		return err
	}
	if cause != nil {
		s.LastError = cause.Error()
	}
	return nil
}

// Reset 清除兩個欄位與食譜
func (s *Session) Reset(now time.Time) error {
	if err := s.apply(EventReset, now); err != nil {
		return err
	}
	s.Ingredients = newField(FieldIngredients)
	s.Preferences = newField(FieldPreferences)
	s.FinalRecipes = ""
	s.Warnings = nil
	s.LastError = ""
	return nil
}

// HasDocument 是否有可下載的食譜
func (s *Session) HasDocument() bool {
	return s.FinalRecipes != ""
}
