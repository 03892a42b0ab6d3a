package session

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"cooking-buddy/internal/core/recipe"
	"cooking-buddy/internal/pkg/common"

	"go.uber.org/zap"
)

// Pipeline 產生食譜的流程
type Pipeline interface {
	Run(ctx context.Context, rawIngredients, rawPreferences string) (*recipe.Result, error)
}

// Transcriber 語音轉文字
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

const lockStripes = 64

// Service 會話服務：讀取、套用事件、寫回
type Service struct {
	store       Store
	pipeline    Pipeline
	transcriber Transcriber
	locks       [lockStripes]sync.Mutex
	now         func() time.Time
}

// NewService 創建會話服務
func NewService(store Store, pipeline Pipeline, transcriber Transcriber) *Service {
	return &Service{
		store:       store,
		pipeline:    pipeline,
		transcriber: transcriber,
		now:         time.Now,
	}
}

func (s *Service) lock(id string) func() {
	h := fnv.New32a()
	h.Write([]byte(id))
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// update 在會話鎖內讀取、修改並保存
func (s *Service) update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	defer s.lock(id)()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Create 建立並開啟新會話
func (s *Service) Create(ctx context.Context) (*Session, error) {
	now := s.now()
	sess := New(now)
	if err := sess.Open(now); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	common.LogInfo("會話建立", zap.String("session_id", sess.ID))
	return sess, nil
}

// Get 取得會話
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

// EditField 更新欄位文字
func (s *Service) EditField(ctx context.Context, id string, kind FieldKind, text string) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		return sess.Edit(kind, text, s.now())
	})
}

// TranscribeField 轉錄錄音並寫入欄位。轉錄在鎖外進行，寫回時再檢查一次狀態
func (s *Service) TranscribeField(ctx context.Context, id string, kind FieldKind, audio []byte) (*Session, error) {
	if err := s.check(ctx, id, EventTranscribe); err != nil {
		return nil, err
	}

	text, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return nil, err
	}

	return s.update(ctx, id, func(sess *Session) error {
		return sess.ApplyTranscription(kind, text, s.now())
	})
}

// check 在鎖內確認會話存在且接受 event
func (s *Service) check(ctx context.Context, id string, event Event) error {
	defer s.lock(id)()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	_, err = Transition(sess.State, event)
	return err
}

// ResetField 清除單一欄位
func (s *Service) ResetField(ctx context.Context, id string, kind FieldKind) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		return sess.ResetField(kind, s.now())
	})
}

// Reset 清除整個表單
func (s *Service) Reset(ctx context.Context, id string) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		return sess.Reset(s.now())
	})
}

// Delete 刪除會話
func (s *Service) Delete(ctx context.Context, id string) error {
	defer s.lock(id)()
	return s.store.Delete(ctx, id)
}

// Submit 送出表單並同步執行食譜流程。流程執行期間會話停在 Submitted，
// 重複送出會被狀態機拒絕
func (s *Service) Submit(ctx context.Context, id string) (*Session, error) {
	var ingredients, preferences string
	var emptyErr error

	_, err := s.update(ctx, id, func(sess *Session) error {
		err := sess.Submit(s.now())
		if errors.Is(err, common.ErrEmptyIngredients) {
			// 旗標已清除，仍要保存
			emptyErr = err
			return nil
		}
		ingredients, preferences = sess.Ingredients.Text, sess.Preferences.Text
		return err
	})
	if err != nil {
		return nil, err
	}
	if emptyErr != nil {
		return nil, emptyErr
	}

	result, runErr := s.pipeline.Run(ctx, ingredients, preferences)

	// 請求可能已逾時，結果仍需寫回
	saveCtx := context.WithoutCancel(ctx)
	sess, err := s.update(saveCtx, id, func(sess *Session) error {
		if runErr != nil {
			return sess.Fail(runErr, s.now())
		}
		return sess.Complete(result.FinalRecipes, result.Warnings, s.now())
	})
	if err != nil {
		common.LogError("寫回會話失敗", zap.String("session_id", id), zap.Error(err))
		if runErr != nil {
			return nil, runErr
		}
		return nil, err
	}
	if runErr != nil {
		common.LogWarn("食譜流程失敗", zap.String("session_id", id), zap.Error(runErr))
		return nil, runErr
	}
	return sess, nil
}

// Document 取得可下載的食譜文字
func (s *Service) Document(ctx context.Context, id string) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.HasDocument() {
		return nil, common.ErrNoDocument
	}
	return sess, nil
}

// Ping 檢查儲存是否可用
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
