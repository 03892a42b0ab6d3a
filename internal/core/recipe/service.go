// Package recipe 將食材與飲食限制轉成 2 到 4 道完整食譜：
// 正規化 → 點子 → 飲食過濾 → 規則檢查 → 展開
package recipe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cooking-buddy/internal/core/ai/provider"
	"cooking-buddy/internal/core/ai/service"
	"cooking-buddy/internal/core/dietary"
	"cooking-buddy/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 食譜流程服務
type Service struct {
	aiService   *service.Service
	dietaryMode dietary.Mode
}

// NewService 創建新的食譜服務，未知的 mode 視為 enforce
func NewService(aiService *service.Service, mode dietary.Mode) *Service {
	switch mode {
	case dietary.ModeOff, dietary.ModeWarn, dietary.ModeEnforce:
	default:
		mode = dietary.ModeEnforce
	}
	return &Service{
		aiService:   aiService,
		dietaryMode: mode,
	}
}

// DietaryMode 目前的規則檢查模式
func (s *Service) DietaryMode() dietary.Mode {
	return s.dietaryMode
}

func (s *Service) complete(ctx context.Context, stage, system, user string, temperature float64, cacheable bool) (string, error) {
	resp, err := s.aiService.ProcessRequest(ctx, service.Call{
		Stage:       stage,
		Messages:    []provider.Message{provider.System(system), provider.User(user)},
		Temperature: temperature,
		Cacheable:   cacheable,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Normalize 將口語輸入整理為逗號分隔清單；mode 錯誤時不會呼叫模型
func (s *Service) Normalize(ctx context.Context, rawText string, mode Mode) (string, error) {
	var system, stage string
	switch mode {
	case ModeIngredients:
		system, stage = normalizeIngredientsPrompt, StageNormalizeIngredients
	case ModePreferences:
		system, stage = normalizePreferencesPrompt, StageNormalizePreferences
	default:
		return "", common.ErrInvalidMode.Wrap(fmt.Errorf("mode %q", mode))
	}
	return s.complete(ctx, stage, system, strings.TrimSpace(rawText), NormalizeTemperature, true)
}

// GenerateIdeas 產生 15-20 個料理點子（數量不強制）
func (s *Service) GenerateIdeas(ctx context.Context, ingredients, preferences string) (string, error) {
	return s.complete(ctx, StageIdeas, ideasPrompt, ideasUserPrompt(ingredients, preferences), IdeasTemperature, false)
}

// FilterDishes 由模型挑出完全符合飲食限制的 2-4 道菜
func (s *Service) FilterDishes(ctx context.Context, preferences, ideas string) (string, error) {
	return s.complete(ctx, StageFilter, filterPrompt, filterUserPrompt(preferences, ideas), FilterTemperature, false)
}

// ExpandRecipes 將過濾後的清單展開成完整食譜
func (s *Service) ExpandRecipes(ctx context.Context, filtered string) (string, error) {
	return s.complete(ctx, StageExpand, expandPrompt, expandUserPrompt(filtered), ExpandTemperature, false)
}

// CheckDishes 以固定關鍵字表複查過濾結果，回傳要送去展開的文字與警告
func (s *Service) CheckDishes(filtered, preferences string) (string, []string, error) {
	if s.dietaryMode == dietary.ModeOff {
		return filtered, nil, nil
	}
	rules := dietary.ParseRestrictions(preferences)
	if rules.Empty() {
		return filtered, nil, nil
	}

	var (
		kept     []string
		warnings []string
		parsed   int
		passed   int
	)
	for _, line := range strings.Split(filtered, "\n") {
		name, ingredients, ok := parseDishLine(line)
		if !ok {
			kept = append(kept, line)
			continue
		}
		parsed++

		violations := dietary.Check(name, ingredients, rules)
		if len(violations) == 0 {
			passed++
			kept = append(kept, line)
			continue
		}

		reasons := make([]string, len(violations))
		for i, v := range violations {
			reasons[i] = v.String()
		}
		if s.dietaryMode == dietary.ModeWarn {
			kept = append(kept, line)
			warnings = append(warnings, fmt.Sprintf("%s may not fit your restrictions (%s)", name, strings.Join(reasons, "; ")))
			continue
		}
		warnings = append(warnings, fmt.Sprintf("removed %s (%s)", name, strings.Join(reasons, "; ")))
	}

	if parsed == 0 {
		return filtered, []string{"could not read the dish list to double-check restrictions"}, nil
	}
	if s.dietaryMode == dietary.ModeEnforce && passed == 0 {
		return "", warnings, common.ErrNoCompliantDishes.Wrap(fmt.Errorf("all %d dishes violate restrictions %q", parsed, preferences))
	}
	return strings.TrimSpace(strings.Join(kept, "\n")), warnings, nil
}

// Run 依序執行整條流程，任一階段失敗即中止
func (s *Service) Run(ctx context.Context, rawIngredients, rawPreferences string) (*Result, error) {
	if strings.TrimSpace(rawIngredients) == "" {
		return nil, common.ErrEmptyIngredients
	}

	start := time.Now()
	result := &Result{Durations: make(map[string]time.Duration, 6)}
	timed := func(stage string, fn func() error) error {
		t := time.Now()
		err := fn()
		result.Durations[stage] = time.Since(t)
		return err
	}

	var err error
	if err = timed(StageNormalizeIngredients, func() error {
		result.Ingredients, err = s.Normalize(ctx, rawIngredients, ModeIngredients)
		return err
	}); err != nil {
		return nil, err
	}
	if err = timed(StageNormalizePreferences, func() error {
		result.Preferences, err = s.Normalize(ctx, rawPreferences, ModePreferences)
		return err
	}); err != nil {
		return nil, err
	}
	if err = timed(StageIdeas, func() error {
		result.Ideas, err = s.GenerateIdeas(ctx, result.Ingredients, result.Preferences)
		return err
	}); err != nil {
		return nil, err
	}
	if err = timed(StageFilter, func() error {
		result.Filtered, err = s.FilterDishes(ctx, result.Preferences, result.Ideas)
		return err
	}); err != nil {
		return nil, err
	}

	toExpand := result.Filtered
	if err = timed(StageRuleCheck, func() error {
		toExpand, result.Warnings, err = s.CheckDishes(result.Filtered, result.Preferences)
		return err
	}); err != nil {
		common.LogWarn("飲食規則檢查未通過",
			zap.String("preferences", result.Preferences),
			zap.Strings("warnings", result.Warnings),
			zap.String("request_id", common.RequestIDFrom(ctx)))
		return nil, err
	}

	if err = timed(StageExpand, func() error {
		result.FinalRecipes, err = s.ExpandRecipes(ctx, toExpand)
		return err
	}); err != nil {
		return nil, err
	}

	common.LogInfo("食譜流程完成",
		zap.Duration("duration", time.Since(start)),
		zap.Int("dishes", len(result.Dishes())),
		zap.Int("warnings", len(result.Warnings)),
		zap.String("request_id", common.RequestIDFrom(ctx)))

	return result, nil
}
