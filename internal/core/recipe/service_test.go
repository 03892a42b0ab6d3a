package recipe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cooking-buddy/internal/core/ai/provider"
	"cooking-buddy/internal/core/ai/provider/providertest"
	"cooking-buddy/internal/core/ai/service"
	"cooking-buddy/internal/core/dietary"
	"cooking-buddy/internal/pkg/common"
)

const (
	testIdeas = `- Fluffy Cloud Crepes ☁️ — eggs, flour, milk
- Ham & Cheese Crepe Stack 🥞 — eggs, flour, milk, ham, cheese
- Golden Puffy Popovers ✨ — eggs, flour, milk, butter`

	// 模型誤放了一道含肉的菜
	testFiltered = `Fluffy Cloud Crepes ☁️ — eggs, flour, milk
Ham & Cheese Crepe Stack 🥞 — eggs, flour, milk, ham, cheese
Golden Puffy Popovers ✨ — eggs, flour, milk, butter`

	testRecipes = `Hey friend! 👋 Ready to cook?

Dish 1: Fluffy Cloud Crepes ☁️

Ingredients: 2 eggs, 1 cup flour, 1 cup milk

Dish 2: Golden Puffy Popovers ✨

Ingredients: 2 eggs, 1 cup flour, 1 cup milk, 1 tbsp butter`
)

// pipelineFake 依系統指令回覆對應階段
func pipelineFake(t *testing.T, filtered string) *providertest.Fake {
	t.Helper()
	return &providertest.Fake{Respond: func(req *provider.Request) (string, error) {
		switch providertest.SystemPrompt(req) {
		case normalizeIngredientsPrompt:
			return "eggs, flour, milk", nil
		case normalizePreferencesPrompt:
			return "vegetarian", nil
		case ideasPrompt:
			return testIdeas, nil
		case filterPrompt:
			return filtered, nil
		case expandPrompt:
			if strings.Contains(providertest.UserPrompt(req), "Ham") {
				t.Errorf("expansion received a meat dish: %q", providertest.UserPrompt(req))
			}
			return testRecipes, nil
		}
		return "", errors.New("unexpected prompt")
	}}
}

func newTestService(fake *providertest.Fake, mode dietary.Mode) *Service {
	common.InitTestLogger()
	return NewService(service.NewService(fake, nil), mode)
}

func TestRunProducesRecipes(t *testing.T) {
	fake := pipelineFake(t, testFiltered)
	svc := newTestService(fake, dietary.ModeEnforce)

	result, err := svc.Run(context.Background(), "I have eggs, some flour and milk", "I'm vegetarian")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dishes := result.Dishes()
	if len(dishes) < 2 || len(dishes) > 4 {
		t.Fatalf("expected 2-4 dishes, got %d", len(dishes))
	}
	for _, d := range dishes {
		if v := dietary.Check(d.Title, []string{d.Body}, dietary.Rules{Vegetarian: true}); len(v) > 0 {
			t.Fatalf("dish %q violates vegetarian: %v", d.Title, v)
		}
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "Ham & Cheese") {
		t.Fatalf("expected one removal warning, got %v", result.Warnings)
	}

	reqs := fake.Requests()
	if len(reqs) != 5 {
		t.Fatalf("expected 5 completion calls, got %d", len(reqs))
	}
	wantTemps := []float64{0.3, 0.3, 0.9, 0.5, 0.7}
	for i, req := range reqs {
		if req.Temperature != wantTemps[i] {
			t.Errorf("call %d temperature = %v, want %v", i, req.Temperature, wantTemps[i])
		}
	}
	if got := providertest.UserPrompt(reqs[0]); got != "I have eggs, some flour and milk" {
		t.Errorf("normalizer user message = %q", got)
	}
	if got := providertest.UserPrompt(reqs[2]); !strings.Contains(got, "I have these ingredients: eggs, flour, milk.") ||
		!strings.Contains(got, "My dietary restrictions are: vegetarian.") {
		t.Errorf("ideas user message = %q", got)
	}
}

func TestRunRejectsEmptyIngredients(t *testing.T) {
	fake := pipelineFake(t, testFiltered)
	svc := newTestService(fake, dietary.ModeEnforce)

	_, err := svc.Run(context.Background(), "   ", "vegan")
	if !errors.Is(err, common.ErrEmptyIngredients) {
		t.Fatalf("expected empty ingredients error, got %v", err)
	}
	if n := len(fake.Requests()); n != 0 {
		t.Fatalf("expected no completion calls, got %d", n)
	}
}

func TestRunStopsAtFailingStage(t *testing.T) {
	fake := &providertest.Fake{Respond: func(req *provider.Request) (string, error) {
		if providertest.SystemPrompt(req) == ideasPrompt {
			return "", errors.New("rate limited")
		}
		return "eggs", nil
	}}
	svc := newTestService(fake, dietary.ModeEnforce)

	_, err := svc.Run(context.Background(), "eggs", "")
	if !errors.Is(err, common.ErrAIServiceError) {
		t.Fatalf("expected AI service error, got %v", err)
	}
	if n := len(fake.Requests()); n != 3 {
		t.Fatalf("expected 3 calls before abort, got %d", n)
	}
}

func TestRunEnforceFailsWhenNothingComplies(t *testing.T) {
	fake := pipelineFake(t, "Bacon Pancakes — eggs, flour, bacon\nChicken Crepes — chicken, flour")
	svc := newTestService(fake, dietary.ModeEnforce)

	_, err := svc.Run(context.Background(), "eggs, flour", "vegetarian")
	if !errors.Is(err, common.ErrNoCompliantDishes) {
		t.Fatalf("expected no compliant dishes, got %v", err)
	}
	for _, req := range fake.Requests() {
		if providertest.SystemPrompt(req) == expandPrompt {
			t.Fatal("expansion must not run")
		}
	}
}

func TestNormalizeInvalidMode(t *testing.T) {
	fake := pipelineFake(t, testFiltered)
	svc := newTestService(fake, dietary.ModeOff)

	_, err := svc.Normalize(context.Background(), "eggs", Mode("spices"))
	if !errors.Is(err, common.ErrInvalidMode) {
		t.Fatalf("expected invalid mode error, got %v", err)
	}
	if n := len(fake.Requests()); n != 0 {
		t.Fatalf("expected no completion calls, got %d", n)
	}
}

func TestNormalizeSendsTrimmedText(t *testing.T) {
	fake := pipelineFake(t, testFiltered)
	svc := newTestService(fake, dietary.ModeOff)

	got, err := svc.Normalize(context.Background(), "  no peanuts please \n", ModePreferences)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "vegetarian" {
		t.Fatalf("unexpected reply %q", got)
	}
	req := fake.Requests()[0]
	if providertest.UserPrompt(req) != "no peanuts please" {
		t.Fatalf("user message not trimmed: %q", providertest.UserPrompt(req))
	}
	if req.Temperature != NormalizeTemperature {
		t.Fatalf("temperature = %v", req.Temperature)
	}
}

func TestCheckDishesModes(t *testing.T) {
	filtered := "Veggie Stir Fry — rice, peas\nShrimp Fried Rice — rice, shrimp"
	veganDishes := "Creamy Cashew Pasta — pasta, cashew cream, garlic\n" +
		"Berry Parfait — soy yogurt, berries, oats\n" +
		"Smoky Butter Bean Stew — butter beans, canned tomatoes, paprika\n" +
		"Fluffy Vegan Pancakes — flour, flax egg, oat milk"

	tests := []struct {
		name         string
		mode         dietary.Mode
		prefs        string
		input        string
		wantText     string
		wantWarnings int
		wantErr      error
	}{
		{"off keeps everything", dietary.ModeOff, "vegetarian", filtered, filtered, 0, nil},
		{"warn keeps and reports", dietary.ModeWarn, "vegetarian", filtered, filtered, 1, nil},
		{"enforce drops", dietary.ModeEnforce, "vegetarian", filtered, "Veggie Stir Fry — rice, peas", 1, nil},
		{"no restrictions", dietary.ModeEnforce, "No restrictions", filtered, filtered, 0, nil},
		{"unparseable passes through", dietary.ModeEnforce, "vegetarian", "just some chat", "just some chat", 1, nil},
		{"plant-based dishes stay vegan", dietary.ModeEnforce, "vegan", veganDishes, veganDishes, 0, nil},
		{"all violate", dietary.ModeEnforce, "vegetarian", "Shrimp Fried Rice — rice, shrimp", "", 1, common.ErrNoCompliantDishes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&providertest.Fake{}, tt.mode)
			text, warnings, err := svc.CheckDishes(tt.input, tt.prefs)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if text != tt.wantText {
				t.Fatalf("text = %q, want %q", text, tt.wantText)
			}
			if len(warnings) != tt.wantWarnings {
				t.Fatalf("warnings = %v, want %d", warnings, tt.wantWarnings)
			}
		})
	}
}
