package recipe

import "time"

// Mode 標準化模式
type Mode string

const (
	ModeIngredients Mode = "ingredients"
	ModePreferences Mode = "preferences"
)

// 各階段溫度
const (
	NormalizeTemperature = 0.3
	IdeasTemperature     = 0.9
	FilterTemperature    = 0.5
	ExpandTemperature    = 0.7
)

// 階段名稱（日誌與計時用）
const (
	StageNormalizeIngredients = "normalize_ingredients"
	StageNormalizePreferences = "normalize_preferences"
	StageIdeas                = "ideas"
	StageFilter               = "filter"
	StageRuleCheck            = "rule_check"
	StageExpand               = "expand"
)

// DishIdea 第一階段解析出的點子
type DishIdea struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

// FilteredDish 第二階段保留的菜色
type FilteredDish struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

// RecipeGroup 以 "Dish" 開頭的標題與其內文
type RecipeGroup struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Result 整條流程的輸出
type Result struct {
	Ingredients  string                   `json:"ingredients"`
	Preferences  string                   `json:"preferences"`
	Ideas        string                   `json:"ideas"`
	Filtered     string                   `json:"filtered"`
	FinalRecipes string                   `json:"final_recipes"`
	Warnings     []string                 `json:"warnings,omitempty"`
	Durations    map[string]time.Duration `json:"-"`
}

// Dishes 依標題切分最終食譜
func (r *Result) Dishes() []RecipeGroup {
	return SplitByHeading(r.FinalRecipes)
}
