package recipe

import (
	"regexp"
	"strings"
)

var (
	dishNamePattern = regexp.MustCompile(`Dish\s*\d+:\s*([^\n]+)`)
	listMarker      = regexp.MustCompile(`^(?:[-*•+]\s+|\d+[.)]\s+)`)
)

// 名稱與食材之間的分隔，依優先順序嘗試
var dishSeparators = []string{"—", "–", " - ", ":"}

// SplitByHeading 將文字依 "Dish" 開頭的行切分成多段；
// 第一個標題之前的內容（例如招呼語）會被捨棄
func SplitByHeading(text string) []RecipeGroup {
	var (
		groups  []RecipeGroup
		current *RecipeGroup
		body    strings.Builder
	)

	flush := func() {
		if current != nil {
			current.Body = body.String()
			groups = append(groups, *current)
		}
		body.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(line), "dish") {
			flush()
			current = &RecipeGroup{Title: line}
			continue
		}
		if current != nil {
			body.WriteString(line)
			body.WriteString("\n")
		}
	}
	flush()

	return groups
}

// ExtractDishName 取出第一個 "Dish N: 名稱" 的名稱，找不到回傳 false
func ExtractDishName(text string) (string, bool) {
	m := dishNamePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseIdeas 盡力解析 "名稱 — 食材, 食材" 格式的清單
func ParseIdeas(text string) []DishIdea {
	var ideas []DishIdea
	for _, line := range strings.Split(text, "\n") {
		name, ingredients, ok := parseDishLine(line)
		if !ok {
			continue
		}
		ideas = append(ideas, DishIdea{Name: name, Ingredients: ingredients})
	}
	return ideas
}

// ParseFilteredDishes 解析第二階段的輸出，每行一道菜
func ParseFilteredDishes(text string) []FilteredDish {
	var dishes []FilteredDish
	for _, line := range strings.Split(text, "\n") {
		name, ingredients, ok := parseDishLine(line)
		if !ok {
			continue
		}
		dishes = append(dishes, FilteredDish{Name: name, Ingredients: ingredients})
	}
	return dishes
}

func parseDishLine(line string) (string, []string, bool) {
	line = strings.TrimSpace(line)
	line = listMarker.ReplaceAllString(line, "")
	line = strings.ReplaceAll(line, "**", "")
	if line == "" {
		return "", nil, false
	}

	var name, rest string
	for _, sep := range dishSeparators {
		if before, after, found := strings.Cut(line, sep); found {
			name, rest = strings.TrimSpace(before), after
			break
		}
	}
	if name == "" {
		return "", nil, false
	}

	var ingredients []string
	for _, ing := range strings.Split(rest, ",") {
		ing = strings.Trim(strings.TrimSpace(ing), ".")
		if ing != "" {
			ingredients = append(ingredients, ing)
		}
	}
	if len(ingredients) == 0 {
		return "", nil, false
	}
	return name, ingredients, true
}
