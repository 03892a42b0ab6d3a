package dietary

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Mode 流程如何處理違反限制的料理
type Mode string

const (
	ModeOff     Mode = "off"
	ModeWarn    Mode = "warn"
	ModeEnforce Mode = "enforce"
)

// Violation 料理違反規則的一個原因
type Violation struct {
	Rule       string // vegetarian, vegan, kosher, avoid
	Ingredient string // matched text
	Reason     string
}

// String 以 "規則: 原因" 呈現
func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Reason)
}

var (
	patternsOnce sync.Once
	patterns     map[Category]*regexp.Regexp
)

func categoryPattern(c Category) *regexp.Regexp {
	patternsOnce.Do(func() {
		patterns = make(map[Category]*regexp.Regexp, len(keywords))
		for cat, words := range keywords {
			patterns[cat] = wordPattern(words...)
		}
	})
	return patterns[c]
}

// wordPattern 以完整單字比對，允許 s/es 複數
func wordPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)(?:s|es)?\b`)
}

// singular 粗略去掉英文複數，讓 peanuts 也能比對到 peanut
func singular(term string) string {
	switch {
	case strings.HasSuffix(term, "oes") && len(term) > 4:
		return strings.TrimSuffix(term, "es")
	case strings.HasSuffix(term, "ies") && len(term) > 4:
		return strings.TrimSuffix(term, "ies") + "y"
	case strings.HasSuffix(term, "s") && !strings.HasSuffix(term, "ss") && len(term) > 3:
		return strings.TrimSuffix(term, "s")
	}
	return term
}

// substitutePrefix 植物性替代品，如 vegan cheese、plant-based sausage
var substitutePrefix = regexp.MustCompile(`\b(?:vegan|plant-based|plant based|dairy-free|egg-free|meatless|meat-free)\s+[a-z-]+`)

// animal 分類遇到替代品前綴時不算違反；過敏原分類不受影響
var animal = map[Category]bool{
	Meat: true, Fish: true, Shellfish: true, Pork: true, Dairy: true, Egg: true, Honey: true,
}

// find 移除分類的排除片語後，回傳 text 中第一個符合的關鍵字
func find(c Category, text string) string {
	if animal[c] {
		text = substitutePrefix.ReplaceAllString(text, " ")
	}
	for _, phrase := range exclusions[c] {
		text = strings.ReplaceAll(text, phrase, " ")
	}
	return categoryPattern(c).FindString(text)
}

// Check 回傳料理違反的所有規則，名稱與食材不分大小寫比對
func Check(name string, ingredients []string, rules Rules) []Violation {
	if rules.Empty() {
		return nil
	}
	text := strings.ToLower(name + " " + strings.Join(ingredients, ", "))

	var out []Violation
	excluded := func(rule string, cats ...Category) {
		for _, c := range cats {
			if hit := find(c, text); hit != "" {
				out = append(out, Violation{
					Rule:       rule,
					Ingredient: hit,
					Reason:     fmt.Sprintf("contains %s (%s)", c, hit),
				})
			}
		}
	}

	switch {
	case rules.Vegan:
		excluded("vegan", Meat, Fish, Shellfish, Dairy, Egg, Honey)
	case rules.Vegetarian:
		excluded("vegetarian", Meat, Fish, Shellfish)
	}

	if rules.Kosher {
		excluded("kosher", Pork, Shellfish)
		meat := find(Meat, text)
		dairy := find(Dairy, text)
		if meat != "" && dairy != "" {
			out = append(out, Violation{
				Rule:       "kosher",
				Ingredient: meat + "+" + dairy,
				Reason:     fmt.Sprintf("mixes meat (%s) and dairy (%s)", meat, dairy),
			})
		}
	}

	excluded("avoid", rules.Excluded...)

	for _, term := range rules.Avoid {
		if hit := wordPattern(singular(term)).FindString(text); hit != "" {
			out = append(out, Violation{
				Rule:       "avoid",
				Ingredient: hit,
				Reason:     fmt.Sprintf("contains %s", hit),
			})
		}
	}

	return dedupe(out)
}

func dedupe(vs []Violation) []Violation {
	if len(vs) < 2 {
		return vs
	}
	seen := make(map[string]bool, len(vs))
	out := vs[:0]
	for _, v := range vs {
		key := v.Rule + "|" + v.Ingredient
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
