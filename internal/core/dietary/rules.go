// Package dietary 以固定關鍵字表重新檢查料理是否符合使用者的飲食限制
package dietary

import (
	"regexp"
	"sort"
	"strings"
)

// Category 可被飲食限制排除的一組食材關鍵字
type Category string

const (
	Meat      Category = "meat"
	Fish      Category = "fish"
	Shellfish Category = "shellfish"
	Pork      Category = "pork"
	Dairy     Category = "dairy"
	Egg       Category = "egg"
	Honey     Category = "honey"
	Gluten    Category = "gluten"
	Nuts      Category = "nuts"
)

var keywords = map[Category][]string{
	Meat: {
		"meat", "chicken", "beef", "pork", "bacon", "ham", "lamb", "turkey", "sausage",
		"veal", "duck", "goat", "mutton", "salami", "pepperoni", "prosciutto", "pancetta",
		"chorizo", "steak", "meatball", "venison", "brisket", "mince", "jerky", "hot dog",
	},
	Fish: {
		"fish", "salmon", "tuna", "cod", "tilapia", "anchovy", "anchovies", "sardine",
		"trout", "mackerel", "halibut", "haddock", "herring", "fish sauce",
	},
	Shellfish: {
		"shellfish", "shrimp", "prawn", "crab", "lobster", "clam", "mussel", "oyster",
		"scallop", "squid", "calamari", "octopus", "crawfish",
	},
	Pork: {
		"pork", "bacon", "ham", "prosciutto", "pancetta", "lard", "chorizo", "pepperoni", "salami",
	},
	Dairy: {
		"milk", "cheese", "butter", "cream", "yogurt", "yoghurt", "ghee", "paneer", "mozzarella",
		"cheddar", "parmesan", "ricotta", "feta", "whey", "buttermilk", "custard", "mascarpone",
	},
	Egg: {
		"egg", "mayonnaise", "mayo", "meringue",
	},
	Honey: {
		"honey",
	},
	Gluten: {
		"gluten", "flour", "wheat", "bread", "pasta", "couscous", "barley", "rye", "noodle",
		"spaghetti", "breadcrumb", "tortilla", "semolina",
	},
	Nuts: {
		"nut", "peanut", "almond", "cashew", "walnut", "pecan", "hazelnut", "pistachio", "macadamia",
	},
}

// exclusions 比對前先移除的片語，例如 coconut milk 不算乳製品
var exclusions = map[Category][]string{
	Dairy: {
		"coconut milk", "almond milk", "oat milk", "soy milk", "rice milk", "cashew milk",
		"peanut butter", "almond butter", "cashew butter", "cocoa butter", "apple butter",
		"nut butter", "seed butter", "sunflower butter", "shea butter",
		"butter beans", "butter bean", "butter lettuce",
		"cream of tartar", "coconut cream", "cashew cream", "oat cream", "soy cream",
		"soy yogurt", "coconut yogurt", "oat yogurt", "almond yogurt", "cashew yogurt",
		"soy yoghurt", "coconut yoghurt", "oat yoghurt", "almond yoghurt",
		"vegan cheese", "vegan butter", "dairy-free", "non-dairy",
	},
	Egg: {
		"vegan mayo", "egg-free", "flax eggs", "flax egg", "chia eggs", "chia egg", "egg replacer",
	},
	Gluten: {
		"rice flour", "almond flour", "coconut flour", "chickpea flour", "corn flour",
		"rice noodle", "rice noodles", "gluten-free",
	},
	Meat: {
		"vegan sausage", "veggie sausage", "plant-based",
	},
}

// aliases 將 "no ..." 之後的字對應到整個分類
var aliases = map[string][]Category{
	"meat":      {Meat},
	"meats":     {Meat},
	"fish":      {Fish},
	"seafood":   {Fish, Shellfish},
	"shellfish": {Shellfish},
	"pork":      {Pork},
	"dairy":     {Dairy},
	"lactose":   {Dairy},
	"milk":      {Dairy},
	"egg":       {Egg},
	"eggs":      {Egg},
	"honey":     {Honey},
	"gluten":    {Gluten},
	"wheat":     {Gluten},
	"nuts":      {Nuts},
	"nut":       {Nuts},
	"tree nuts": {Nuts},
}

// Rules 飲食偏好的結構化結果
type Rules struct {
	Vegetarian bool
	Vegan      bool
	Kosher     bool
	// Avoid 沒有對應分類的字面詞
	Avoid []string
	// Excluded 過敏或避免項目排除的分類
	Excluded []Category
}

// Empty 是否沒有辨識出任何規則
func (r Rules) Empty() bool {
	return !r.Vegetarian && !r.Vegan && !r.Kosher && len(r.Avoid) == 0 && len(r.Excluded) == 0
}

var (
	itemSplit     = regexp.MustCompile(`[,;\n]+`)
	termSplit     = regexp.MustCompile(`\s+(?:and|or)\s+|/|&`)
	avoidPrefixes = []string{"no ", "avoid ", "without ", "allergic to ", "allergy to ", "allergies to ", "not ", "free of "}
	freeSuffix    = regexp.MustCompile(`^(.+?)[\s-]free$`)
)

// ParseRestrictions 將正規化後的偏好清單（如 "no peanuts, Kosher only"）轉為 Rules
func ParseRestrictions(prefs string) Rules {
	p := parser{seenCat: map[Category]bool{}, seenAvoid: map[string]bool{}}

	for _, item := range itemSplit.Split(strings.ToLower(prefs), -1) {
		item = trimItem(item)
		if item == "" || item == "none" || strings.Contains(item, "restriction") {
			continue
		}

		switch {
		case strings.Contains(item, "vegan"):
			p.rules.Vegan = true
			p.rules.Vegetarian = true
			continue
		case strings.Contains(item, "vegetarian"):
			p.rules.Vegetarian = true
			continue
		case strings.Contains(item, "kosher"):
			p.rules.Kosher = true
			continue
		}

		if rest, ok := cutAvoidPrefix(item); ok {
			p.addTerms(rest)
			continue
		}
		if m := freeSuffix.FindStringSubmatch(item); m != nil {
			p.addTerms(m[1])
		}
	}

	sort.Slice(p.rules.Excluded, func(i, j int) bool { return p.rules.Excluded[i] < p.rules.Excluded[j] })
	return p.rules
}

type parser struct {
	rules     Rules
	seenCat   map[Category]bool
	seenAvoid map[string]bool
}

// addTerms 處理前綴後 "peanuts and shellfish" 這類清單
func (p *parser) addTerms(s string) {
	for _, term := range termSplit.Split(s, -1) {
		p.addTerm(trimItem(term))
	}
}

func (p *parser) addTerm(term string) {
	if term == "" {
		return
	}
	if cats, ok := aliases[term]; ok {
		for _, c := range cats {
			if !p.seenCat[c] {
				p.seenCat[c] = true
				p.rules.Excluded = append(p.rules.Excluded, c)
			}
		}
		return
	}
	if !p.seenAvoid[term] {
		p.seenAvoid[term] = true
		p.rules.Avoid = append(p.rules.Avoid, term)
	}
}

func cutAvoidPrefix(item string) (string, bool) {
	for _, prefix := range avoidPrefixes {
		if rest, ok := strings.CutPrefix(item, prefix); ok {
			return rest, true
		}
	}
	return "", false
}

func trimItem(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".!*-•: ")
}
