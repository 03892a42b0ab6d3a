package document

import "regexp"

var (
	boldPattern    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern  = regexp.MustCompile(`\*(.*?)\*`)
	headingPattern = regexp.MustCompile(`(?m)^#+\s*`)
	rulePattern    = regexp.MustCompile(`(?m)^-{3,}$`)
)

// CleanMarkdown 移除粗體、斜體、標題符號與分隔線，其餘文字不變
func CleanMarkdown(text string) string {
	text = boldPattern.ReplaceAllString(text, "$1")
	text = italicPattern.ReplaceAllString(text, "$1")
	text = headingPattern.ReplaceAllString(text, "")
	text = rulePattern.ReplaceAllString(text, "")
	return text
}
