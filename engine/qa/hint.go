package qa

import (
	"regexp"
	"strings"
)

var (
	objectHintPattern = regexp.MustCompile(`return\s+(\{[^}]+\})`)
	listHintPattern   = regexp.MustCompile(`return\s+(list\[[^\]]+\])`)
)

// InferFormatHint reads the expected answer shape from the question's
// phrasing. Questions without a recognizable phrase get "str".
func InferFormatHint(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "return an integer"):
		return "int"
	case strings.Contains(q, "return a float"), strings.Contains(q, "rounded to 2 decimals"):
		return "float"
	}
	if m := objectHintPattern.FindStringSubmatch(q); m != nil {
		return m[1]
	}
	if m := listHintPattern.FindStringSubmatch(q); m != nil {
		return m[1]
	}
	if strings.Contains(q, "return list of") || strings.Contains(q, "return a list") {
		return "list"
	}
	return "str"
}

// ResolveFormatHint prefers an explicit hint over inference.
func ResolveFormatHint(q Question) string {
	if hint := strings.TrimSpace(q.FormatHint); hint != "" {
		return hint
	}
	return InferFormatHint(q.Text)
}
