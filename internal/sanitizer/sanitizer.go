// Package sanitizer turns markdown-flavoured model output into plain prose.
package sanitizer

import (
	"regexp"
	"strings"
)

// Rule is one deletion applied to model output. Every rule only removes
// characters, which is what lets Sanitize iterate to a fixed point.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// Rules lists the transformations in the order they are applied.
var Rules = []Rule{
	{Name: "emphasis", Pattern: regexp.MustCompile(`\*{1,2}`)},
	{Name: "heading", Pattern: regexp.MustCompile(`#{1,6}`)},
	{Name: "bullet", Pattern: regexp.MustCompile(`(^|\n)\s*[-•]\s*`), Replacement: "$1"},
	{Name: "numbered", Pattern: regexp.MustCompile(`(^|\n)\s*\d+\.\s*`), Replacement: "$1"},
}

func applyOnce(text string) string {
	for _, rule := range Rules {
		text = rule.Pattern.ReplaceAllString(text, rule.Replacement)
	}
	return strings.TrimSpace(text)
}

// Sanitize strips emphasis, heading, bullet and numbered-list markers and
// trims surrounding whitespace. The rules are re-applied until the text is
// stable, so Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(text string) string {
	for {
		next := applyOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}
