package text

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxAnalysisChars is the analysis window handed to the model.
	MaxAnalysisChars = 12000
	// MinContentLength is the minimum length of extracted content.
	MinContentLength = 100
	// MinManualContentLength is the minimum length of manually submitted content.
	MinManualContentLength = 50

	ellipsis = "..."
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Clean collapses every whitespace run, newlines included, to a single
// space and trims the result.
func Clean(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Truncate shortens s to at most max runes plus an ellipsis, cutting at the
// last whitespace inside the budget. Strings within budget are returned unchanged.
func Truncate(s string, max int) string {
	if max < 0 {
		max = 0
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}

	cut := r[:max]
	for i := len(cut) - 1; i > 0; i-- {
		if unicode.IsSpace(cut[i]) {
			cut = cut[:i]
			break
		}
	}
	return string(cut) + ellipsis
}

// EstimatePages approximates a page count at 2000 characters per page.
func EstimatePages(s string) int {
	n := len([]rune(s))
	return (n + 1999) / 2000
}
