package linkedin

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	headingRe = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
	bulletRe  = regexp.MustCompile(`(?m)^\s*[-*+]\s+\S`)
	boldRe    = regexp.MustCompile(`\*\*[^*\n]+\*\*|__[^_\n]+__`)
	linkRe    = regexp.MustCompile(`\[[^\]\n]+\]\(https?://[^)\s]+\)`)
	fenceRe   = regexp.MustCompile("(?m)^```")
)

// MaxCommentaryLength is the LinkedIn limit for post text
const MaxCommentaryLength = 3000

// LintMarkdown reports Markdown that LinkedIn would show literally.
// The checks are advisory; nothing is rewritten.
func LintMarkdown(text string) []string {
	var warnings []string
	if headingRe.MatchString(text) {
		warnings = append(warnings, "contains Markdown headings")
	}
	if bulletRe.MatchString(text) {
		warnings = append(warnings, "contains Markdown bullet lists")
	}
	if boldRe.MatchString(text) {
		warnings = append(warnings, "contains Markdown bold markers")
	}
	if linkRe.MatchString(text) {
		warnings = append(warnings, "contains Markdown links")
	}
	if fenceRe.MatchString(text) {
		warnings = append(warnings, "contains code fences")
	}
	if n := len([]rune(text)); n > MaxCommentaryLength {
		warnings = append(warnings, fmt.Sprintf("exceeds %d characters (%d)", MaxCommentaryLength, n))
	}
	if !strings.Contains(text, "http://") && !strings.Contains(text, "https://") {
		warnings = append(warnings, "does not include a link to the original post")
	}
	return warnings
}
