// ABOUTME: Episode description processing: HTML detection, markdown conversion, plain snippets
// ABOUTME: Feeds ship descriptions as HTML, markdown, or plain text; display needs one shape

package content

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// htmlTagPattern matches common HTML tags seen in feed descriptions.
var htmlTagPattern = regexp.MustCompile(`<\s*(p|div|span|a|br|img|h[1-6]|ul|ol|li|table|tr|td|th|strong|em|b|i|code|pre|blockquote)[^>]*>`)

var (
	tagStripPattern   = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// IsHTML reports whether a description appears to be HTML.
func IsHTML(description string) bool {
	if strings.Contains(description, "<!DOCTYPE") || strings.Contains(description, "<html") {
		return true
	}
	return htmlTagPattern.MatchString(description)
}

// ToMarkdown converts an HTML description to markdown for terminal
// rendering. Non-HTML input is returned unchanged, and a conversion
// failure falls back to the original text rather than erroring.
func ToMarkdown(description string) string {
	if description == "" || !IsHTML(description) {
		return description
	}

	markdown, err := htmltomarkdown.ConvertString(description)
	if err != nil {
		return description
	}
	return strings.TrimSpace(markdown)
}

// Snippet returns a single-line plain-text preview of a description,
// stripped of markup and collapsed whitespace, truncated to maxLen runes
// with an ellipsis.
func Snippet(description string, maxLen int) string {
	text := tagStripPattern.ReplaceAllString(description, " ")
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))

	runes := []rune(text)
	if maxLen <= 0 || len(runes) <= maxLen {
		return text
	}
	return strings.TrimSpace(string(runes[:maxLen])) + "…"
}
