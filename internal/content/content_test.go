// ABOUTME: Tests for description HTML detection, markdown conversion, and snippets
// ABOUTME: Table tests over HTML, plain text, and truncation edge cases

package content

import (
	"strings"
	"testing"
)

func TestIsHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"paragraph tag", "<p>An episode about flow</p>", true},
		{"anchor tag", `Listen <a href="https://x">here</a>`, true},
		{"full document", "<!DOCTYPE html><html></html>", true},
		{"plain text", "Just a plain description", false},
		{"angle brackets in prose", "queue depth < 5 and > 2", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHTML(tt.input); got != tt.want {
				t.Errorf("IsHTML(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestToMarkdown_HTML(t *testing.T) {
	got := ToMarkdown("<p>An episode about <strong>flow</strong></p>")
	if !strings.Contains(got, "flow") {
		t.Errorf("ToMarkdown lost content: %q", got)
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("ToMarkdown left HTML tags: %q", got)
	}
}

func TestToMarkdown_PlainTextUnchanged(t *testing.T) {
	input := "Already plain text"
	if got := ToMarkdown(input); got != input {
		t.Errorf("ToMarkdown(%q) = %q, want unchanged", input, got)
	}
}

func TestToMarkdown_Empty(t *testing.T) {
	if got := ToMarkdown(""); got != "" {
		t.Errorf("ToMarkdown(\"\") = %q, want empty", got)
	}
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"strips tags", "<p>Hello <b>world</b></p>", 80, "Hello world"},
		{"collapses whitespace", "a\n\n  b\tc", 80, "a b c"},
		{"truncates", "abcdefghij", 5, "abcde…"},
		{"short enough", "abc", 5, "abc"},
		{"zero max keeps all", "abc def", 0, "abc def"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Snippet(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("Snippet(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
