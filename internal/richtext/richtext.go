// Package richtext turns the editor's HTML into short plain previews.
package richtext

import (
	"regexp"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// DefaultExcerptLength is the preview length used by question listings.
const DefaultExcerptLength = 200

var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|u|s|strong|em|a|ul|ol|li|h[1-6]|blockquote|pre|code|img)[\s>/]`)

// ContainsHTML reports whether s appears to contain editor markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// ToMarkdown converts HTML to Markdown. Input without HTML, or input the
// converter rejects, is returned unchanged.
func ToMarkdown(s string) string {
	if s == "" || !ContainsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}

// Excerpt renders s as single-line text of at most max runes, cutting at a
// word boundary and appending an ellipsis when shortened.
func Excerpt(s string, max int) string {
	text := strings.Join(strings.Fields(ToMarkdown(s)), " ")
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " .,;:") + "…"
}
