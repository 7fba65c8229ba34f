// Package htmlsanitize cleans user-supplied text before it is stored or
// shown in the admin portal.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// rich allows the formatting an admin uses when composing a notification.
	rich = func() *bluemonday.Policy {
		p := bluemonday.UGCPolicy()
		p.AllowElements("u", "s", "mark")
		p.AllowAttrs("class").OnElements("table", "tr", "td", "th", "p", "span")
		return p
	}()

	// strict removes every tag. Inquiry messages and names are plain text.
	strict = bluemonday.StrictPolicy()
)

// Sanitize keeps safe formatting markup and drops scripts, event handlers
// and unsafe URLs.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return rich.Sanitize(s)
}

// StripTags removes all markup and returns the text content, trimmed.
// Entities bluemonday escapes are decoded back so the stored text reads
// the way it was typed.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains nothing that looks like a tag.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainTextToHTML escapes s and turns newlines into <br> inside a paragraph.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(s)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

// PrepareForDisplay returns markup safe to embed in a page. Plain text is
// wrapped, markup is sanitized.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return template.HTML(Sanitize(s))
}
