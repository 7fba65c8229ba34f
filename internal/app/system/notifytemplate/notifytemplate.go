// Package notifytemplate fills {{placeholder}} slots in notification
// messages.
package notifytemplate

import (
	"html"
	"regexp"

	"github.com/homeandown/estatehub/internal/app/system/htmlsanitize"
)

var slot = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Placeholders lists the distinct slot names in content, in order of first use.
func Placeholders(content string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, m := range slot.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// Render substitutes vars into content and sanitizes the result. Values are
// escaped before substitution so they cannot inject markup. Slots with no
// value are left as written.
func Render(content string, vars map[string]string) string {
	filled := slot.ReplaceAllStringFunc(content, func(m string) string {
		name := slot.FindStringSubmatch(m)[1]
		v, ok := vars[name]
		if !ok {
			return m
		}
		return html.EscapeString(v)
	})
	return htmlsanitize.Sanitize(filled)
}
