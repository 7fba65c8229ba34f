// Package normalize cleans user-entered values before they are stored.
package normalize

import (
	"strings"
	"unicode"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding space and collapses inner runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Phone keeps digits and a leading '+'.
func Phone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Upper trims and upper-cases a code value (listing types).
func Upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Lower trims and lower-cases a code value (statuses, user types).
func Lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
