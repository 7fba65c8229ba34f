// Package customid generates the human-facing record codes shown in
// tables (USR-1A2B3C4D, PROP-..., AGT-...).
package customid

import (
	"strings"

	"github.com/google/uuid"
)

// Prefixes per record type.
const (
	User     = "USR"
	Agent    = "AGT"
	Property = "PROP"
)

// New returns prefix + "-" + eight upper-case hex characters.
func New(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(id[:8])
}
