package customid

import (
	"regexp"
	"testing"
)

func TestNew(t *testing.T) {
	re := regexp.MustCompile(`^PROP-[0-9A-F]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := New(Property)
		if !re.MatchString(id) {
			t.Fatalf("New(PROP) = %q, want PROP-XXXXXXXX", id)
		}
		if seen[id] {
			t.Fatalf("New(PROP) repeated %q", id)
		}
		seen[id] = true
	}
}
