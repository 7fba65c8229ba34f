package display

import "testing"

func TestFormatINR(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{"nil", nil, "N/A"},
		{"zero", f(0), "N/A"},
		{"hundreds", f(999), "₹999"},
		{"thousand", f(1000), "₹1,000"},
		{"lakh", f(150000), "₹1,50,000"},
		{"crore", f(15000000), "₹1,50,00,000"},
		{"rounds", f(2499.6), "₹2,500"},
		{"negative", f(-12345), "-₹12,345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatINR(tt.in); got != tt.want {
				t.Errorf("FormatINR() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusBadge(t *testing.T) {
	b := StatusBadge("verified")
	if b.Label != "Verified" || b.Icon != "check-circle" {
		t.Errorf("StatusBadge(verified) = %+v", b)
	}

	unknown := StatusBadge("archived")
	pending := StatusBadge("pending")
	if unknown.Class != pending.Class {
		t.Errorf("unknown status class = %q, want pending class %q", unknown.Class, pending.Class)
	}
	if unknown.Label != "Archived" {
		t.Errorf("unknown status label = %q, want %q", unknown.Label, "Archived")
	}
}

func TestUserTypeClass(t *testing.T) {
	if UserTypeClass("agent") != "bg-purple-100 text-purple-800" {
		t.Error("agent class mismatch")
	}
	if UserTypeClass("visitor") != UserTypeClass("buyer") {
		t.Error("unknown user types should use the buyer class")
	}
}
