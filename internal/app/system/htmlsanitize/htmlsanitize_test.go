package htmlsanitize_test

import (
	"html/template"
	"strings"
	"testing"

	"github.com/homeandown/estatehub/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if got := htmlsanitize.Sanitize(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSanitize_SafeHTML(t *testing.T) {
	input := "<p><strong>Open house</strong> this <em>Sunday</em></p>"
	if got := htmlsanitize.Sanitize(input); got != input {
		t.Errorf("expected safe HTML preserved, got %q", got)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	got := htmlsanitize.Sanitize("<p>Hello</p><script>alert('xss')</script>")
	if got != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestSanitize_RemovesHandlersAndJavascriptLinks(t *testing.T) {
	tests := []struct {
		name, input, forbidden string
	}{
		{"onclick", `<button onclick="alert('xss')">Click</button>`, "onclick"},
		{"onerror", `<img src="x" onerror="alert('xss')">`, "onerror"},
		{"javascript href", `<a href="javascript:alert('xss')">Click</a>`, "javascript:"},
		{"iframe", `<p>Content</p><iframe src="https://evil.com"></iframe>`, "iframe"},
		{"form", `<form action="/submit"><input type="text"></form>`, "<input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := htmlsanitize.Sanitize(tt.input)
			if strings.Contains(got, tt.forbidden) {
				t.Errorf("Sanitize(%q) = %q, still contains %q", tt.input, got, tt.forbidden)
			}
		})
	}
}

func TestSanitize_AllowsSafeLinks(t *testing.T) {
	got := htmlsanitize.Sanitize(`<a href="https://example.com/listing/42">Listing</a>`)
	if !strings.Contains(got, "https://example.com/listing/42") {
		t.Errorf("expected safe link preserved, got %q", got)
	}
}

func TestSanitize_AllowsLists(t *testing.T) {
	input := "<ul><li>2 BHK</li><li>Sea facing</li></ul>"
	if got := htmlsanitize.Sanitize(input); got != input {
		t.Errorf("expected list preserved, got %q", got)
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", ""},
		{"Is this still available?", "Is this still available?"},
		{"<b>Call me</b> after 5", "Call me after 5"},
		{"Hi<script>alert(1)</script>", "Hi"},
		{"  Tom & Jerry  ", "Tom & Jerry"},
	}
	for _, tt := range tests {
		if got := htmlsanitize.StripTags(tt.input); got != tt.want {
			t.Errorf("StripTags(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"Hello, World!", true},
		{"<p>Hello</p>", false},
		{"5 < 10", true},
		{"5 > 3", true},
	}
	for _, tt := range tests {
		if got := htmlsanitize.IsPlainText(tt.input); got != tt.want {
			t.Errorf("IsPlainText(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestPlainTextToHTML(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", ""},
		{"Hello", "<p>Hello</p>"},
		{"Line 1\nLine 2", "<p>Line 1<br>Line 2</p>"},
		{"A & B", "<p>A &amp; B</p>"},
	}
	for _, tt := range tests {
		if got := htmlsanitize.PlainTextToHTML(tt.input); got != tt.want {
			t.Errorf("PlainTextToHTML(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPrepareForDisplay(t *testing.T) {
	tests := []struct {
		input string
		want  template.HTML
	}{
		{"", ""},
		{"Hello", "<p>Hello</p>"},
		{"<p>Hello</p><script>alert('xss')</script>", "<p>Hello</p>"},
	}
	for _, tt := range tests {
		if got := htmlsanitize.PrepareForDisplay(tt.input); got != tt.want {
			t.Errorf("PrepareForDisplay(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
