package notifytemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceholders(t *testing.T) {
	got := Placeholders("Hi {{user_name}}, {{ property_name }} is ready. Bye {{user_name}}")
	assert.Equal(t, []string{"user_name", "property_name"}, got)

	assert.Empty(t, Placeholders("no slots here"))
}

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		content string
		vars    map[string]string
		want    string
	}{
		{"simple", "Hello {{name}}", map[string]string{"name": "Priya"}, "Hello Priya"},
		{"spaces in slot", "Hello {{ name }}", map[string]string{"name": "Priya"}, "Hello Priya"},
		{"missing var kept", "Tour on {{tour_date}}", nil, "Tour on {{tour_date}}"},
		{"value escaped", "Hi {{name}}", map[string]string{"name": "<script>x</script>"}, "Hi &lt;script&gt;x&lt;/script&gt;"},
		{"markup sanitized", "<p>Hi {{name}}</p><script>alert(1)</script>", map[string]string{"name": "Sam"}, "<p>Hi Sam</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.content, tt.vars))
		})
	}
}
