package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Premium Plugin", "premium-plugin"},
		{"extra whitespace", "  Hello   World!  ", "hello-world"},
		{"diacritics", "Café Crème Bundle", "cafe-creme-bundle"},
		{"punctuation", "API Access (Annual)", "api-access-annual"},
		{"numbers", "Theme v2.1", "theme-v2-1"},
		{"empty", "", ""},
		{"only symbols", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.in))
		})
	}
}
