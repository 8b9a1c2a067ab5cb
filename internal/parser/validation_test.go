package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDirectURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.com", true},
		{"http://example.com/path", true},
		{"file:///home/user/doc.html", true},
		{"mailto:someone@example.com", true},
		{"example.com", true},
		{"sub.example.co.uk", true},
		{"example.com/path?q=1", true},
		{"example.com:8080", true},
		{"localhost", true},
		{"localhost:3000", true},
		{"127.0.0.1", true},
		{"192.168.1.1:8080", true},
		{"::1", true},
		{"printer.local", true},

		{"", false},
		{"golang tutorial", false},
		{"how to cook rice", false},
		{"hello", false},
		{"what is example.com", false},
		{"notascheme://example.com", false},
		{".com", false},
		{"example..com", false},
		{"-example.com", false},
	}

	v := NewURLValidator()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, v.IsDirectURL(tt.input), "input %q", tt.input)
		})
	}
}

func TestIsSearchShortcut(t *testing.T) {
	tests := []struct {
		input     string
		want      bool
		wantKey   string
		wantQuery string
	}{
		{"g: golang", true, "g", "golang"},
		{"gh:cobra", true, "gh", "cobra"},
		{"G: Test", true, "g", "Test"},
		{"yt: ", true, "yt", ""},
		{"https://example.com", false, "", ""},
		{"plain text", false, "", ""},
		{": no key", false, "", ""},
	}

	v := NewURLValidator()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ok, key, query := v.IsSearchShortcut(tt.input)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantQuery, query)
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://example.com", "https://example.com"},
		{"http://example.com", "http://example.com"},
		{"example.com", "https://example.com"},
		{"localhost:3000", "https://localhost:3000"},
		{"  example.com  ", "https://example.com"},
		{"", ""},
	}

	v := NewURLValidator()
	for _, tt := range tests {
		assert.Equal(t, tt.want, v.NormalizeURL(tt.input), "input %q", tt.input)
	}
}

func TestSanitizeInput(t *testing.T) {
	v := NewURLValidator()

	assert.Equal(t, "example.com", v.SanitizeInput("  example.com\n"))
	assert.Equal(t, "abc", v.SanitizeInput("a\x00b\x1bc"))
	assert.Equal(t, "héllo wörld", v.SanitizeInput("héllo wörld"))
	assert.Equal(t, "", v.SanitizeInput("   "))
}
