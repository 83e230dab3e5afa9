package resolver

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanHTML(t *testing.T) {
	input := `<html><head><meta charset="utf-8"><link rel="stylesheet" href="x.css"><script>var a=1;</script></head>
<body><style>.x{}</style><form id="f"><svg><path/></svg><input id="email"><noscript>enable js</noscript></form></body></html>`

	out := CleanHTML(input)
	assert.Contains(t, out, `<form id="f">`)
	assert.Contains(t, out, `<input id="email"/>`)
	for _, noise := range []string{"<script", "<style", "<svg", "<noscript", "<meta", "<link", "var a=1"} {
		assert.NotContains(t, out, noise)
	}
}

func TestCleanHTML_Fragment(t *testing.T) {
	assert.Equal(t, `<form><input name="a"/></form>`, CleanHTML(`<form><input name="a"></form>`))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"shorter", "abc", 10, "abc"},
		{"exact", "abc", 3, "abc"},
		{"cut", "abcdef", 4, "abcd"},
		{"disabled", "abcdef", 0, "abcdef"},
		{"multibyte", "héllo wörld", 5, "héllo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.max)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
