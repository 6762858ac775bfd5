package markdown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"textsummarizer/internal/markdown"
)

func TestEscapeV2(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"No special chars", "plain text", "plain text"},
		{"Sentence", "Hello world. How are you?", `Hello world\. How are you?`},
		{"Brackets and dash", "[a](b) - c", `\[a\]\(b\) \- c`},
		{"Emphasis", "*bold* _it_ ~s~ `c`", "\\*bold\\* \\_it\\_ \\~s\\~ \\`c\\`"},
		{"Backslash", `a\b`, `a\\b`},
		{"Unicode", "Привет! 👋", `Привет\! 👋`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, markdown.EscapeV2(test.input))
		})
	}
}

func TestEscapedRuneLenV2(t *testing.T) {
	for _, r := range "a Ж🙂\n" {
		assert.Equal(t, 1, markdown.EscapedRuneLenV2(r), "rune %q", r)
	}
	for _, r := range "_*.!-\\" {
		assert.Equal(t, 2, markdown.EscapedRuneLenV2(r), "rune %q", r)
	}

	text := "1. Done! (see a_b)"
	total := 0
	for _, r := range text {
		total += markdown.EscapedRuneLenV2(r)
	}
	assert.Equal(t, len([]rune(markdown.EscapeV2(text))), total)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", markdown.Preview("  short  ", 10))
	assert.Equal(t, "abc…", markdown.Preview("abcdef", 3))
	assert.Equal(t, "абв…", markdown.Preview("абвгд", 3))
	assert.Equal(t, "ab…", markdown.Preview("ab cd", 3))
	assert.Empty(t, markdown.Preview("text", 0))
}
