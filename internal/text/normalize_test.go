package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Empty", "", ""},
		{"Only Whitespace", " \t\n\n ", ""},
		{"Collapses Spaces", "a   b\t\tc", "a b c"},
		{"Collapses Newline", "line one \n  line two", "line one line two"},
		{"Collapses Blank Lines", "para one\n\n\n\n\npara two", "para one para two"},
		{"Trims", "  padded  ", "padded"},
		{"Carriage Returns", "a\r\n\r\n\r\nb", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}

	t.Run("Idempotent", func(t *testing.T) {
		in := "  x \n\n\n y   z "
		assert.Equal(t, Clean(in), Clean(Clean(in)))
	})
}

func TestTruncate(t *testing.T) {
	t.Run("Within Budget", func(t *testing.T) {
		assert.Equal(t, "short", Truncate("short", 10))
	})

	t.Run("Cuts At Last Space", func(t *testing.T) {
		assert.Equal(t, "hello big...", Truncate("hello big world", 12))
	})

	t.Run("Cuts At Newline", func(t *testing.T) {
		assert.Equal(t, "abc def...", Truncate("abc def\nghijkl", 10))
	})

	t.Run("Never Mid Word", func(t *testing.T) {
		out := Truncate("alpha beta gamma delta", 13)
		assert.Equal(t, "alpha beta...", out)
	})

	t.Run("No Space Cuts At Budget", func(t *testing.T) {
		assert.Equal(t, "abcde...", Truncate("abcdefghij", 5))
	})

	t.Run("Runes", func(t *testing.T) {
		out := Truncate(strings.Repeat("ç", 20), 10)
		assert.Equal(t, strings.Repeat("ç", 10)+"...", out)
	})
}

func TestEstimatePages(t *testing.T) {
	assert.Equal(t, 0, EstimatePages(""))
	assert.Equal(t, 1, EstimatePages("a"))
	assert.Equal(t, 2, EstimatePages(strings.Repeat("a", 2001)))
}
