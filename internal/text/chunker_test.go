package text

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reconstruct(chunks []string, overlap int) string {
	var b strings.Builder
	for i, c := range chunks {
		if i == 0 {
			b.WriteString(c)
			continue
		}
		b.WriteString(string([]rune(c)[overlap:]))
	}
	return b.String()
}

func TestChunks(t *testing.T) {
	t.Run("Empty Input", func(t *testing.T) {
		assert.Empty(t, slices.Collect(Chunks("", 10, 2)))
	})

	t.Run("Shorter Than Size", func(t *testing.T) {
		assert.Equal(t, []string{"abc"}, slices.Collect(Chunks("abc", 10, 2)))
	})

	t.Run("Overlap", func(t *testing.T) {
		chunks := slices.Collect(Chunks("abcdefghij", 4, 1))
		assert.Equal(t, []string{"abcd", "defg", "ghij"}, chunks)
	})

	t.Run("Last Chunk Ends At Input End", func(t *testing.T) {
		chunks := slices.Collect(Chunks("abcdefghijk", 4, 1))
		require.NotEmpty(t, chunks)
		assert.True(t, strings.HasSuffix("abcdefghijk", chunks[len(chunks)-1]))
		assert.Equal(t, "jk", chunks[len(chunks)-1])
	})

	t.Run("Reconstruction", func(t *testing.T) {
		inputs := []string{
			"a",
			"hello world",
			strings.Repeat("lorem ipsum dolor sit amet ", 300),
			"ação rápida com acentuação e emoji ⚡ no meio do texto",
		}
		sizes := [][2]int{{1, 0}, {3, 1}, {10, 3}, {3000, 200}, {7, 6}}

		for _, in := range inputs {
			for _, sz := range sizes {
				chunks := slices.Collect(Chunks(in, sz[0], sz[1]))
				assert.Equal(t, in, reconstruct(chunks, sz[1]), "size=%d overlap=%d", sz[0], sz[1])
				for _, c := range chunks {
					assert.LessOrEqual(t, len([]rune(c)), sz[0])
				}
			}
		}
	})

	t.Run("Restartable", func(t *testing.T) {
		seq := Chunks("abcdefghij", 4, 1)
		assert.Equal(t, slices.Collect(seq), slices.Collect(seq))
	})

	t.Run("Invalid Sizes Terminate", func(t *testing.T) {
		assert.Len(t, slices.Collect(Chunks("abc", 0, 0)), 3)
		assert.Len(t, slices.Collect(Chunks("abcdef", 2, 5)), 5)
	})
}

func TestWindow(t *testing.T) {
	t.Run("Caps Chunk Count", func(t *testing.T) {
		in := strings.Repeat("x", 100)
		out := Window(in, 1000, 10, 0, 3)
		assert.Equal(t, strings.Repeat("x", 10)+chunkSeparator+strings.Repeat("x", 10)+chunkSeparator+strings.Repeat("x", 10), out)
	})

	t.Run("Short Content Untouched", func(t *testing.T) {
		assert.Equal(t, "short text", AnalysisWindow("short text"))
	})
}
