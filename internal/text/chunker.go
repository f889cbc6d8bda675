package text

import (
	"iter"
	"strings"
)

const (
	DefaultChunkSize    = 3000
	DefaultChunkOverlap = 200
	// DefaultMaxChunks bounds how many chunks reach the model.
	DefaultMaxChunks = 3

	chunkSeparator = "\n\n---\n\n"
)

// Chunks yields overlapping windows over s. Every chunk after the first
// starts overlap runes before the end of the previous one and the final chunk
// ends at the end of s. The sequence can be ranged over any number of times.
//
// Out of range sizes are clamped so the sequence always terminates.
func Chunks(s string, size, overlap int) iter.Seq[string] {
	if size < 1 {
		size = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}

	return func(yield func(string) bool) {
		r := []rune(s)
		n := len(r)
		start := 0
		for start < n {
			end := min(start+size, n)
			if !yield(string(r[start:end])) {
				return
			}
			if end == n {
				return
			}
			start = end - overlap
		}
	}
}

// Window prepares content for analysis: truncate to maxChars, split into
// chunks and keep the first maxChunks of them joined by a rule.
func Window(s string, maxChars, size, overlap, maxChunks int) string {
	truncated := Truncate(s, maxChars)

	var parts []string
	for chunk := range Chunks(truncated, size, overlap) {
		if len(parts) == maxChunks {
			break
		}
		parts = append(parts, chunk)
	}
	return strings.Join(parts, chunkSeparator)
}

// AnalysisWindow applies Window with the default analysis limits.
func AnalysisWindow(s string) string {
	return Window(s, MaxAnalysisChars, DefaultChunkSize, DefaultChunkOverlap, DefaultMaxChunks)
}
