package chunker

import (
	"strings"
)

const (
	// DefaultChunkSize is the default window size in runes, tuned for
	// roughly 500 tokens with a 4-chars-per-token estimate.
	DefaultChunkSize = 2000
	// DefaultOverlapPercent is the fraction of the window shared between
	// consecutive chunks so concepts spanning a boundary appear fully in
	// at least one chunk.
	DefaultOverlapPercent = 0.15
)

// Chunk is a contiguous slice of one document's text.
// Start and End are rune offsets into the source text.
type Chunk struct {
	Text        string
	Start       int
	End         int
	ChunkIndex  int
	TotalChunks int
}

// Chunker splits document text into overlapping fixed-size windows.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker with the given window size in runes and overlap
// fraction. Non-positive size falls back to DefaultChunkSize; an overlap
// outside [0,1) falls back to DefaultOverlapPercent.
func New(size int, overlapPercent float64) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlapPercent < 0 || overlapPercent >= 1 {
		overlapPercent = DefaultOverlapPercent
	}
	overlap := int(float64(size) * overlapPercent)
	if overlap >= size {
		overlap = size / 4
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk splits text into overlapping windows.
// Empty or whitespace-only text returns nil. Text that fits in a single
// window returns exactly one chunk spanning the whole text. Windows prefer
// paragraph, newline and sentence boundaries over hard splits. Indices are
// assigned after whitespace-only fragments are dropped, so ChunkIndex values
// are always dense and contiguous.
func (c *Chunker) Chunk(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= c.size {
		return []Chunk{{
			Text:        text,
			Start:       0,
			End:         len(runes),
			ChunkIndex:  0,
			TotalChunks: 1,
		}}
	}

	var chunks []Chunk
	start := 0

	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = splitPoint(runes, start, end)
		}

		fragment := string(runes[start:end])
		if strings.TrimSpace(fragment) != "" {
			chunks = append(chunks, Chunk{
				Text:  fragment,
				Start: start,
				End:   end,
			})
		}

		if end == len(runes) {
			break
		}

		// Back up by the overlap so boundary-spanning content repeats,
		// but always advance past the previous start.
		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	for i := range chunks {
		chunks[i].ChunkIndex = i
		chunks[i].TotalChunks = len(chunks)
	}

	return chunks
}

// splitPoint finds a natural boundary for a window ending at end, searching
// the window for a paragraph break, then a newline, then a sentence end,
// then any whitespace. Falls back to the hard limit when the window contains
// no boundary at all.
func splitPoint(runes []rune, start, end int) int {
	window := string(runes[start:end])

	if i := strings.LastIndex(window, "\n\n"); i > 0 {
		return start + runeLen(window[:i+2])
	}
	if i := strings.LastIndex(window, "\n"); i > 0 {
		return start + runeLen(window[:i+1])
	}
	if i := strings.LastIndex(window, ". "); i > 0 {
		return start + runeLen(window[:i+2])
	}
	if i := strings.LastIndexFunc(window, isSpace); i > 0 {
		return start + runeLen(window[:i+1])
	}
	return end
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

// runeLen converts a byte index inside a window back to a rune count.
func runeLen(s string) int {
	return len([]rune(s))
}
