package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// Boundary separators, strongest first. A hard cut is only taken when none
// of these occur inside the current window.
var separators = []string{"\n\n", "\n", ". "}

// Splitter cuts text into overlapping windows, preferring paragraph,
// sentence and word boundaries over mid-word cuts.
type Splitter struct {
	chunkSize int
	overlap   int
}

func New(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split returns the ordered chunks of text. Every byte of the input is
// covered by at least one chunk and consecutive chunks share the configured
// overlap. Whitespace-only input yields nil.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + s.chunkSize
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}
		cut := s.findCut(text, start, end)
		chunks = append(chunks, text[start:cut])

		next := cut - s.overlap
		// Never restart mid-rune.
		for next > 0 && !utf8.RuneStart(text[next]) {
			next--
		}
		if next <= start {
			// Chunk shorter than the overlap, move on without one so the
			// walk always advances.
			next = cut
		}
		start = next
	}
	return chunks
}

// findCut picks the best boundary in (start, end]. Separators keep their
// trailing bytes with the left chunk so that joining chunks reproduces the
// input exactly.
func (s *Splitter) findCut(text string, start, end int) int {
	window := text[start:end]
	for _, sep := range separators {
		if i := strings.LastIndex(window, sep); i > 0 {
			return start + i + len(sep)
		}
	}
	if i := strings.LastIndexByte(window, ' '); i > 0 {
		return start + i + 1
	}
	// No boundary in range, hard cut on a rune start.
	for end > start+1 && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}
