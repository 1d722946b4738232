package domain

import "strings"

// ChunkerVersion identifies the chunking algorithm and its parameters so a
// corpus can be checked for mixed chunking runs.
type ChunkerVersion string

const (
	// ChunkerVersionV1 is the fixed-window chunker with rune-based
	// size/overlap, splitting each page independently.
	ChunkerVersionV1 ChunkerVersion = "v1"
)

const (
	// DefaultChunkSize is the window size in runes.
	DefaultChunkSize = 800
	// DefaultChunkOverlap is how many runes consecutive windows share.
	DefaultChunkOverlap = 80
)

// Chunker splits a document's pages into segments. Splitting must be
// deterministic: the same document and parameters always produce the same
// segments in the same order.
type Chunker interface {
	Split(doc Document) []Segment
	Version() ChunkerVersion
}

type windowChunker struct {
	size    int
	overlap int
}

// NewChunker returns the default fixed-window chunker.
func NewChunker() Chunker {
	return NewChunkerWithParams(DefaultChunkSize, DefaultChunkOverlap)
}

// NewChunkerWithParams returns a chunker with explicit window parameters.
// Invalid parameters fall back to the defaults; overlap is capped below the
// window size so the walk always advances.
func NewChunkerWithParams(size, overlap int) Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 10
	}
	return &windowChunker{size: size, overlap: overlap}
}

func (c *windowChunker) Version() ChunkerVersion {
	return ChunkerVersionV1
}

// Split walks each page with a fixed rune window, stepping by size-overlap.
// Whitespace-only windows are dropped; surviving windows are trimmed. Pages
// are processed in order, so segment order is stable across runs.
func (c *windowChunker) Split(doc Document) []Segment {
	var segments []Segment
	step := c.size - c.overlap

	for page, text := range doc.Pages {
		runes := []rune(text)
		for start := 0; start < len(runes); start += step {
			end := start + c.size
			if end > len(runes) {
				end = len(runes)
			}
			window := strings.TrimSpace(string(runes[start:end]))
			if window != "" {
				segments = append(segments, Segment{
					Source: doc.Source,
					Page:   page,
					Text:   window,
				})
			}
			if end == len(runes) {
				break
			}
		}
	}
	return segments
}
