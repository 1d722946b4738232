package domain

import "fmt"

// Document is an ordered sequence of pages loaded from a single source.
// Immutable once loaded.
type Document struct {
	Source string // source identifier, e.g. a file path
	Pages  []string
}

// Segment is a bounded slice of one page's text, the unit of indexing and
// retrieval. ID is assigned by AssignSegmentIDs and is derived purely from
// (Source, Page, Ordinal).
type Segment struct {
	Source   string
	Page     int
	Ordinal  int // sequence index within the (source, page) pair
	Text     string
	Audience []Role
	Topics   []Topic
	ID       string
}

// SegmentID derives the canonical id for a segment position.
func SegmentID(source string, page, ordinal int) string {
	return fmt.Sprintf("%s:%d:%d", source, page, ordinal)
}

// AssignSegmentIDs walks segments in order and assigns each its id. The
// ordinal starts at 0 for each (source, page) pair and increments per
// segment sharing the pair, so re-splitting the same document with the same
// chunking parameters reproduces identical ids. Ordinals are tracked per
// pair rather than reset on every pair change, keeping ids unique within a
// run even if a pair reappears at a non-adjacent position. The input slice
// is modified in place and returned.
func AssignSegmentIDs(segments []Segment) []Segment {
	next := make(map[string]int)
	for i := range segments {
		key := fmt.Sprintf("%s:%d", segments[i].Source, segments[i].Page)
		ordinal := next[key]
		next[key] = ordinal + 1
		segments[i].Ordinal = ordinal
		segments[i].ID = SegmentID(segments[i].Source, segments[i].Page, ordinal)
	}
	return segments
}
