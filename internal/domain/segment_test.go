package domain_test

import (
	"testing"

	"askdocs/internal/domain"

	"github.com/stretchr/testify/assert"
)

func seg(source string, page int, text string) domain.Segment {
	return domain.Segment{Source: source, Page: page, Text: text}
}

func TestAssignSegmentIDs(t *testing.T) {
	t.Run("Ordinal restarts when the page changes", func(t *testing.T) {
		segments := domain.AssignSegmentIDs([]domain.Segment{
			seg("a.txt", 0, "one"),
			seg("a.txt", 0, "two"),
			seg("a.txt", 1, "three"),
			seg("b.txt", 0, "four"),
		})

		assert.Equal(t, "a.txt:0:0", segments[0].ID)
		assert.Equal(t, "a.txt:0:1", segments[1].ID)
		assert.Equal(t, "a.txt:1:0", segments[2].ID)
		assert.Equal(t, "b.txt:0:0", segments[3].ID)
	})

	t.Run("Deterministic across runs", func(t *testing.T) {
		build := func() []domain.Segment {
			return domain.AssignSegmentIDs([]domain.Segment{
				seg("a.txt", 0, "one"),
				seg("a.txt", 0, "two"),
				seg("a.txt", 1, "three"),
			})
		}

		assert.Equal(t, build(), build())
	})

	t.Run("Unique even when a pair repeats non-adjacently", func(t *testing.T) {
		segments := domain.AssignSegmentIDs([]domain.Segment{
			seg("a.txt", 0, "one"),
			seg("a.txt", 1, "two"),
			seg("a.txt", 0, "three"),
			seg("a.txt", 0, "four"),
		})

		seen := make(map[string]bool)
		for _, s := range segments {
			assert.False(t, seen[s.ID], "duplicate id %s", s.ID)
			seen[s.ID] = true
		}
		assert.Equal(t, "a.txt:0:0", segments[0].ID)
		assert.Equal(t, "a.txt:1:0", segments[1].ID)
		assert.Equal(t, "a.txt:0:1", segments[2].ID)
		assert.Equal(t, "a.txt:0:2", segments[3].ID)
	})
}

func TestSegmentID(t *testing.T) {
	assert.Equal(t, "data/sample.txt:3:2", domain.SegmentID("data/sample.txt", 3, 2))
}
