package domain

import (
	"context"
	"strings"
)

// TagSet is the structured output of content classification.
type TagSet struct {
	Audience []Role
	Topics   []Topic
}

// Classifier derives audience/topic tags for a piece of segment text. An
// implementation may fail; callers on the ingestion path must substitute
// FallbackTags rather than aborting.
type Classifier interface {
	Classify(ctx context.Context, text string) (TagSet, error)
}

// FallbackTags is the tag set used when classification fails or yields
// nothing: the sentinel "general" audience and no topics.
func FallbackTags() TagSet {
	return TagSet{Audience: []Role{RoleGeneral}}
}

// ClassifyExcerptLimit bounds, in runes, how much segment text is submitted
// to the external classification call.
const ClassifyExcerptLimit = 800

// NormalizeExcerpt collapses runs of whitespace to single spaces and
// truncates the result to limit runes. It is applied to segment text before
// every classification call to bound external-call cost.
func NormalizeExcerpt(text string, limit int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if limit > 0 && len(runes) > limit {
		return string(runes[:limit])
	}
	return collapsed
}
