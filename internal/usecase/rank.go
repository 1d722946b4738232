package usecase

import (
	"fmt"
	"math"
	"sort"

	"askdocs/internal/domain"
)

// DefaultTopK is how many ranked results feed the prompt when the caller
// does not override it.
const DefaultTopK = 6

// RankWeights holds the blend between semantic similarity and the two
// profile-affinity terms. The weights are a documented, overridable tuning
// surface; the defaults are the product-chosen split and must sum to 1.0.
type RankWeights struct {
	// Alpha weights the store's similarity score.
	Alpha float64
	// Beta weights the role match (1.0 when the profile role is in the
	// segment's audience, else 0.0).
	Beta float64
	// Gamma weights the Jaccard overlap between segment topics and
	// profile interests.
	Gamma float64
}

// DefaultRankWeights returns the standard blend: similarity dominates,
// role match second, topic overlap last.
func DefaultRankWeights() RankWeights {
	return RankWeights{Alpha: 0.6, Beta: 0.3, Gamma: 0.1}
}

// Validate checks that every weight is non-negative and that the blend
// sums to 1.0.
func (w RankWeights) Validate() error {
	if w.Alpha < 0 || w.Beta < 0 || w.Gamma < 0 {
		return fmt.Errorf("rank weights must be non-negative, got %+v", w)
	}
	if sum := w.Alpha + w.Beta + w.Gamma; math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("rank weights must sum to 1.0, got %f", sum)
	}
	return nil
}

// RankedResult pairs a retrieval candidate with its blended score.
// Transient; lives only for the duration of one query.
type RankedResult struct {
	Candidate domain.Candidate
	Score     float64
}

// Rank re-scores candidates with the blended metric and returns the top
// topK, ordered descending by score. The sort is stable, so ties keep the
// candidates' original (store-native) order. Pure function: missing or
// malformed metadata degrades individual terms to 0.0, never errors.
func Rank(candidates []domain.Candidate, profile domain.Profile, weights RankWeights, topK int) []RankedResult {
	if topK <= 0 {
		topK = DefaultTopK
	}

	ranked := make([]RankedResult, 0, len(candidates))
	for _, c := range candidates {
		score := weights.Alpha*c.Similarity +
			weights.Beta*roleMatch(c.Audience, profile.Role) +
			weights.Gamma*topicOverlap(c.Topics, profile.Interests)
		ranked = append(ranked, RankedResult{Candidate: c, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

func roleMatch(audience []domain.Role, role domain.Role) float64 {
	for _, a := range audience {
		if a == role {
			return 1.0
		}
	}
	return 0.0
}

// topicOverlap is the Jaccard index between the segment's topics and the
// profile's interests. Defined as 0.0 when either set is empty.
func topicOverlap(topics []domain.Topic, interests []domain.Topic) float64 {
	if len(topics) == 0 || len(interests) == 0 {
		return 0.0
	}

	topicSet := make(map[domain.Topic]struct{}, len(topics))
	for _, t := range topics {
		topicSet[t] = struct{}{}
	}
	interestSet := make(map[domain.Topic]struct{}, len(interests))
	for _, t := range interests {
		interestSet[t] = struct{}{}
	}

	intersection := 0
	union := len(topicSet)
	for t := range interestSet {
		if _, ok := topicSet[t]; ok {
			intersection++
		} else {
			union++
		}
	}

	return float64(intersection) / float64(union)
}
