package usecase_test

import (
	"testing"

	"askdocs/internal/domain"
	"askdocs/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankWeights_Validate(t *testing.T) {
	t.Run("Defaults are valid", func(t *testing.T) {
		assert.NoError(t, usecase.DefaultRankWeights().Validate())
	})

	t.Run("Rejects negative weight", func(t *testing.T) {
		w := usecase.RankWeights{Alpha: -0.1, Beta: 1.0, Gamma: 0.1}
		assert.Error(t, w.Validate())
	})

	t.Run("Rejects blend that does not sum to one", func(t *testing.T) {
		w := usecase.RankWeights{Alpha: 0.5, Beta: 0.3, Gamma: 0.1}
		assert.Error(t, w.Validate())
	})
}

func TestRank(t *testing.T) {
	profile := domain.Profile{
		UserID:    "u1",
		Role:      domain.RoleDeveloper,
		Interests: []domain.Topic{domain.TopicAI, domain.TopicSecurity},
	}

	t.Run("Blends similarity role match and topic overlap", func(t *testing.T) {
		candidates := []domain.Candidate{
			{
				ID:         "a.txt:0:0",
				Similarity: 0.9,
				Audience:   []domain.Role{domain.RoleDeveloper},
				Topics:     []domain.Topic{domain.TopicAI, domain.TopicSecurity},
			},
		}

		ranked := usecase.Rank(candidates, profile, usecase.DefaultRankWeights(), 0)

		require.Len(t, ranked, 1)
		// 0.6*0.9 + 0.3*1.0 + 0.1*1.0
		assert.InDelta(t, 0.94, ranked[0].Score, 1e-9)
	})

	t.Run("Partial topic overlap uses the Jaccard index", func(t *testing.T) {
		candidates := []domain.Candidate{
			{
				ID:         "a.txt:0:0",
				Similarity: 0.0,
				Topics:     []domain.Topic{domain.TopicAI, domain.TopicML},
			},
		}

		ranked := usecase.Rank(candidates, profile, usecase.DefaultRankWeights(), 0)

		// |{AI}| / |{AI, ML, Security}| = 1/3
		require.Len(t, ranked, 1)
		assert.InDelta(t, 0.1*(1.0/3.0), ranked[0].Score, 1e-9)
	})

	t.Run("Empty topics or interests score zero overlap", func(t *testing.T) {
		noInterests := domain.Profile{UserID: "u2", Role: domain.RoleDeveloper}
		candidates := []domain.Candidate{
			{ID: "a", Similarity: 0.5, Topics: []domain.Topic{domain.TopicAI}},
			{ID: "b", Similarity: 0.5},
		}

		ranked := usecase.Rank(candidates, noInterests, usecase.DefaultRankWeights(), 0)

		require.Len(t, ranked, 2)
		assert.InDelta(t, 0.3, ranked[0].Score, 1e-9)
		assert.InDelta(t, 0.3, ranked[1].Score, 1e-9)
	})

	t.Run("Profile affinity can outrank higher similarity", func(t *testing.T) {
		candidates := []domain.Candidate{
			{ID: "plain", Similarity: 0.8},
			{
				ID:         "matched",
				Similarity: 0.7,
				Audience:   []domain.Role{domain.RoleDeveloper},
				Topics:     []domain.Topic{domain.TopicAI, domain.TopicSecurity},
			},
		}

		ranked := usecase.Rank(candidates, profile, usecase.DefaultRankWeights(), 0)

		require.Len(t, ranked, 2)
		assert.Equal(t, "matched", ranked[0].Candidate.ID)
		assert.Equal(t, "plain", ranked[1].Candidate.ID)
	})

	t.Run("Ties keep the incoming order", func(t *testing.T) {
		candidates := []domain.Candidate{
			{ID: "first", Similarity: 0.5},
			{ID: "second", Similarity: 0.5},
			{ID: "third", Similarity: 0.5},
		}

		ranked := usecase.Rank(candidates, profile, usecase.DefaultRankWeights(), 0)

		require.Len(t, ranked, 3)
		assert.Equal(t, "first", ranked[0].Candidate.ID)
		assert.Equal(t, "second", ranked[1].Candidate.ID)
		assert.Equal(t, "third", ranked[2].Candidate.ID)
	})

	t.Run("Truncates to topK", func(t *testing.T) {
		candidates := make([]domain.Candidate, 10)
		for i := range candidates {
			candidates[i] = domain.Candidate{ID: string(rune('a' + i)), Similarity: float64(10-i) / 10}
		}

		ranked := usecase.Rank(candidates, profile, usecase.DefaultRankWeights(), 3)

		require.Len(t, ranked, 3)
		assert.Equal(t, "a", ranked[0].Candidate.ID)
	})

	t.Run("Defaults topK when unset", func(t *testing.T) {
		candidates := make([]domain.Candidate, 10)
		for i := range candidates {
			candidates[i] = domain.Candidate{ID: string(rune('a' + i))}
		}

		ranked := usecase.Rank(candidates, profile, usecase.DefaultRankWeights(), 0)

		assert.Len(t, ranked, usecase.DefaultTopK)
	})

	t.Run("Empty input yields empty output", func(t *testing.T) {
		ranked := usecase.Rank(nil, profile, usecase.DefaultRankWeights(), 0)
		assert.Empty(t, ranked)
	})
}
