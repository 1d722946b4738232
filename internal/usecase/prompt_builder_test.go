package usecase_test

import (
	"strings"
	"testing"

	"askdocs/internal/domain"
	"askdocs/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonalizedPromptBuilder_Build(t *testing.T) {
	builder := usecase.NewPersonalizedPromptBuilder()

	ranked := func(texts ...string) []usecase.RankedResult {
		out := make([]usecase.RankedResult, len(texts))
		for i, text := range texts {
			out[i] = usecase.RankedResult{Candidate: domain.Candidate{Content: text}}
		}
		return out
	}

	t.Run("Joins segments with the delimiter in ranked order", func(t *testing.T) {
		prompt, err := builder.Build(usecase.PromptInput{
			Question: "What is zero trust?",
			Profile:  domain.Profile{Role: domain.RoleDeveloper, Interests: []domain.Topic{domain.TopicSecurity}},
			Segments: ranked("first segment", "second segment"),
		})

		require.NoError(t, err)
		assert.Contains(t, prompt, "first segment\n\n---\n\nsecond segment")
		assert.Less(t,
			strings.Index(prompt, "first segment"),
			strings.Index(prompt, "second segment"),
		)
	})

	t.Run("Preamble names the role and interests verbatim", func(t *testing.T) {
		prompt, err := builder.Build(usecase.PromptInput{
			Question: "q",
			Profile: domain.Profile{
				Role:      domain.RoleManager,
				Interests: []domain.Topic{domain.TopicFinance, domain.TopicAI},
			},
			Segments: ranked("ctx"),
		})

		require.NoError(t, err)
		assert.Contains(t, prompt, "The user is a manager interested in Finance, AI. Frame the answer accordingly.")
	})

	t.Run("Empty interests fall back to varied topics", func(t *testing.T) {
		prompt, err := builder.Build(usecase.PromptInput{
			Question: "q",
			Profile:  domain.Profile{Role: domain.RoleCustomer},
			Segments: ranked("ctx"),
		})

		require.NoError(t, err)
		assert.Contains(t, prompt, "interested in varied topics")
	})

	t.Run("Question appears after the context block", func(t *testing.T) {
		prompt, err := builder.Build(usecase.PromptInput{
			Question: "Where is the answer?",
			Profile:  domain.Profile{Role: domain.RoleGeneral},
			Segments: ranked("ctx"),
		})

		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(prompt, "Where is the answer?"))
	})

	t.Run("Rejects empty question", func(t *testing.T) {
		_, err := builder.Build(usecase.PromptInput{
			Question: "  ",
			Profile:  domain.Profile{Role: domain.RoleGeneral},
			Segments: ranked("ctx"),
		})

		assert.Error(t, err)
	})

	t.Run("Rejects empty context", func(t *testing.T) {
		_, err := builder.Build(usecase.PromptInput{
			Question: "q",
			Profile:  domain.Profile{Role: domain.RoleGeneral},
		})

		assert.Error(t, err)
	})
}
