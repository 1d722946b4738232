package usecase

import (
	"fmt"
	"strings"

	"askdocs/internal/domain"
)

// SegmentDelimiter separates retrieved segments inside the prompt's
// context block.
const SegmentDelimiter = "\n\n---\n\n"

// PromptInput carries the pieces that feed the generation prompt.
type PromptInput struct {
	Question string
	Profile  domain.Profile
	Segments []RankedResult
}

// PromptBuilder renders the text prompt sent to the generator.
type PromptBuilder interface {
	Build(input PromptInput) (string, error)
}

// PersonalizedPromptBuilder prepends a persona preamble derived from the
// user's profile before the retrieved context and the question.
type PersonalizedPromptBuilder struct{}

// NewPersonalizedPromptBuilder creates the standard prompt builder.
func NewPersonalizedPromptBuilder() PromptBuilder {
	return &PersonalizedPromptBuilder{}
}

// Build renders the prompt. Segment texts appear in ranked order, joined
// by SegmentDelimiter; the preamble names the user's role and interests
// verbatim so the generator can frame the answer.
func (b *PersonalizedPromptBuilder) Build(input PromptInput) (string, error) {
	if strings.TrimSpace(input.Question) == "" {
		return "", fmt.Errorf("question is required")
	}
	if len(input.Segments) == 0 {
		return "", fmt.Errorf("at least one context segment is required")
	}

	texts := make([]string, len(input.Segments))
	for i, s := range input.Segments {
		texts[i] = s.Candidate.Content
	}

	var sb strings.Builder
	sb.WriteString("You are a helpful assistant. The user is a ")
	sb.WriteString(string(input.Profile.Role))
	sb.WriteString(" interested in ")
	sb.WriteString(interestList(input.Profile.Interests))
	sb.WriteString(". Frame the answer accordingly.")
	sb.WriteString("\n\nAnswer the question **only** using the following context:\n\n")
	sb.WriteString(strings.Join(texts, SegmentDelimiter))
	sb.WriteString("\n\n---\n\n")
	sb.WriteString(input.Question)

	return sb.String(), nil
}

func interestList(interests []domain.Topic) string {
	if len(interests) == 0 {
		return "varied topics"
	}
	parts := make([]string, len(interests))
	for i, t := range interests {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
