package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"askdocs/internal/domain"
)

// DefaultRetrievalLimit is how many candidates the filtered vector search
// returns before personalized ranking narrows them down.
const DefaultRetrievalLimit = 20

// RetrievalConfig tunes the candidate search that precedes ranking.
type RetrievalConfig struct {
	// Limit caps how many candidates come back from the store.
	Limit int
}

// DefaultRetrievalConfig returns the standard retrieval tuning.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{Limit: DefaultRetrievalLimit}
}

// Validate checks the retrieval tuning.
func (c RetrievalConfig) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("retrieval limit must be positive, got %d", c.Limit)
	}
	return nil
}

// RetrieveSegmentsInput carries one retrieval request.
type RetrieveSegmentsInput struct {
	Question string
	Profile  domain.Profile
}

// RetrieveSegmentsOutput carries the profile-filtered candidates, ordered
// by the store's similarity ranking.
type RetrieveSegmentsOutput struct {
	Candidates []domain.Candidate
}

// RetrieveSegmentsUsecase embeds the question and runs the profile-filtered
// similarity search. An empty candidate set is a valid outcome, not an
// error.
type RetrieveSegmentsUsecase interface {
	Execute(ctx context.Context, input RetrieveSegmentsInput) (*RetrieveSegmentsOutput, error)
}

type retrieveSegmentsUsecase struct {
	encoder domain.VectorEncoder
	store   domain.SegmentStore
	config  RetrievalConfig
}

// NewRetrieveSegmentsUsecase wires the retrieval step.
func NewRetrieveSegmentsUsecase(encoder domain.VectorEncoder, store domain.SegmentStore, config RetrievalConfig) (RetrieveSegmentsUsecase, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &retrieveSegmentsUsecase{
		encoder: encoder,
		store:   store,
		config:  config,
	}, nil
}

// Execute embeds the question with the same encoder used at index time and
// searches the store restricted to segments matching the profile on at
// least one axis: audience contains the role, or topics intersect the
// interests.
func (u *retrieveSegmentsUsecase) Execute(ctx context.Context, input RetrieveSegmentsInput) (*RetrieveSegmentsOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	vectors, err := u.encoder.Encode(ctx, []string{input.Question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("encoder returned %d vectors for one question", len(vectors))
	}

	filter := domain.SearchFilter{
		Role:      input.Profile.Role,
		Interests: input.Profile.Interests,
	}

	candidates, err := u.store.Search(ctx, vectors[0], filter, u.config.Limit)
	if err != nil {
		return nil, fmt.Errorf("segment search failed: %w", err)
	}

	slog.Debug("retrieval completed",
		slog.String("user_id", input.Profile.UserID),
		slog.String("role", string(input.Profile.Role)),
		slog.Int("candidates", len(candidates)))

	return &RetrieveSegmentsOutput{Candidates: candidates}, nil
}
