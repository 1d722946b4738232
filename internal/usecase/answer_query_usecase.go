package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"askdocs/internal/domain"
)

// QueryFailure discriminates the structured, non-exceptional ways a query
// can end without an answer.
type QueryFailure string

const (
	QueryFailureNone             QueryFailure = ""
	QueryFailureProfileNotFound  QueryFailure = "profile_not_found"
	QueryFailureNoCandidates     QueryFailure = "no_candidates"
	QueryFailureRetrievalFailed  QueryFailure = "retrieval_failed"
	QueryFailureGenerationFailed QueryFailure = "generation_failed"
)

// AnswerQueryInput is one personalized question.
type AnswerQueryInput struct {
	UserID    string
	Question  string
	TopK      int
	MaxTokens int
}

// AnswerQueryOutput is the discriminated query result. Failure outcomes
// carry an empty answer and no sources; they are results, not errors.
type AnswerQueryOutput struct {
	Success    bool
	Answer     string
	Sources    []string
	MatchCount int
	Message    string
	Failure    QueryFailure
	Timestamp  time.Time
}

// AnswerQueryUsecase runs the full personalized query pipeline: profile
// lookup, filtered retrieval, personalized ranking, prompt assembly,
// generation.
type AnswerQueryUsecase interface {
	Execute(ctx context.Context, input AnswerQueryInput) (*AnswerQueryOutput, error)
}

type answerQueryUsecase struct {
	profiles      domain.ProfileRepository
	retrieve      RetrieveSegmentsUsecase
	promptBuilder PromptBuilder
	llmClient     domain.LLMClient
	weights       RankWeights
	topK          int
	maxTokens     int
}

// NewAnswerQueryUsecase wires the query pipeline. weights must already be
// validated; topK and maxTokens <= 0 use the defaults.
func NewAnswerQueryUsecase(
	profiles domain.ProfileRepository,
	retrieve RetrieveSegmentsUsecase,
	promptBuilder PromptBuilder,
	llmClient domain.LLMClient,
	weights RankWeights,
	topK, maxTokens int,
) AnswerQueryUsecase {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &answerQueryUsecase{
		profiles:      profiles,
		retrieve:      retrieve,
		promptBuilder: promptBuilder,
		llmClient:     llmClient,
		weights:       weights,
		topK:          topK,
		maxTokens:     maxTokens,
	}
}

// Execute answers the question for the given user. Infrastructure and
// generation problems surface as structured failure outputs rather than
// errors; the returned error is reserved for invalid input.
func (u *answerQueryUsecase) Execute(ctx context.Context, input AnswerQueryInput) (*AnswerQueryOutput, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if strings.TrimSpace(input.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	profile, err := u.profiles.Get(ctx, input.UserID)
	if err != nil {
		slog.Error("profile lookup failed",
			slog.String("user_id", input.UserID),
			slog.String("error", err.Error()))
		return u.failure(QueryFailureRetrievalFailed,
			"Profile store is unavailable."), nil
	}
	if profile == nil {
		return u.failure(QueryFailureProfileNotFound,
			fmt.Sprintf("No profile found for user_id=%s.", input.UserID)), nil
	}

	retrieved, err := u.retrieve.Execute(ctx, RetrieveSegmentsInput{
		Question: input.Question,
		Profile:  *profile,
	})
	if err != nil {
		slog.Error("retrieval failed",
			slog.String("user_id", input.UserID),
			slog.String("error", err.Error()))
		return u.failure(QueryFailureRetrievalFailed,
			"Could not search the document index."), nil
	}

	if len(retrieved.Candidates) == 0 {
		return u.failure(QueryFailureNoCandidates,
			"No relevant documents found for this profile."), nil
	}

	topK := input.TopK
	if topK <= 0 {
		topK = u.topK
	}
	ranked := Rank(retrieved.Candidates, *profile, u.weights, topK)

	prompt, err := u.promptBuilder.Build(PromptInput{
		Question: input.Question,
		Profile:  *profile,
		Segments: ranked,
	})
	if err != nil {
		slog.Error("prompt assembly failed",
			slog.String("user_id", input.UserID),
			slog.String("error", err.Error()))
		return u.failure(QueryFailureGenerationFailed,
			"Could not assemble the generation prompt."), nil
	}

	maxTokens := input.MaxTokens
	if maxTokens <= 0 {
		maxTokens = u.maxTokens
	}
	resp, err := u.llmClient.Generate(ctx, prompt, maxTokens)
	if err != nil {
		slog.Error("answer generation failed",
			slog.String("user_id", input.UserID),
			slog.String("error", err.Error()))
		return u.failure(QueryFailureGenerationFailed,
			"The language model did not return an answer."), nil
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		slog.Warn("answer generation returned empty text",
			slog.String("user_id", input.UserID),
			slog.Int("ranked_segments", len(ranked)))
		return u.failure(QueryFailureGenerationFailed,
			"The language model returned an empty answer."), nil
	}

	sources := make([]string, len(ranked))
	for i, r := range ranked {
		sources[i] = r.Candidate.ID
	}

	slog.Info("query answered",
		slog.String("user_id", input.UserID),
		slog.String("role", string(profile.Role)),
		slog.Int("candidates", len(retrieved.Candidates)),
		slog.Int("sources", len(sources)))

	return &AnswerQueryOutput{
		Success:    true,
		Answer:     strings.TrimSpace(resp.Text),
		Sources:    sources,
		MatchCount: len(sources),
		Timestamp:  time.Now().UTC(),
	}, nil
}

func (u *answerQueryUsecase) failure(kind QueryFailure, message string) *AnswerQueryOutput {
	return &AnswerQueryOutput{
		Success:   false,
		Answer:    "",
		Sources:   nil,
		Message:   message,
		Failure:   kind,
		Timestamp: time.Now().UTC(),
	}
}
