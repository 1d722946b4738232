package domain

import "context"

// LLMClient defines the capability to send prompts to a text-generation
// model and receive textual responses.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (*LLMResponse, error)
	Version() string
}

// LLMResponse carries the model output and whether generation finished.
type LLMResponse struct {
	Text string
	Done bool
}
