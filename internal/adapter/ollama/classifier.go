package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"askdocs/internal/domain"

	"golang.org/x/time/rate"
)

// classifyFormat constrains the model to the tag schema so the response
// parses without prompt acrobatics.
var classifyFormat = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"audience": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"topics": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	},
	"required": []string{"audience", "topics"},
}

type classifyResult struct {
	Audience []string `json:"audience"`
	Topics   []string `json:"topics"`
}

// Classifier tags segment text with audience roles and topics by asking
// an Ollama chat model. Calls are rate limited so a large ingestion pass
// cannot flood the model endpoint.
type Classifier struct {
	BaseURL string
	Model   string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewClassifier constructs a classifier. rps caps calls per second;
// values <= 0 disable the cap.
func NewClassifier(baseURL, model string, client *http.Client, rps float64) *Classifier {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Classifier{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  client,
		limiter: limiter,
	}
}

// Classify asks the model to tag the excerpt. Unknown labels in the
// response are dropped; topics are capped. Callers are expected to fall
// back to domain.FallbackTags on any returned error.
func (c *Classifier) Classify(ctx context.Context, text string) (domain.TagSet, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.TagSet{}, fmt.Errorf("classification rate limit wait interrupted: %w", err)
	}

	reqBody := chatRequest{
		Model:     c.Model,
		Messages:  []chatMessage{{Role: "user", Content: classifyPrompt(text)}},
		Stream:    false,
		KeepAlive: -1,
		Format:    classifyFormat,
		Options: map[string]interface{}{
			"temperature": generationTemperature,
		},
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return domain.TagSet{}, fmt.Errorf("failed to marshal classify request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonPayload))
	if err != nil {
		return domain.TagSet{}, fmt.Errorf("failed to create classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return domain.TagSet{}, fmt.Errorf("failed to call classification endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.TagSet{}, fmt.Errorf("classification endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return domain.TagSet{}, fmt.Errorf("failed to decode classification response: %w", err)
	}

	var result classifyResult
	if err := json.Unmarshal([]byte(chatResp.Message.Content), &result); err != nil {
		return domain.TagSet{}, fmt.Errorf("classification response is not valid tag JSON: %w", err)
	}

	return sanitizeTags(result), nil
}

// classifyPrompt lists the closed vocabularies inline so the model picks
// from known labels only.
func classifyPrompt(text string) string {
	roles := make([]string, 0, len(domain.KnownRoles()))
	for _, r := range domain.KnownRoles() {
		roles = append(roles, string(r))
	}
	topics := make([]string, 0, len(domain.KnownTopics()))
	for _, t := range domain.KnownTopics() {
		topics = append(topics, string(t))
	}

	var sb strings.Builder
	sb.WriteString("Classify the following documentation excerpt.\n")
	sb.WriteString("Pick the audience roles it is most relevant to, from exactly this list: ")
	sb.WriteString(strings.Join(roles, ", "))
	sb.WriteString(".\n")
	sb.WriteString(fmt.Sprintf("Pick up to %d topics, from exactly this list: ", domain.MaxTopicsPerSegment))
	sb.WriteString(strings.Join(topics, ", "))
	sb.WriteString(".\n")
	sb.WriteString("Respond with JSON only.\n\nExcerpt:\n")
	sb.WriteString(text)
	return sb.String()
}

// sanitizeTags keeps only labels from the closed vocabularies, dedupes
// them, and caps the topic count.
func sanitizeTags(result classifyResult) domain.TagSet {
	var tags domain.TagSet

	seenRoles := make(map[domain.Role]struct{})
	for _, raw := range result.Audience {
		role, ok := domain.ParseRole(raw)
		if !ok {
			continue
		}
		if _, dup := seenRoles[role]; dup {
			continue
		}
		seenRoles[role] = struct{}{}
		tags.Audience = append(tags.Audience, role)
	}

	seenTopics := make(map[domain.Topic]struct{})
	for _, raw := range result.Topics {
		if len(tags.Topics) == domain.MaxTopicsPerSegment {
			break
		}
		topic, ok := domain.ParseTopic(raw)
		if !ok {
			continue
		}
		if _, dup := seenTopics[topic]; dup {
			continue
		}
		seenTopics[topic] = struct{}{}
		tags.Topics = append(tags.Topics, topic)
	}

	return tags
}

var _ domain.Classifier = (*Classifier)(nil)
