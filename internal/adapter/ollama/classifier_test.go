package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"askdocs/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifyServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.NotNil(t, req.Format)

		resp := map[string]interface{}{
			"message": map[string]string{"content": content},
			"done":    true,
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestClassifier_Classify(t *testing.T) {
	ctx := context.Background()

	t.Run("Parses tags from the model response", func(t *testing.T) {
		srv := classifyServer(t, `{"audience":["developer","admin"],"topics":["AI","Security"]}`)
		defer srv.Close()

		c := NewClassifier(srv.URL, "test-model", srv.Client(), 0)

		tags, err := c.Classify(ctx, "some excerpt")

		require.NoError(t, err)
		assert.Equal(t, []domain.Role{domain.RoleDeveloper, domain.RoleAdmin}, tags.Audience)
		assert.Equal(t, []domain.Topic{domain.TopicAI, domain.TopicSecurity}, tags.Topics)
	})

	t.Run("Drops labels outside the vocabulary", func(t *testing.T) {
		srv := classifyServer(t, `{"audience":["developer","wizard"],"topics":["AI","Astrology"]}`)
		defer srv.Close()

		c := NewClassifier(srv.URL, "test-model", srv.Client(), 0)

		tags, err := c.Classify(ctx, "some excerpt")

		require.NoError(t, err)
		assert.Equal(t, []domain.Role{domain.RoleDeveloper}, tags.Audience)
		assert.Equal(t, []domain.Topic{domain.TopicAI}, tags.Topics)
	})

	t.Run("Normalizes label casing", func(t *testing.T) {
		srv := classifyServer(t, `{"audience":["Developer"],"topics":["ai","ml"]}`)
		defer srv.Close()

		c := NewClassifier(srv.URL, "test-model", srv.Client(), 0)

		tags, err := c.Classify(ctx, "some excerpt")

		require.NoError(t, err)
		assert.Equal(t, []domain.Role{domain.RoleDeveloper}, tags.Audience)
		assert.Equal(t, []domain.Topic{domain.TopicAI, domain.TopicML}, tags.Topics)
	})

	t.Run("Caps and dedupes topics", func(t *testing.T) {
		srv := classifyServer(t, `{"audience":["developer"],"topics":["AI","AI","ML","Python","Security"]}`)
		defer srv.Close()

		c := NewClassifier(srv.URL, "test-model", srv.Client(), 0)

		tags, err := c.Classify(ctx, "some excerpt")

		require.NoError(t, err)
		assert.Equal(t, []domain.Topic{domain.TopicAI, domain.TopicML, domain.TopicPython}, tags.Topics)
	})

	t.Run("Malformed JSON is an error", func(t *testing.T) {
		srv := classifyServer(t, `not json at all`)
		defer srv.Close()

		c := NewClassifier(srv.URL, "test-model", srv.Client(), 0)

		_, err := c.Classify(ctx, "some excerpt")

		assert.Error(t, err)
	})

	t.Run("Non-200 status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := NewClassifier(srv.URL, "test-model", srv.Client(), 0)

		_, err := c.Classify(ctx, "some excerpt")

		assert.Error(t, err)
	})
}

type countingClassifier struct {
	calls int
	tags  domain.TagSet
	err   error
}

func (c *countingClassifier) Classify(ctx context.Context, text string) (domain.TagSet, error) {
	c.calls++
	return c.tags, c.err
}

func TestCachedClassifier(t *testing.T) {
	ctx := context.Background()
	tags := domain.TagSet{
		Audience: []domain.Role{domain.RoleDeveloper},
		Topics:   []domain.Topic{domain.TopicAI},
	}

	t.Run("Repeated excerpt hits the cache", func(t *testing.T) {
		inner := &countingClassifier{tags: tags}
		cached, err := NewCachedClassifier(inner, 16)
		require.NoError(t, err)

		first, err := cached.Classify(ctx, "same excerpt")
		require.NoError(t, err)
		second, err := cached.Classify(ctx, "same excerpt")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("Distinct excerpts miss", func(t *testing.T) {
		inner := &countingClassifier{tags: tags}
		cached, err := NewCachedClassifier(inner, 16)
		require.NoError(t, err)

		_, _ = cached.Classify(ctx, "one")
		_, _ = cached.Classify(ctx, "two")

		assert.Equal(t, 2, inner.calls)
	})

	t.Run("Failures are not cached", func(t *testing.T) {
		inner := &countingClassifier{err: errors.New("model down")}
		cached, err := NewCachedClassifier(inner, 16)
		require.NoError(t, err)

		_, err = cached.Classify(ctx, "excerpt")
		assert.Error(t, err)
		_, err = cached.Classify(ctx, "excerpt")
		assert.Error(t, err)

		assert.Equal(t, 2, inner.calls)
	})
}
