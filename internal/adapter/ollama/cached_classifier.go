package ollama

import (
	"context"
	"crypto/sha256"
	"fmt"

	"askdocs/internal/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultClassifierCacheSize bounds the in-memory classification cache.
const DefaultClassifierCacheSize = 4096

// CachedClassifier memoizes successful classifications keyed by a digest
// of the excerpt, so re-ingesting overlapping corpora does not repeat
// model calls. Failures are never cached; a segment that failed once gets
// a fresh attempt on the next pass.
type CachedClassifier struct {
	inner domain.Classifier
	cache *lru.Cache[string, domain.TagSet]
}

// NewCachedClassifier wraps inner with an LRU cache of the given size;
// sizes <= 0 use the default.
func NewCachedClassifier(inner domain.Classifier, size int) (*CachedClassifier, error) {
	if size <= 0 {
		size = DefaultClassifierCacheSize
	}
	cache, err := lru.New[string, domain.TagSet](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier cache: %w", err)
	}
	return &CachedClassifier{inner: inner, cache: cache}, nil
}

func (c *CachedClassifier) Classify(ctx context.Context, text string) (domain.TagSet, error) {
	key := fmt.Sprintf("%x", sha256.Sum256([]byte(text)))
	if tags, ok := c.cache.Get(key); ok {
		return tags, nil
	}

	tags, err := c.inner.Classify(ctx, text)
	if err != nil {
		return domain.TagSet{}, err
	}

	c.cache.Add(key, tags)
	return tags, nil
}

var _ domain.Classifier = (*CachedClassifier)(nil)
