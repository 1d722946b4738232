package profilestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"askdocs/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "profile:"

type storedProfile struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Interests []string  `json:"interests"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RedisProfileRepository keeps profiles as JSON values keyed by user id.
// Profiles are small, read on every query, and written rarely.
type RedisProfileRepository struct {
	client *redis.Client
}

// NewRedisProfileRepository wraps an already-connected client.
func NewRedisProfileRepository(client *redis.Client) *RedisProfileRepository {
	return &RedisProfileRepository{client: client}
}

// Get returns the stored profile, or nil, nil when the user has none.
// Unknown role or interest labels in a stored profile are kept as-is;
// they simply never match anything at retrieval time.
func (r *RedisProfileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	raw, err := r.client.Get(ctx, keyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", userID, err)
	}

	var stored storedProfile
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("stored profile %s is corrupt: %w", userID, err)
	}

	interests := make([]domain.Topic, 0, len(stored.Interests))
	for _, t := range stored.Interests {
		interests = append(interests, domain.Topic(t))
	}

	return &domain.Profile{
		UserID:    stored.UserID,
		Role:      domain.Role(stored.Role),
		Interests: interests,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
	}, nil
}

// Put creates or replaces the profile. No TTL: profiles live until
// replaced or the store is flushed.
func (r *RedisProfileRepository) Put(ctx context.Context, profile *domain.Profile) error {
	interests := make([]string, len(profile.Interests))
	for i, t := range profile.Interests {
		interests[i] = string(t)
	}

	payload, err := json.Marshal(storedProfile{
		UserID:    profile.UserID,
		Role:      string(profile.Role),
		Interests: interests,
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal profile %s: %w", profile.UserID, err)
	}

	if err := r.client.Set(ctx, keyPrefix+profile.UserID, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to store profile %s: %w", profile.UserID, err)
	}
	return nil
}

var _ domain.ProfileRepository = (*RedisProfileRepository)(nil)
