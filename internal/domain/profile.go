package domain

import (
	"context"
	"time"
)

// Profile carries the stored role and interests used to personalize
// retrieval and ranking. The pipeline reads profiles but never mutates
// them; writes happen only at the profile management surface.
type Profile struct {
	UserID    string
	Role      Role
	Interests []Topic
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileRepository is the key-value profile store keyed by user id.
type ProfileRepository interface {
	// Get returns the profile for userID, or nil, nil when absent.
	Get(ctx context.Context, userID string) (*Profile, error)

	// Put creates or replaces a profile. Not called from the query or
	// ingestion pipelines.
	Put(ctx context.Context, profile *Profile) error
}
