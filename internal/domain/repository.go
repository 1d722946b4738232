package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// SegmentRecord is the persistable form of a classified, embedded segment.
type SegmentRecord struct {
	ID        string
	Source    string
	Page      int
	Ordinal   int
	Content   string
	Audience  []Role
	Topics    []Topic
	Embedding pgvector.Vector
	CreatedAt time.Time
}

// SearchFilter restricts similarity search to segments matching the
// profile on at least one personalization axis: the segment's audience
// contains Role, OR the segment's topics intersect Interests.
type SearchFilter struct {
	Role      Role
	Interests []Topic
}

// Candidate is one retrieval hit: a stored segment plus its similarity to
// the query. Transient; never persisted.
type Candidate struct {
	ID         string
	Source     string
	Content    string
	Audience   []Role
	Topics     []Topic
	Similarity float64 // in [0, 1], 1 is closest
}

// SegmentStore is the vector store holding the indexed corpus.
type SegmentStore interface {
	// ExistingIDs returns the set of segment ids already indexed.
	ExistingIDs(ctx context.Context) (map[string]struct{}, error)

	// AddBatch writes records, skipping any whose id already exists, and
	// returns how many were actually inserted. Existing rows are never
	// overwritten.
	AddBatch(ctx context.Context, records []SegmentRecord) (int, error)

	// DeleteAll unconditionally removes every indexed segment and returns
	// the count removed.
	DeleteAll(ctx context.Context) (int, error)

	// Count returns the number of indexed segments.
	Count(ctx context.Context) (int, error)

	// Search runs a filtered nearest-neighbor search. Results are ordered
	// by ascending distance with segment id as the deterministic
	// tie-break. An empty result is not an error.
	Search(ctx context.Context, queryVector []float32, filter SearchFilter, limit int) ([]Candidate, error)
}

// Job types consumed by the ingest worker.
const (
	JobTypeIngestCorpus = "ingest_corpus"
	JobTypeResetIndex   = "reset_index"
)

// IngestJob is one queued unit of ingestion work. Ingestion runs through a
// single-consumer queue so the dedup check and batch write never race with
// another run against the same store.
type IngestJob struct {
	ID           uuid.UUID
	JobType      string
	Payload      map[string]interface{}
	Status       string
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IngestJobRepository persists and hands out ingest jobs.
type IngestJobRepository interface {
	Enqueue(ctx context.Context, job *IngestJob) error

	// AcquireNextJob atomically claims the oldest queued job, marking it
	// processing. Returns nil, nil when the queue is empty.
	AcquireNextJob(ctx context.Context) (*IngestJob, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error
}
