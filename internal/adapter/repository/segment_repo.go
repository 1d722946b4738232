package repository

import (
	"context"
	"fmt"
	"log/slog"

	"askdocs/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type segmentRepository struct {
	pool *pgxpool.Pool
}

// NewSegmentRepository creates the pgvector-backed segment store.
func NewSegmentRepository(pool *pgxpool.Pool) domain.SegmentStore {
	return &segmentRepository{pool: pool}
}

// EnsureSchema creates the extension, tables and indexes the store needs.
// Safe to run on every startup. dim is the embedding vector width and must
// match the encoder in use.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", dim)
	}

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS segments (
				id         TEXT PRIMARY KEY,
				source     TEXT NOT NULL,
				page       INTEGER NOT NULL,
				ordinal    INTEGER NOT NULL,
				content    TEXT NOT NULL,
				audience   TEXT[] NOT NULL DEFAULT '{}',
				topics     TEXT[] NOT NULL DEFAULT '{}',
				embedding  vector(%d) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, dim),
		`CREATE INDEX IF NOT EXISTS idx_segments_audience ON segments USING GIN (audience)`,
		`CREATE INDEX IF NOT EXISTS idx_segments_topics ON segments USING GIN (topics)`,
		`CREATE INDEX IF NOT EXISTS idx_segments_embedding ON segments
			USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
		`CREATE TABLE IF NOT EXISTS ingest_jobs (
			id            UUID PRIMARY KEY,
			job_type      TEXT NOT NULL,
			payload       JSONB NOT NULL DEFAULT '{}',
			status        TEXT NOT NULL DEFAULT 'new',
			error_message TEXT,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ingest_jobs_status ON ingest_jobs (status, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

func (r *segmentRepository) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM segments`)
	if err != nil {
		return nil, fmt.Errorf("failed to query segment ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan segment id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return ids, nil
}

// AddBatch inserts records in one batch, skipping ids that already exist.
// Existing rows are never overwritten, so a concurrent or repeated run
// cannot clobber indexed segments.
func (r *segmentRepository) AddBatch(ctx context.Context, records []domain.SegmentRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO segments (id, source, page, ordinal, content, audience, topics, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(query,
			rec.ID,
			rec.Source,
			rec.Page,
			rec.Ordinal,
			rec.Content,
			rolesToStrings(rec.Audience),
			topicsToStrings(rec.Topics),
			rec.Embedding,
			rec.CreatedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	inserted := 0
	for range records {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert segment batch: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	slog.Debug("segment batch written",
		slog.Int("submitted", len(records)),
		slog.Int("inserted", inserted))

	return inserted, nil
}

// DeleteAll clears the index in one statement, so it either removes
// everything or fails with the index intact.
func (r *segmentRepository) DeleteAll(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM segments`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete segments: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *segmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM segments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count segments: %w", err)
	}
	return count, nil
}

// Search runs cosine nearest-neighbor search restricted to segments that
// match the profile on at least one axis. Distance orders the result,
// with id as a deterministic tie-break; similarity is 1-distance clamped
// to [0, 1].
func (r *segmentRepository) Search(ctx context.Context, queryVector []float32, filter domain.SearchFilter, limit int) ([]domain.Candidate, error) {
	query := `
		SELECT id, source, content, audience, topics, embedding <=> $1 AS distance
		FROM segments
		WHERE $2 = ANY(audience) OR topics && $3
		ORDER BY distance ASC, id ASC
		LIMIT $4
	`

	rows, err := r.pool.Query(ctx, query,
		vectorParam(queryVector),
		string(filter.Role),
		topicsToStrings(filter.Interests),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search segments: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var (
			c        domain.Candidate
			audience []string
			topics   []string
			distance float64
		)
		if err := rows.Scan(&c.ID, &c.Source, &c.Content, &audience, &topics, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		c.Audience = stringsToRoles(audience)
		c.Topics = stringsToTopics(topics)
		c.Similarity = clampSimilarity(1.0 - distance)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return candidates, nil
}

func clampSimilarity(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
