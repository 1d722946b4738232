package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"askdocs/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ingestJobRepository struct {
	pool *pgxpool.Pool
}

// NewIngestJobRepository creates the postgres-backed ingest job queue.
func NewIngestJobRepository(pool *pgxpool.Pool) domain.IngestJobRepository {
	return &ingestJobRepository{pool: pool}
}

func (r *ingestJobRepository) Enqueue(ctx context.Context, job *domain.IngestJob) error {
	query := `
		INSERT INTO ingest_jobs (id, job_type, payload, status, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	payloadBytes, err := json.Marshal(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		job.ID,
		job.JobType,
		payloadBytes,
		job.Status,
		job.ErrorMessage,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue ingest job: %w", err)
	}
	return nil
}

// AcquireNextJob claims the oldest queued job and marks it processing in
// one statement. SKIP LOCKED keeps concurrent workers from claiming the
// same job; a single worker consuming this queue is what serializes
// ingestion runs.
func (r *ingestJobRepository) AcquireNextJob(ctx context.Context) (*domain.IngestJob, error) {
	cteQuery := `
		WITH next_job AS (
			SELECT id
			FROM ingest_jobs
			WHERE status = 'new'
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE ingest_jobs
		SET status = 'processing', updated_at = $1
		FROM next_job
		WHERE ingest_jobs.id = next_job.id
		RETURNING ingest_jobs.id, ingest_jobs.job_type, ingest_jobs.payload,
			ingest_jobs.status, ingest_jobs.error_message,
			ingest_jobs.created_at, ingest_jobs.updated_at
	`

	var job domain.IngestJob
	var payloadBytes []byte

	err := r.pool.QueryRow(ctx, cteQuery, time.Now()).Scan(
		&job.ID,
		&job.JobType,
		&payloadBytes,
		&job.Status,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to acquire next ingest job: %w", err)
	}

	if err := json.Unmarshal(payloadBytes, &job.Payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job payload: %w", err)
	}

	return &job, nil
}

func (r *ingestJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error {
	query := `
		UPDATE ingest_jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`
	_, err := r.pool.Exec(ctx, query, status, errorMessage, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update ingest job status: %w", err)
	}
	return nil
}
