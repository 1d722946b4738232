package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"askdocs/internal/domain"

	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"
)

// DefaultClassifyConcurrency bounds how many classification calls run at
// once during one ingestion pass.
const DefaultClassifyConcurrency = 4

// IngestReport summarizes one ingestion pass.
type IngestReport struct {
	DocumentsProcessed int
	ChunksConsidered   int
	NewSegments        int
	Elapsed            time.Duration
}

// IngestCorpusUsecase drives the ingestion pipeline: split, identify,
// dedup, classify, embed, write. Reset destroys the index.
type IngestCorpusUsecase interface {
	Ingest(ctx context.Context, docs []domain.Document) (*IngestReport, error)
	Reset(ctx context.Context) (int, error)
}

type ingestCorpusUsecase struct {
	chunker     domain.Chunker
	classifier  domain.Classifier
	encoder     domain.VectorEncoder
	store       domain.SegmentStore
	concurrency int
}

// NewIngestCorpusUsecase wires the ingestion pipeline. concurrency bounds
// parallel classification calls; values <= 0 use the default.
func NewIngestCorpusUsecase(
	chunker domain.Chunker,
	classifier domain.Classifier,
	encoder domain.VectorEncoder,
	store domain.SegmentStore,
	concurrency int,
) IngestCorpusUsecase {
	if concurrency <= 0 {
		concurrency = DefaultClassifyConcurrency
	}
	return &ingestCorpusUsecase{
		chunker:     chunker,
		classifier:  classifier,
		encoder:     encoder,
		store:       store,
		concurrency: concurrency,
	}
}

// Ingest runs one pass over docs. Segments whose id is already indexed are
// skipped untouched; only fresh segments are classified, embedded and
// written. Classification failures never abort the pass: the affected
// segment gets the fallback tags and ingestion continues. Re-running over
// an unchanged corpus inserts nothing.
func (u *ingestCorpusUsecase) Ingest(ctx context.Context, docs []domain.Document) (*IngestReport, error) {
	start := time.Now()

	var segments []domain.Segment
	for _, doc := range docs {
		segments = append(segments, u.chunker.Split(doc)...)
	}
	segments = domain.AssignSegmentIDs(segments)

	existing, err := u.store.ExistingIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing segment ids: %w", err)
	}

	fresh := make([]domain.Segment, 0, len(segments))
	for _, s := range segments {
		if _, ok := existing[s.ID]; !ok {
			fresh = append(fresh, s)
		}
	}

	report := &IngestReport{
		DocumentsProcessed: len(docs),
		ChunksConsidered:   len(segments),
	}

	if len(fresh) == 0 {
		slog.Info("ingest pass found no new segments",
			slog.Int("documents", len(docs)),
			slog.Int("chunks_considered", len(segments)))
		report.Elapsed = time.Since(start)
		return report, nil
	}

	if err := u.classifyAll(ctx, fresh); err != nil {
		return nil, err
	}

	texts := make([]string, len(fresh))
	for i, s := range fresh {
		texts[i] = s.Text
	}
	embeddings, err := u.encoder.Encode(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d segments: %w", len(fresh), err)
	}
	if len(embeddings) != len(fresh) {
		return nil, fmt.Errorf("encoder returned %d vectors for %d segments", len(embeddings), len(fresh))
	}

	records := make([]domain.SegmentRecord, len(fresh))
	now := time.Now().UTC()
	for i, s := range fresh {
		records[i] = domain.SegmentRecord{
			ID:        s.ID,
			Source:    s.Source,
			Page:      s.Page,
			Ordinal:   s.Ordinal,
			Content:   s.Text,
			Audience:  s.Audience,
			Topics:    s.Topics,
			Embedding: vectorOf(embeddings[i]),
			CreatedAt: now,
		}
	}

	inserted, err := u.store.AddBatch(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to write segment batch: %w", err)
	}

	report.NewSegments = inserted
	report.Elapsed = time.Since(start)

	slog.Info("ingest pass completed",
		slog.Int("documents", report.DocumentsProcessed),
		slog.Int("chunks_considered", report.ChunksConsidered),
		slog.Int("new_segments", report.NewSegments),
		slog.Duration("elapsed", report.Elapsed))

	return report, nil
}

// classifyAll tags every segment in place, running at most u.concurrency
// classification calls at once. Per-segment failures downgrade to the
// fallback tags.
func (u *ingestCorpusUsecase) classifyAll(ctx context.Context, segments []domain.Segment) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)

	for i := range segments {
		g.Go(func() error {
			excerpt := domain.NormalizeExcerpt(segments[i].Text, domain.ClassifyExcerptLimit)
			tags, err := u.classifier.Classify(gctx, excerpt)
			if err != nil {
				slog.Warn("segment classification failed, using fallback tags",
					slog.String("segment_id", segments[i].ID),
					slog.String("error", err.Error()))
				tags = domain.FallbackTags()
			}
			if len(tags.Audience) == 0 {
				tags = domain.FallbackTags()
			}
			segments[i].Audience = tags.Audience
			segments[i].Topics = tags.Topics
			return nil
		})
	}

	// Workers never return errors; Wait only reports context cancellation.
	if err := g.Wait(); err != nil {
		return fmt.Errorf("classification pass interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("classification pass interrupted: %w", err)
	}
	return nil
}

func vectorOf(values []float32) pgvector.Vector {
	return pgvector.NewVector(values)
}

// Reset destroys the entire index. All-or-nothing: the store either clears
// completely or reports an error with the index intact.
func (u *ingestCorpusUsecase) Reset(ctx context.Context) (int, error) {
	removed, err := u.store.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reset index: %w", err)
	}
	slog.Info("index reset", slog.Int("segments_removed", removed))
	return removed, nil
}
