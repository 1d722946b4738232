package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"askdocs/internal/domain"
	"askdocs/internal/usecase"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	jobTimeout          = 30 * time.Minute
	initialBackoff      = 1 * time.Second
	maxBackoff          = 5 * time.Minute
)

// CorpusLoader reads documents from a corpus location named in a job
// payload.
type CorpusLoader interface {
	Load(root string) ([]domain.Document, error)
}

// IngestWorker is the single consumer of the ingest job queue. Running
// exactly one of these serializes ingestion passes, so the dedup check
// and the batch write of one pass never interleave with another.
type IngestWorker struct {
	jobRepo  domain.IngestJobRepository
	ingest   usecase.IngestCorpusUsecase
	loader   CorpusLoader
	logger   *slog.Logger
	stopChan chan struct{}
	backoff  time.Duration
}

func NewIngestWorker(
	jobRepo domain.IngestJobRepository,
	ingest usecase.IngestCorpusUsecase,
	loader CorpusLoader,
	logger *slog.Logger,
) *IngestWorker {
	return &IngestWorker{
		jobRepo:  jobRepo,
		ingest:   ingest,
		loader:   loader,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

func (w *IngestWorker) Start() {
	w.logger.Info("starting ingest worker")
	go w.run()
}

func (w *IngestWorker) Stop() {
	w.logger.Info("stopping ingest worker")
	close(w.stopChan)
}

func (w *IngestWorker) run() {
	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.processNextJob()
			if w.backoff > 0 {
				ticker.Reset(w.backoff)
			} else {
				ticker.Reset(defaultPollInterval)
			}
		}
	}
}

func (w *IngestWorker) processNextJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	job, err := w.jobRepo.AcquireNextJob(ctx)
	if err != nil {
		w.logger.Error("failed to acquire next job", "error", err)
		return
	}
	if job == nil {
		return
	}

	w.logger.Info("processing job", "job_id", job.ID, "type", job.JobType)

	var processErr error
	switch job.JobType {
	case domain.JobTypeIngestCorpus:
		processErr = w.processIngestCorpus(ctx, job)
	case domain.JobTypeResetIndex:
		processErr = w.processResetIndex(ctx)
	default:
		processErr = fmt.Errorf("unknown job type: %s", job.JobType)
	}

	status := "completed"
	var errMsg *string
	if processErr != nil {
		status = "failed"
		msg := processErr.Error()
		errMsg = &msg
		w.backoff = w.nextBackoff(w.backoff)
		w.logger.Warn("worker backing off", "job_id", job.ID, "backoff", w.backoff, "error", processErr)
	} else {
		w.backoff = 0
		w.logger.Info("job completed", "job_id", job.ID)
	}

	if err := w.jobRepo.UpdateStatus(ctx, job.ID, status, errMsg); err != nil {
		w.logger.Error("failed to update job status", "job_id", job.ID, "error", err)
	}
}

func (w *IngestWorker) nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return initialBackoff
	}
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func (w *IngestWorker) processIngestCorpus(ctx context.Context, job *domain.IngestJob) error {
	path, ok := job.Payload["path"].(string)
	if !ok || path == "" {
		return fmt.Errorf("missing or invalid path")
	}

	if reset, _ := job.Payload["reset"].(bool); reset {
		removed, err := w.ingest.Reset(ctx)
		if err != nil {
			return fmt.Errorf("failed to reset index before ingest: %w", err)
		}
		w.logger.Info("index reset before ingest", "job_id", job.ID, "removed", removed)
	}

	docs, err := w.loader.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load corpus from %s: %w", path, err)
	}

	report, err := w.ingest.Ingest(ctx, docs)
	if err != nil {
		return err
	}

	w.logger.Info("corpus ingested",
		"job_id", job.ID,
		"path", path,
		"documents", report.DocumentsProcessed,
		"chunks_considered", report.ChunksConsidered,
		"new_segments", report.NewSegments)
	return nil
}

func (w *IngestWorker) processResetIndex(ctx context.Context) error {
	_, err := w.ingest.Reset(ctx)
	return err
}
