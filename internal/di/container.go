package di

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"askdocs/internal/adapter/httpapi"
	"askdocs/internal/adapter/loader"
	"askdocs/internal/adapter/ollama"
	"askdocs/internal/adapter/profilestore"
	"askdocs/internal/adapter/repository"
	"askdocs/internal/domain"
	"askdocs/internal/infra/config"
	"askdocs/internal/infra/httpclient"
	"askdocs/internal/usecase"
	"askdocs/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	SegmentStore domain.SegmentStore
	ProfileRepo  domain.ProfileRepository
	JobRepo      domain.IngestJobRepository

	IngestUsecase usecase.IngestCorpusUsecase
	AnswerUsecase usecase.AnswerQueryUsecase

	Worker  *worker.IngestWorker
	Handler *httpapi.Handler
}

// NewApplicationComponents wires all dependencies from config and the
// already-connected infrastructure clients.
func NewApplicationComponents(
	cfg *config.Config,
	pool *pgxpool.Pool,
	redisClient *redis.Client,
	log *slog.Logger,
) (*ApplicationComponents, error) {
	segmentStore := repository.NewSegmentRepository(pool)
	jobRepo := repository.NewIngestJobRepository(pool)
	profileRepo := profilestore.NewRedisProfileRepository(redisClient)

	// Shared HTTP clients with connection pooling
	embedHTTP := httpclient.NewPooledClient(30 * time.Second)
	chatHTTP := httpclient.NewPooledClient(120 * time.Second)

	embedder := ollama.NewEmbedder(cfg.Embedder.BaseURL, cfg.Embedder.Model, embedHTTP)
	generator := ollama.NewGenerator(cfg.Generator.BaseURL, cfg.Generator.Model, chatHTTP)
	baseClassifier := ollama.NewClassifier(
		cfg.Classifier.BaseURL, cfg.Classifier.Model, chatHTTP, cfg.Classifier.RatePerSecond)
	classifier, err := ollama.NewCachedClassifier(baseClassifier, cfg.ClassifierCacheLen)
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}

	chunker := domain.NewChunkerWithParams(cfg.ChunkSize, cfg.ChunkOverlap)

	ingestUsecase := usecase.NewIngestCorpusUsecase(
		chunker, classifier, embedder, segmentStore, cfg.IngestConcurrency)

	retrieveUsecase, err := usecase.NewRetrieveSegmentsUsecase(
		embedder, segmentStore, usecase.RetrievalConfig{Limit: cfg.RetrievalLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to build retrieval: %w", err)
	}

	weights := usecase.DefaultRankWeights()
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rank weights: %w", err)
	}

	answerUsecase := usecase.NewAnswerQueryUsecase(
		profileRepo, retrieveUsecase, usecase.NewPersonalizedPromptBuilder(),
		generator, weights, cfg.TopK, cfg.AnswerMaxTokens)

	ingestWorker := worker.NewIngestWorker(jobRepo, ingestUsecase, loader.NewDirLoader(), log)

	handler := httpapi.NewHandler(answerUsecase, profileRepo, segmentStore, jobRepo)

	return &ApplicationComponents{
		SegmentStore:  segmentStore,
		ProfileRepo:   profileRepo,
		JobRepo:       jobRepo,
		IngestUsecase: ingestUsecase,
		AnswerUsecase: answerUsecase,
		Worker:        ingestWorker,
		Handler:       handler,
	}, nil
}
