package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"askdocs/internal/domain"
	"askdocs/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Handler exposes the query pipeline, profile management and the corpus
// administration surface over JSON HTTP.
type Handler struct {
	answerUsecase usecase.AnswerQueryUsecase
	profiles      domain.ProfileRepository
	store         domain.SegmentStore
	jobRepo       domain.IngestJobRepository
}

func NewHandler(
	answerUsecase usecase.AnswerQueryUsecase,
	profiles domain.ProfileRepository,
	store domain.SegmentStore,
	jobRepo domain.IngestJobRepository,
) *Handler {
	return &Handler{
		answerUsecase: answerUsecase,
		profiles:      profiles,
		store:         store,
		jobRepo:       jobRepo,
	}
}

// Register mounts every route on the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/v1/query", h.Query)
	e.GET("/v1/status", h.Status)
	e.GET("/v1/profiles/:user_id", h.GetProfile)
	e.PUT("/v1/profiles/:user_id", h.PutProfile)
	e.POST("/internal/corpus/ingest", h.EnqueueIngest)
	e.POST("/internal/corpus/reset", h.EnqueueReset)
}

type queryRequest struct {
	UserID    string `json:"user_id"`
	Question  string `json:"question"`
	TopK      int    `json:"top_k,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

type queryResponse struct {
	Success    bool     `json:"success"`
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	MatchCount int      `json:"match_count"`
	Message    string   `json:"message,omitempty"`
	Failure    string   `json:"failure,omitempty"`
	Timestamp  string   `json:"timestamp"`
}

// Query runs the personalized question pipeline. Structured pipeline
// failures come back as 200 with success=false; only malformed requests
// are HTTP errors.
func (h *Handler) Query(ctx echo.Context) error {
	var req queryRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.UserID == "" || req.Question == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "user_id and question are required"})
	}

	output, err := h.answerUsecase.Execute(ctx.Request().Context(), usecase.AnswerQueryInput{
		UserID:    req.UserID,
		Question:  req.Question,
		TopK:      req.TopK,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	sources := output.Sources
	if sources == nil {
		sources = []string{}
	}
	return ctx.JSON(http.StatusOK, queryResponse{
		Success:    output.Success,
		Answer:     output.Answer,
		Sources:    sources,
		MatchCount: output.MatchCount,
		Message:    output.Message,
		Failure:    string(output.Failure),
		Timestamp:  output.Timestamp.Format(time.RFC3339),
	})
}

// Status reports index size for operators and readiness probes.
func (h *Handler) Status(ctx echo.Context) error {
	count, err := h.store.Count(ctx.Request().Context())
	if err != nil {
		return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
	}
	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"status":           "ok",
		"indexed_segments": count,
	})
}

type profilePayload struct {
	Role      string   `json:"role"`
	Interests []string `json:"interests"`
}

type profileResponse struct {
	UserID    string   `json:"user_id"`
	Role      string   `json:"role"`
	Interests []string `json:"interests"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

func (h *Handler) GetProfile(ctx echo.Context) error {
	userID := ctx.Param("user_id")

	profile, err := h.profiles.Get(ctx.Request().Context(), userID)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "profile store unavailable"})
	}
	if profile == nil {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": fmt.Sprintf("no profile for user_id=%s", userID)})
	}

	return ctx.JSON(http.StatusOK, toProfileResponse(profile))
}

// PutProfile creates or replaces a profile. Role and interests are
// validated against the closed vocabularies; a typo'd label would
// otherwise silently match nothing at query time.
func (h *Handler) PutProfile(ctx echo.Context) error {
	userID := ctx.Param("user_id")

	var payload profilePayload
	if err := ctx.Bind(&payload); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	role, ok := domain.ParseRole(payload.Role)
	if !ok {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown role: %s", payload.Role)})
	}

	interests := make([]domain.Topic, 0, len(payload.Interests))
	for _, raw := range payload.Interests {
		topic, ok := domain.ParseTopic(raw)
		if !ok {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown topic: %s", raw)})
		}
		interests = append(interests, topic)
	}

	now := time.Now().UTC()
	existing, err := h.profiles.Get(ctx.Request().Context(), userID)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "profile store unavailable"})
	}

	profile := &domain.Profile{
		UserID:    userID,
		Role:      role,
		Interests: interests,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing != nil {
		profile.CreatedAt = existing.CreatedAt
	}

	if err := h.profiles.Put(ctx.Request().Context(), profile); err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store profile"})
	}

	return ctx.JSON(http.StatusOK, toProfileResponse(profile))
}

type ingestRequest struct {
	Path  string `json:"path"`
	Reset bool   `json:"reset"`
}

// EnqueueIngest queues an ingestion pass. The single worker consuming the
// queue is what keeps concurrent ingest requests from racing; the handler
// only enqueues.
func (h *Handler) EnqueueIngest(ctx echo.Context) error {
	var req ingestRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Path == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "path is required"})
	}

	job := newJob(domain.JobTypeIngestCorpus, map[string]interface{}{"path": req.Path, "reset": req.Reset})
	if err := h.jobRepo.Enqueue(ctx.Request().Context(), job); err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to enqueue ingest job"})
	}

	return ctx.JSON(http.StatusAccepted, map[string]string{
		"job_id": job.ID.String(),
		"status": job.Status,
	})
}

// EnqueueReset queues a destructive index reset.
func (h *Handler) EnqueueReset(ctx echo.Context) error {
	job := newJob(domain.JobTypeResetIndex, map[string]interface{}{})
	if err := h.jobRepo.Enqueue(ctx.Request().Context(), job); err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to enqueue reset job"})
	}

	return ctx.JSON(http.StatusAccepted, map[string]string{
		"job_id": job.ID.String(),
		"status": job.Status,
	})
}

func newJob(jobType string, payload map[string]interface{}) *domain.IngestJob {
	now := time.Now().UTC()
	return &domain.IngestJob{
		ID:        uuid.New(),
		JobType:   jobType,
		Payload:   payload,
		Status:    "new",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func toProfileResponse(profile *domain.Profile) profileResponse {
	interests := make([]string, len(profile.Interests))
	for i, t := range profile.Interests {
		interests[i] = string(t)
	}
	resp := profileResponse{
		UserID:    profile.UserID,
		Role:      string(profile.Role),
		Interests: interests,
	}
	if !profile.CreatedAt.IsZero() {
		resp.CreatedAt = profile.CreatedAt.Format(time.RFC3339)
	}
	if !profile.UpdatedAt.IsZero() {
		resp.UpdatedAt = profile.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
