package usecase_test

import (
	"context"
	"errors"
	"testing"

	"askdocs/internal/domain"
	"askdocs/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRetrievalConfig_Validate(t *testing.T) {
	assert.NoError(t, usecase.DefaultRetrievalConfig().Validate())
	assert.Error(t, usecase.RetrievalConfig{Limit: 0}.Validate())
	assert.Error(t, usecase.RetrievalConfig{Limit: -1}.Validate())
}

func TestRetrieveSegments_Execute(t *testing.T) {
	ctx := context.Background()
	profile := domain.Profile{
		UserID:    "u1",
		Role:      domain.RoleDeveloper,
		Interests: []domain.Topic{domain.TopicAI},
	}

	t.Run("Passes the profile filter to the store", func(t *testing.T) {
		encoder := new(mockVectorEncoder)
		store := new(mockSegmentStore)

		queryVec := []float32{0.5, 0.5}
		encoder.On("Encode", mock.Anything, []string{"how does auth work?"}).
			Return([][]float32{queryVec}, nil)
		store.On("Search", mock.Anything, queryVec, domain.SearchFilter{
			Role:      domain.RoleDeveloper,
			Interests: []domain.Topic{domain.TopicAI},
		}, usecase.DefaultRetrievalLimit).Return([]domain.Candidate{
			{ID: "a.txt:0:0", Similarity: 0.8},
		}, nil)

		uc, err := usecase.NewRetrieveSegmentsUsecase(encoder, store, usecase.DefaultRetrievalConfig())
		require.NoError(t, err)

		out, err := uc.Execute(ctx, usecase.RetrieveSegmentsInput{
			Question: "how does auth work?",
			Profile:  profile,
		})

		require.NoError(t, err)
		require.Len(t, out.Candidates, 1)
		assert.Equal(t, "a.txt:0:0", out.Candidates[0].ID)
		store.AssertExpectations(t)
	})

	t.Run("Empty result is not an error", func(t *testing.T) {
		encoder := new(mockVectorEncoder)
		store := new(mockSegmentStore)

		encoder.On("Encode", mock.Anything, mock.Anything).Return([][]float32{{0.1}}, nil)
		store.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.Candidate{}, nil)

		uc, err := usecase.NewRetrieveSegmentsUsecase(encoder, store, usecase.DefaultRetrievalConfig())
		require.NoError(t, err)

		out, err := uc.Execute(ctx, usecase.RetrieveSegmentsInput{Question: "q", Profile: profile})

		require.NoError(t, err)
		assert.Empty(t, out.Candidates)
	})

	t.Run("Rejects blank question", func(t *testing.T) {
		uc, err := usecase.NewRetrieveSegmentsUsecase(new(mockVectorEncoder), new(mockSegmentStore), usecase.DefaultRetrievalConfig())
		require.NoError(t, err)

		_, err = uc.Execute(ctx, usecase.RetrieveSegmentsInput{Question: "   ", Profile: profile})

		assert.Error(t, err)
	})

	t.Run("Propagates embedding failure", func(t *testing.T) {
		encoder := new(mockVectorEncoder)
		encoder.On("Encode", mock.Anything, mock.Anything).Return(nil, errors.New("embedder down"))

		uc, err := usecase.NewRetrieveSegmentsUsecase(encoder, new(mockSegmentStore), usecase.DefaultRetrievalConfig())
		require.NoError(t, err)

		_, err = uc.Execute(ctx, usecase.RetrieveSegmentsInput{Question: "q", Profile: profile})

		assert.Error(t, err)
	})

	t.Run("Propagates store failure", func(t *testing.T) {
		encoder := new(mockVectorEncoder)
		store := new(mockSegmentStore)

		encoder.On("Encode", mock.Anything, mock.Anything).Return([][]float32{{0.1}}, nil)
		store.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("db down"))

		uc, err := usecase.NewRetrieveSegmentsUsecase(encoder, store, usecase.DefaultRetrievalConfig())
		require.NoError(t, err)

		_, err = uc.Execute(ctx, usecase.RetrieveSegmentsInput{Question: "q", Profile: profile})

		assert.Error(t, err)
	})
}
