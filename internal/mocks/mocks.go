package mocks

import (
	"context"

	"github.com/pageza/recipefinder/backend/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockEmbedder is a mock implementation of service.Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbedder) Name() string {
	return "mock"
}

// MockRecipeStore is a mock implementation of service.RecipeStore
type MockRecipeStore struct {
	mock.Mock
}

func (m *MockRecipeStore) NearestByEmbedding(ctx context.Context, vec []float32, numCandidates, limit int) ([]repository.ScoredRecipe, error) {
	args := m.Called(ctx, vec, numCandidates, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ScoredRecipe), args.Error(1)
}

func (m *MockRecipeStore) KeywordSearch(ctx context.Context, terms []string, limit int) ([]repository.ScoredRecipe, error) {
	args := m.Called(ctx, terms, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ScoredRecipe), args.Error(1)
}
