package mocks

import (
	"context"

	"github.com/pageza/recipefinder/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockSearchService is a mock implementation of service.ISearchService
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SearchResponse), args.Error(1)
}

func (m *MockSearchService) Random() (*types.RecipeCandidate, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeCandidate), args.Error(1)
}

// MockRecipeService is a mock implementation of service.IRecipeService
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) GetRecipe(ctx context.Context, id string) (*types.RecipeCandidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeCandidate), args.Error(1)
}

func (m *MockRecipeService) Popular(ctx context.Context, limit int) ([]types.RecipeCandidate, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RecipeCandidate), args.Error(1)
}

func (m *MockRecipeService) Health(ctx context.Context) types.HealthReport {
	args := m.Called(ctx)
	return args.Get(0).(types.HealthReport)
}

// MockIndexService is a mock implementation of service.IIndexService
type MockIndexService struct {
	mock.Mock
}

func (m *MockIndexService) Index(ctx context.Context, recipes []types.IndexRecipeRequest) (types.IndexResult, error) {
	args := m.Called(ctx, recipes)
	return args.Get(0).(types.IndexResult), args.Error(1)
}
