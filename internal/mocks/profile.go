package mocks

import (
	"context"

	"github.com/pageza/recipefinder/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockProfileService is a mock implementation of service.IProfileService
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) UpsertProfile(ctx context.Context, req types.ProfileRequest) (*types.UserProfile, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*types.UserProfile), args.String(1), args.Error(2)
}

func (m *MockProfileService) GetProfile(ctx context.Context, username string) (*types.UserProfile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserProfile), args.Error(1)
}

func (m *MockProfileService) SearchHistory(ctx context.Context, username string, page, limit int) ([]types.SearchHistoryEntry, types.Pagination, error) {
	args := m.Called(ctx, username, page, limit)
	if args.Get(0) == nil {
		return nil, types.Pagination{}, args.Error(2)
	}
	return args.Get(0).([]types.SearchHistoryEntry), args.Get(1).(types.Pagination), args.Error(2)
}

func (m *MockProfileService) Favorites(ctx context.Context, username string) ([]types.Favorite, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Favorite), args.Error(1)
}

func (m *MockProfileService) AddFavorite(ctx context.Context, req types.FavoriteRequest) (*types.Favorite, bool, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*types.Favorite), args.Bool(1), args.Error(2)
}

func (m *MockProfileService) RemoveFavorite(ctx context.Context, username, recipeID string) error {
	args := m.Called(ctx, username, recipeID)
	return args.Error(0)
}

// MockAvatarService is a mock implementation of service.IAvatarService
type MockAvatarService struct {
	mock.Mock
}

func (m *MockAvatarService) UploadAvatar(ctx context.Context, username string, data []byte) (string, error) {
	args := m.Called(ctx, username, data)
	return args.String(0), args.Error(1)
}
