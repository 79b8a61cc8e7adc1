package service

import (
	"context"

	"github.com/pageza/recipefinder/backend/internal/types"
)

// ISearchService defines the interface for recipe searches
type ISearchService interface {
	Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error)
	Random() (*types.RecipeCandidate, error)
}

// IRecipeService defines the interface for stored recipe operations
type IRecipeService interface {
	GetRecipe(ctx context.Context, id string) (*types.RecipeCandidate, error)
	Popular(ctx context.Context, limit int) ([]types.RecipeCandidate, error)
	Health(ctx context.Context) types.HealthReport
}

// IIndexService defines the interface for recipe indexing
type IIndexService interface {
	Index(ctx context.Context, recipes []types.IndexRecipeRequest) (types.IndexResult, error)
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	UpsertProfile(ctx context.Context, req types.ProfileRequest) (*types.UserProfile, string, error)
	GetProfile(ctx context.Context, username string) (*types.UserProfile, error)
	SearchHistory(ctx context.Context, username string, page, limit int) ([]types.SearchHistoryEntry, types.Pagination, error)
	Favorites(ctx context.Context, username string) ([]types.Favorite, error)
	AddFavorite(ctx context.Context, req types.FavoriteRequest) (*types.Favorite, bool, error)
	RemoveFavorite(ctx context.Context, username, recipeID string) error
}

// IAvatarService defines the interface for avatar uploads
type IAvatarService interface {
	UploadAvatar(ctx context.Context, username string, data []byte) (string, error)
}

var (
	_ ISearchService  = (*SearchService)(nil)
	_ IRecipeService  = (*RecipeService)(nil)
	_ IIndexService   = (*IndexService)(nil)
	_ IProfileService = (*ProfileService)(nil)
	_ IAvatarService  = (*AvatarService)(nil)

	_ Generator         = (*TemplateGenerator)(nil)
	_ Retriever         = (*CandidateRetriever)(nil)
	_ HistoryRecorder   = (*ProfileService)(nil)
	_ AvatarURLResolver = (*AvatarService)(nil)
)
