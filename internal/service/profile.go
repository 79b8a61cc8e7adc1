package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipefinder/backend/internal/apperror"
	"github.com/pageza/recipefinder/backend/internal/logger"
	"github.com/pageza/recipefinder/backend/internal/model"
	"github.com/pageza/recipefinder/backend/internal/types"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// AvatarURLResolver turns a stored avatar key into a URL clients can fetch
type AvatarURLResolver interface {
	AvatarURL(ctx context.Context, key string) (string, error)
}

// ProfileService handles user profiles, search history and favorites
type ProfileService struct {
	db      *gorm.DB
	tokens  *TokenService
	avatars AvatarURLResolver
	log     *zap.Logger
}

// NewProfileService creates a new ProfileService instance. tokens may be nil
// when no session tokens should be issued.
func NewProfileService(db *gorm.DB, tokens *TokenService, log *zap.Logger) *ProfileService {
	return &ProfileService{
		db:     db,
		tokens: tokens,
		log:    logger.OrNop(log),
	}
}

// SetAvatarResolver enables avatar URLs on returned profiles
func (s *ProfileService) SetAvatarResolver(r AvatarURLResolver) {
	s.avatars = r
}

// UpsertProfile creates or updates the profile named in req and returns it
// with a fresh session token.
func (s *ProfileService) UpsertProfile(ctx context.Context, req types.ProfileRequest) (*types.UserProfile, string, error) {
	if req.Name == nil {
		return nil, "", apperror.New(http.StatusBadRequest, apperror.CodeMissingName, "User name is required")
	}
	name, err := CanonicalUserName(*req.Name)
	if err != nil {
		return nil, "", apperror.New(http.StatusBadRequest, apperror.CodeInvalidName, apperrorMessage(err))
	}

	moods := req.PreferredMoods
	if moods == nil {
		moods = []string{DefaultMood}
	}

	var profile model.UserProfile
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("name = ?", name).First(&profile).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		profile.Name = name
		profile.Email = Sanitize(req.Email)
		profile.FavoriteIngredients = model.StringArray(sanitizeAll(req.FavoriteIngredients))
		profile.DietaryRestrictions = model.StringArray(sanitizeAll(req.DietaryRestrictions))
		profile.PreferredMoods = model.StringArray(sanitizeAll(moods))
		return tx.Save(&profile).Error
	})
	if err != nil {
		s.log.Error("Profile update failed", zap.String("name", name), zap.Error(err))
		return nil, "", apperror.Internal(err, apperror.CodeProfile, "Failed to update profile")
	}

	var token string
	if s.tokens != nil {
		token, err = s.tokens.GenerateToken(profile.ID, profile.Name)
		if err != nil {
			return nil, "", apperror.Internal(err, apperror.CodeProfile, "Failed to update profile")
		}
	}

	s.log.Info("Profile saved", zap.String("name", profile.Name), zap.String("id", profile.ID.String()))
	return s.toView(ctx, &profile), token, nil
}

// GetProfile retrieves a profile by name
func (s *ProfileService) GetProfile(ctx context.Context, username string) (*types.UserProfile, error) {
	profile, err := s.findProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.toView(ctx, profile), nil
}

func (s *ProfileService) findProfile(ctx context.Context, username string) (*model.UserProfile, error) {
	name, err := cleanUsername(username)
	if err != nil {
		return nil, err
	}

	var profile model.UserProfile
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(apperror.CodeUserNotFound, "User not found")
		}
		return nil, apperror.Internal(err, apperror.CodeProfile, "Failed to get profile")
	}
	return &profile, nil
}

// RecordSearch stores one search made by userName
func (s *ProfileService) RecordSearch(ctx context.Context, userName string, query types.IngredientQuery, resultCount int) error {
	entry := model.SearchHistory{
		UserName:    userName,
		Ingredients: model.StringArray(query.Ingredients),
		Mood:        query.Mood,
		ResultCount: resultCount,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

// SearchHistory returns one page of the searches made by username, newest
// first. page starts at 1; limit defaults to 20 and is capped at 100.
func (s *ProfileService) SearchHistory(ctx context.Context, username string, page, limit int) ([]types.SearchHistoryEntry, types.Pagination, error) {
	name, err := cleanUsername(username)
	if err != nil {
		return nil, types.Pagination{}, err
	}
	page, limit = clampPage(page, limit)

	var total int64
	var rows []model.SearchHistory
	db := s.db.WithContext(ctx).Model(&model.SearchHistory{}).Where("user_name = ?", name)
	if err := db.Count(&total).Error; err != nil {
		return nil, types.Pagination{}, apperror.Internal(err, apperror.CodeHistory, "Failed to get search history")
	}
	if err := db.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&rows).Error; err != nil {
		return nil, types.Pagination{}, apperror.Internal(err, apperror.CodeHistory, "Failed to get search history")
	}

	entries := make([]types.SearchHistoryEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, types.SearchHistoryEntry{
			ID:          r.ID.String(),
			UserName:    r.UserName,
			Ingredients: []string(r.Ingredients),
			Mood:        r.Mood,
			ResultCount: r.ResultCount,
			Timestamp:   r.CreatedAt,
		})
	}

	pagination := types.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + int64(limit) - 1) / int64(limit),
	}
	return entries, pagination, nil
}

// Favorites lists the recipes saved by username, newest first
func (s *ProfileService) Favorites(ctx context.Context, username string) ([]types.Favorite, error) {
	name, err := cleanUsername(username)
	if err != nil {
		return nil, err
	}

	var rows []model.RecipeFavorite
	if err := s.db.WithContext(ctx).Where("user_name = ?", name).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, apperror.Internal(err, apperror.CodeFavorites, "Failed to get favorites")
	}

	out := make([]types.Favorite, 0, len(rows))
	for i := range rows {
		out = append(out, favoriteView(&rows[i]))
	}
	return out, nil
}

// AddFavorite saves a recipe for a user. Saving the same recipe twice is
// not an error; created reports whether a new row was written.
func (s *ProfileService) AddFavorite(ctx context.Context, req types.FavoriteRequest) (fav *types.Favorite, created bool, err error) {
	for _, f := range []struct{ name, value string }{
		{"userName", req.UserName},
		{"recipeId", req.RecipeID},
		{"recipeName", req.RecipeName},
	} {
		if Sanitize(f.value) == "" {
			return nil, false, apperror.New(http.StatusBadRequest, apperror.CodeMissingField, f.name+" is required")
		}
	}

	userName, err := cleanUsername(req.UserName)
	if err != nil {
		return nil, false, err
	}

	row := model.RecipeFavorite{
		UserName:   userName,
		RecipeID:   Sanitize(req.RecipeID),
		RecipeName: Sanitize(req.RecipeName),
		RecipeData: model.JSONDocument(req.RecipeData),
	}
	if len(row.RecipeData) > 0 && !json.Valid(row.RecipeData) {
		return nil, false, apperror.New(http.StatusBadRequest, apperror.CodeValidation, "recipeData must be valid JSON")
	}

	db := s.db.WithContext(ctx)
	existing, err := s.findFavorite(db, row.UserName, row.RecipeID)
	if err != nil {
		return nil, false, apperror.Internal(err, apperror.CodeFavorite, "Failed to add favorite")
	}
	if existing != nil {
		v := favoriteView(existing)
		return &v, false, nil
	}

	if err := db.Create(&row).Error; err != nil {
		// A concurrent add may have won the unique index
		if existing, ferr := s.findFavorite(db, row.UserName, row.RecipeID); ferr == nil && existing != nil {
			v := favoriteView(existing)
			return &v, false, nil
		}
		return nil, false, apperror.Internal(err, apperror.CodeFavorite, "Failed to add favorite")
	}

	s.log.Info("Favorite added", zap.String("user", row.UserName), zap.String("recipe_id", row.RecipeID))
	v := favoriteView(&row)
	return &v, true, nil
}

func (s *ProfileService) findFavorite(db *gorm.DB, userName, recipeID string) (*model.RecipeFavorite, error) {
	var fav model.RecipeFavorite
	err := db.Where("user_name = ? AND recipe_id = ?", userName, recipeID).First(&fav).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fav, nil
}

// RemoveFavorite deletes a saved recipe
func (s *ProfileService) RemoveFavorite(ctx context.Context, username, recipeID string) error {
	name, err := CanonicalUserName(username)
	id := Sanitize(recipeID)
	if err != nil || id == "" {
		return apperror.New(http.StatusBadRequest, apperror.CodeMissingParameters, "Username and recipe ID are required")
	}

	result := s.db.WithContext(ctx).Where("user_name = ? AND recipe_id = ?", name, id).Delete(&model.RecipeFavorite{})
	if result.Error != nil {
		return apperror.Internal(result.Error, apperror.CodeFavorite, "Failed to remove favorite")
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound(apperror.CodeFavoriteNotFound, "Favorite not found")
	}

	s.log.Info("Favorite removed", zap.String("user", name), zap.String("recipe_id", id))
	return nil
}

func (s *ProfileService) toView(ctx context.Context, p *model.UserProfile) *types.UserProfile {
	view := &types.UserProfile{
		ID:    p.ID.String(),
		Name:  p.Name,
		Email: p.Email,
		Preferences: types.UserPreferences{
			FavoriteIngredients: nonNil(p.FavoriteIngredients),
			DietaryRestrictions: nonNil(p.DietaryRestrictions),
			PreferredMoods:      nonNil(p.PreferredMoods),
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.AvatarKey != "" && s.avatars != nil {
		url, err := s.avatars.AvatarURL(ctx, p.AvatarKey)
		if err != nil {
			s.log.Warn("Failed to resolve avatar URL", zap.String("name", p.Name), zap.Error(err))
		} else {
			view.AvatarURL = url
		}
	}
	return view
}

func favoriteView(f *model.RecipeFavorite) types.Favorite {
	data, _ := f.RecipeData.MarshalJSON()
	return types.Favorite{
		ID:         f.ID.String(),
		UserName:   f.UserName,
		RecipeID:   f.RecipeID,
		RecipeName: f.RecipeName,
		RecipeData: data,
		CreatedAt:  f.CreatedAt,
	}
}

func cleanUsername(raw string) (string, error) {
	name, err := CanonicalUserName(raw)
	if err != nil {
		return "", apperror.New(http.StatusBadRequest, apperror.CodeInvalidUsername, "Valid username is required")
	}
	return name, nil
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return page, limit
}

func sanitizeAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if v := Sanitize(it); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func nonNil(a model.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}

func apperrorMessage(err error) string {
	if ae, ok := apperror.As(err); ok {
		return ae.Message
	}
	return err.Error()
}
