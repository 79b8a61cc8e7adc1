package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipefinder/backend/internal/apperror"
	"github.com/pageza/recipefinder/backend/internal/logger"
	"github.com/pageza/recipefinder/backend/internal/model"
)

// MaxAvatarSize is the largest accepted avatar upload in bytes
const MaxAvatarSize = 5 << 20

const avatarURLExpiry = 24 * time.Hour

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// ObjectStorage stores avatar images and signs URLs for them
type ObjectStorage interface {
	Upload(ctx context.Context, objectKey, contentType string, data []byte) error
	GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// AvatarService uploads profile pictures to object storage
type AvatarService struct {
	store ObjectStorage
	db    *gorm.DB
	log   *zap.Logger
}

// NewAvatarService creates an AvatarService
func NewAvatarService(store ObjectStorage, db *gorm.DB, log *zap.Logger) *AvatarService {
	return &AvatarService{store: store, db: db, log: logger.OrNop(log)}
}

// UploadAvatar stores data as the avatar of username and returns a signed
// URL for it. The content type is sniffed from the data.
func (s *AvatarService) UploadAvatar(ctx context.Context, username string, data []byte) (string, error) {
	name, err := cleanUsername(username)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", apperror.New(http.StatusBadRequest, apperror.CodeValidation, "Avatar image is required")
	}
	if len(data) > MaxAvatarSize {
		return "", apperror.New(http.StatusBadRequest, apperror.CodeValidation,
			fmt.Sprintf("Avatar must be at most %d MB", MaxAvatarSize>>20))
	}
	contentType := http.DetectContentType(data)
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return "", apperror.New(http.StatusBadRequest, apperror.CodeValidation, "Avatar must be a JPEG, PNG, WebP or GIF image")
	}

	var profile model.UserProfile
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperror.NotFound(apperror.CodeUserNotFound, "User not found")
		}
		return "", apperror.Internal(err, apperror.CodeAvatar, "Failed to upload avatar")
	}

	key := fmt.Sprintf("avatars/%s/%s.%s", profile.ID, uuid.New(), ext)
	if err := s.store.Upload(ctx, key, contentType, data); err != nil {
		s.log.Error("Avatar upload failed", zap.String("name", name), zap.Error(err))
		return "", apperror.Internal(err, apperror.CodeAvatar, "Failed to upload avatar")
	}

	if err := s.db.WithContext(ctx).Model(&profile).Update("avatar_key", key).Error; err != nil {
		return "", apperror.Internal(err, apperror.CodeAvatar, "Failed to upload avatar")
	}

	s.log.Info("Avatar uploaded", zap.String("name", name), zap.String("key", key), zap.Int("bytes", len(data)))
	return s.AvatarURL(ctx, key)
}

// AvatarURL signs a short-lived URL for a stored avatar
func (s *AvatarService) AvatarURL(ctx context.Context, key string) (string, error) {
	url, err := s.store.GeneratePresignedURL(ctx, key, avatarURLExpiry)
	if err != nil {
		return "", apperror.Internal(err, apperror.CodeAvatar, "Failed to sign avatar URL")
	}
	return url, nil
}
