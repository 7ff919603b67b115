package avatars

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	pgrepo "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/repo/postgres"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("profile not found")
	ErrNoAvatar          = errors.New("profile has no avatar")
	ErrUnsupportedFormat = errors.New("unsupported avatar format")
)

const MaxAvatarBytes = 5 << 20

var allowedContentTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type ProfileStore interface {
	GetByEmail(ctx context.Context, email string) (pgrepo.ProfileRecord, error)
	SetAvatarKey(ctx context.Context, email, key string) error
}

type Service struct {
	profiles ProfileStore
	storage  Storage
}

func NewService(profiles ProfileStore, storage Storage) *Service {
	return &Service{
		profiles: profiles,
		storage:  storage,
	}
}

// Upload stores the caller's avatar and records its object key on the
// profile. The key embeds the username, so a re-upload overwrites the
// previous object.
func (s *Service) Upload(ctx context.Context, callerEmail string, body io.Reader, size int64, contentType string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if body == nil || size <= 0 {
		return ErrValidation
	}
	if size > MaxAvatarBytes {
		return fmt.Errorf("avatar exceeds %d bytes: %w", int64(MaxAvatarBytes), ErrValidation)
	}

	ext, ok := allowedContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return ErrUnsupportedFormat
	}

	profile, err := s.profiles.GetByEmail(ctx, strings.TrimSpace(callerEmail))
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get profile for avatar upload: %w", err)
	}

	key := fmt.Sprintf("avatars/%s.%s", profile.Username, ext)
	if err := s.storage.Put(ctx, key, body, size, contentType); err != nil {
		return fmt.Errorf("store avatar: %w", err)
	}

	if err := s.profiles.SetAvatarKey(ctx, profile.Email, key); err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("record avatar key: %w", err)
	}

	return nil
}

// URL returns a presigned link to the caller's current avatar.
func (s *Service) URL(ctx context.Context, callerEmail string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}

	profile, err := s.profiles.GetByEmail(ctx, strings.TrimSpace(callerEmail))
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get profile for avatar url: %w", err)
	}
	if profile.AvatarKey == nil || *profile.AvatarKey == "" {
		return "", ErrNoAvatar
	}

	url, err := s.storage.PresignGet(ctx, *profile.AvatarKey, signedURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign avatar url: %w", err)
	}

	return url, nil
}

func (s *Service) ready() error {
	if s.profiles == nil || s.storage == nil {
		return fmt.Errorf("avatar service dependencies are not configured")
	}
	return nil
}
