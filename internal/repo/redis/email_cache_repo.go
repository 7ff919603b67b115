package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const emailCachePrefix = "auth_email:"

// EmailCacheRepo caches token-to-email resolutions from the authentication
// collaborator. Tokens are hashed before they become keys so raw credentials
// never land in redis.
type EmailCacheRepo struct {
	client *goredis.Client
}

func NewEmailCacheRepo(client *goredis.Client) *EmailCacheRepo {
	return &EmailCacheRepo{client: client}
}

func (r *EmailCacheRepo) Get(ctx context.Context, token string) (string, bool, error) {
	if r.client == nil {
		return "", false, fmt.Errorf("redis client is nil")
	}

	email, err := r.client.Get(ctx, emailCacheKey(token)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get cached email: %w", err)
	}

	return email, true, nil
}

func (r *EmailCacheRepo) Set(ctx context.Context, token, email string, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, emailCacheKey(token), email, ttl).Err(); err != nil {
		return fmt.Errorf("set cached email: %w", err)
	}

	return nil
}

func emailCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return emailCachePrefix + hex.EncodeToString(sum[:])
}
