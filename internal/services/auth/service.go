package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type EmailResolver interface {
	ResolveEmail(ctx context.Context, token string) (string, error)
}

type EmailCache interface {
	Get(ctx context.Context, token string) (string, bool, error)
	Set(ctx context.Context, token, email string, ttl time.Duration) error
}

// Service exchanges bearer tokens for the caller's email. The resolver owns
// token validation; this layer only adds a short-lived cache so every request
// in a burst does not round-trip to the collaborator.
type Service struct {
	resolver EmailResolver
	cache    EmailCache
	cacheTTL time.Duration
}

func NewService(resolver EmailResolver, cache EmailCache, cacheTTL time.Duration) *Service {
	return &Service{
		resolver: resolver,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (s *Service) ResolveEmail(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	if s.resolver == nil {
		return "", fmt.Errorf("email resolver is not configured")
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if email, ok, err := s.cache.Get(ctx, token); err == nil && ok {
			return email, nil
		}
	}

	email, err := s.resolver.ResolveEmail(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("resolve email from token: %w", err)
	}
	if email == "" {
		return "", ErrInvalidToken
	}

	if s.cache != nil && s.cacheTTL > 0 {
		_ = s.cache.Set(ctx, token, email, s.cacheTTL)
	}

	return email, nil
}
