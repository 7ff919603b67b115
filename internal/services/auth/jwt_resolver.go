package auth

import (
	"context"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

// JWTResolver verifies HS256 tokens locally and takes the email from the
// claims. Meant for dev and test deployments that run without the
// authentication collaborator.
type JWTResolver struct {
	secret []byte
}

type emailClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

func (r *JWTResolver) ResolveEmail(_ context.Context, raw string) (string, error) {
	if len(r.secret) == 0 {
		return "", ErrInvalidToken
	}

	claims := &emailClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || token == nil || !token.Valid {
		return "", ErrInvalidToken
	}

	email := strings.TrimSpace(claims.Email)
	if email == "" {
		email = strings.TrimSpace(claims.Subject)
	}
	if email == "" {
		return "", ErrInvalidToken
	}

	return email, nil
}
