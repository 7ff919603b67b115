package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const emailFromTokenPath = "/auth/get-email-from-token"

// RemoteResolver asks the external authentication service for the email
// behind a token. Any non-200 answer means the credentials are not valid.
type RemoteResolver struct {
	baseURL string
	client  *http.Client
}

func NewRemoteResolver(baseURL string, client *http.Client) *RemoteResolver {
	return &RemoteResolver{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  client,
	}
}

func (r *RemoteResolver) ResolveEmail(ctx context.Context, token string) (string, error) {
	if r.baseURL == "" {
		return "", fmt.Errorf("auth service url is empty")
	}
	if r.client == nil {
		return "", fmt.Errorf("http client is nil")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+emailFromTokenPath, nil)
	if err != nil {
		return "", fmt.Errorf("build auth service request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call auth service: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", ErrInvalidToken
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode auth service response: %w", err)
	}
	if strings.TrimSpace(payload.Email) == "" {
		return "", ErrInvalidToken
	}

	return payload.Email, nil
}
