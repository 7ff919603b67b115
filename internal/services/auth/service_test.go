package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

type fakeResolver struct {
	email string
	err   error
	calls int
}

func (f *fakeResolver) ResolveEmail(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.email, f.err
}

type fakeCache struct {
	entries map[string]string
}

func (f *fakeCache) Get(_ context.Context, token string) (string, bool, error) {
	email, ok := f.entries[token]
	return email, ok, nil
}

func (f *fakeCache) Set(_ context.Context, token, email string, _ time.Duration) error {
	if f.entries == nil {
		f.entries = map[string]string{}
	}
	f.entries[token] = email
	return nil
}

func TestResolveEmailRejectsBlankToken(t *testing.T) {
	svc := NewService(&fakeResolver{email: "john@example.com"}, nil, 0)

	if _, err := svc.ResolveEmail(context.Background(), "   "); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestResolveEmailPropagatesInvalidToken(t *testing.T) {
	svc := NewService(&fakeResolver{err: ErrInvalidToken}, nil, 0)

	if _, err := svc.ResolveEmail(context.Background(), "bad-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestResolveEmailUsesCacheOnSecondCall(t *testing.T) {
	resolver := &fakeResolver{email: "john@example.com"}
	svc := NewService(resolver, &fakeCache{}, time.Minute)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		email, err := svc.ResolveEmail(ctx, "tok-1")
		if err != nil {
			t.Fatalf("resolve email: %v", err)
		}
		if email != "john@example.com" {
			t.Fatalf("unexpected email: %q", email)
		}
	}

	if resolver.calls != 1 {
		t.Fatalf("expected one resolver call, got %d", resolver.calls)
	}
}

func TestRemoteResolverReadsEmail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != emailFromTokenPath {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Fatalf("unexpected authorization header: %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Fatalf("expected X-Request-Id header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"john@example.com"}`))
	}))
	defer ts.Close()

	resolver := NewRemoteResolver(ts.URL, ts.Client())

	email, err := resolver.ResolveEmail(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("resolve email: %v", err)
	}
	if email != "john@example.com" {
		t.Fatalf("unexpected email: %q", email)
	}
}

func TestRemoteResolverTreatsNonOKAsInvalidToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer ts.Close()

	resolver := NewRemoteResolver(ts.URL, ts.Client())

	if _, err := resolver.ResolveEmail(context.Background(), "bad"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTResolverRoundTrip(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, emailClaims{
		Email: "jane@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	resolver := NewJWTResolver("test-secret")

	email, err := resolver.ResolveEmail(context.Background(), signed)
	if err != nil {
		t.Fatalf("resolve email: %v", err)
	}
	if email != "jane@example.com" {
		t.Fatalf("unexpected email: %q", email)
	}
}

func TestJWTResolverRejectsWrongSecret(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, emailClaims{Email: "jane@example.com"})
	signed, err := token.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	resolver := NewJWTResolver("test-secret")

	if _, err := resolver.ResolveEmail(context.Background(), signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
