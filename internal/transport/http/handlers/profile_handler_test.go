package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	pgrepo "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/repo/postgres"
	authsvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/auth"
	profilesvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/profiles"
)

type memProfileStore struct {
	byEmail map[string]pgrepo.ProfileRecord
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{byEmail: make(map[string]pgrepo.ProfileRecord)}
}

func (m *memProfileStore) GetByEmail(_ context.Context, email string) (pgrepo.ProfileRecord, error) {
	record, ok := m.byEmail[email]
	if !ok {
		return pgrepo.ProfileRecord{}, pgrepo.ErrProfileNotFound
	}
	return record, nil
}

func (m *memProfileStore) GetByUsername(_ context.Context, username string) (pgrepo.ProfileRecord, error) {
	for _, record := range m.byEmail {
		if record.Username == username {
			return record, nil
		}
	}
	return pgrepo.ProfileRecord{}, pgrepo.ErrProfileNotFound
}

func (m *memProfileStore) Create(_ context.Context, record pgrepo.ProfileRecord) (pgrepo.ProfileRecord, error) {
	if _, ok := m.byEmail[record.Email]; ok {
		return pgrepo.ProfileRecord{}, pgrepo.ErrProfileExists
	}
	m.byEmail[record.Email] = record
	return record, nil
}

func (m *memProfileStore) Update(_ context.Context, email string, in pgrepo.ProfileMutation) (pgrepo.ProfileRecord, error) {
	record, ok := m.byEmail[email]
	if !ok {
		return pgrepo.ProfileRecord{}, pgrepo.ErrProfileNotFound
	}
	record.Name = in.Name
	record.Surname = in.Surname
	record.Location = in.Location
	record.Description = in.Description
	record.DateOfBirth = in.DateOfBirth
	record.Interests = in.Interests
	m.byEmail[email] = record
	return record, nil
}

func (m *memProfileStore) Delete(_ context.Context, email string) (pgrepo.ProfileRecord, error) {
	record, ok := m.byEmail[email]
	if !ok {
		return pgrepo.ProfileRecord{}, pgrepo.ErrProfileNotFound
	}
	delete(m.byEmail, email)
	return record, nil
}

func (m *memProfileStore) ListUsernames(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(m.byEmail))
	for _, record := range m.byEmail {
		out = append(out, record.Username)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memProfileStore) ListAll(_ context.Context) ([]pgrepo.ProfileRecord, error) {
	out := make([]pgrepo.ProfileRecord, 0, len(m.byEmail))
	for _, record := range m.byEmail {
		out = append(out, record)
	}
	return out, nil
}

func (m *memProfileStore) ListVerified(_ context.Context) ([]pgrepo.ProfileRecord, error) {
	var out []pgrepo.ProfileRecord
	for _, record := range m.byEmail {
		if record.IsVerified {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *memProfileStore) SearchByName(_ context.Context, name string, offset, limit int) ([]pgrepo.ProfileRecord, error) {
	var out []pgrepo.ProfileRecord
	for _, record := range m.byEmail {
		if record.Name == name {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *memProfileStore) SetVerified(_ context.Context, username string, verified bool) error {
	for email, record := range m.byEmail {
		if record.Username == username {
			record.IsVerified = verified
			m.byEmail[email] = record
			return nil
		}
	}
	return pgrepo.ErrProfileNotFound
}

func profileTestHandler(store *memProfileStore) *ProfileHandler {
	return NewProfileHandler(profilesvc.NewService(store))
}

func performProfileRequest(t *testing.T, handle http.HandlerFunc, method, path, callerEmail string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if callerEmail != "" {
		req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{Email: callerEmail}))
	}
	rec := httptest.NewRecorder()
	handle(rec, req)
	return rec
}

func TestProfileHandlerCreateReturnsCreated(t *testing.T) {
	store := newMemProfileStore()
	h := profileTestHandler(store)

	rec := performProfileRequest(t, h.Create, http.MethodPost, "/users", "john@example.com", map[string]any{
		"name":          "John",
		"surname":       "Doe",
		"username":      "johndoe",
		"date_of_birth": "1990-04-12",
		"interests":     []string{"hiking", "chess"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d, body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var payload struct {
		Email     string   `json:"email"`
		Username  string   `json:"username"`
		Interests []string `json:"interests"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Email != "john@example.com" {
		t.Fatalf("unexpected email: %q", payload.Email)
	}
	if payload.Username != "johndoe" {
		t.Fatalf("unexpected username: %q", payload.Username)
	}
	if len(payload.Interests) != 2 || payload.Interests[0] != "hiking" {
		t.Fatalf("unexpected interests: %v", payload.Interests)
	}
}

func TestProfileHandlerCreateTwiceReturnsConflict(t *testing.T) {
	store := newMemProfileStore()
	h := profileTestHandler(store)

	body := map[string]any{"name": "John", "surname": "Doe", "username": "johndoe"}
	if rec := performProfileRequest(t, h.Create, http.MethodPost, "/users", "john@example.com", body); rec.Code != http.StatusCreated {
		t.Fatalf("first create failed: %d", rec.Code)
	}

	rec := performProfileRequest(t, h.Create, http.MethodPost, "/users", "john@example.com", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusConflict)
	}
	if code := decodeErrorCode(t, rec); code != "ALREADY_EXISTS" {
		t.Fatalf("unexpected error code: got %q want %q", code, "ALREADY_EXISTS")
	}
}

func TestProfileHandlerCreateRejectsCommaInterest(t *testing.T) {
	h := profileTestHandler(newMemProfileStore())

	rec := performProfileRequest(t, h.Create, http.MethodPost, "/users", "john@example.com", map[string]any{
		"name":      "John",
		"surname":   "Doe",
		"username":  "johndoe",
		"interests": []string{"hiking, chess"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
	if code := decodeErrorCode(t, rec); code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code: got %q want %q", code, "VALIDATION_ERROR")
	}
}

func TestProfileHandlerMeMissingProfileReturnsNotFound(t *testing.T) {
	h := profileTestHandler(newMemProfileStore())

	rec := performProfileRequest(t, h.Me, http.MethodGet, "/users/me", "john@example.com", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusNotFound)
	}
}

func TestProfileHandlerMeWithoutIdentityReturnsUnauthorized(t *testing.T) {
	h := profileTestHandler(newMemProfileStore())

	rec := performProfileRequest(t, h.Me, http.MethodGet, "/users/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestProfileHandlerUpdateKeepsIdentityFields(t *testing.T) {
	store := newMemProfileStore()
	h := profileTestHandler(store)

	if rec := performProfileRequest(t, h.Create, http.MethodPost, "/users", "john@example.com", map[string]any{
		"name": "John", "surname": "Doe", "username": "johndoe",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", rec.Code)
	}

	rec := performProfileRequest(t, h.Update, http.MethodPut, "/users", "john@example.com", map[string]any{
		"name": "Johnny", "surname": "Doe", "username": "someoneelse",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	record := store.byEmail["john@example.com"]
	if record.Username != "johndoe" {
		t.Fatalf("username must not change on update, got %q", record.Username)
	}
	if record.Name != "Johnny" {
		t.Fatalf("name was not updated, got %q", record.Name)
	}
}

func TestProfileHandlerDeleteReturnsRemovedProfile(t *testing.T) {
	store := newMemProfileStore()
	h := profileTestHandler(store)

	if rec := performProfileRequest(t, h.Create, http.MethodPost, "/users", "john@example.com", map[string]any{
		"name": "John", "surname": "Doe", "username": "johndoe",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", rec.Code)
	}

	rec := performProfileRequest(t, h.Delete, http.MethodDelete, "/users", "john@example.com", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}

	var payload struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Username != "johndoe" {
		t.Fatalf("unexpected username in deleted profile: %q", payload.Username)
	}
	if _, ok := store.byEmail["john@example.com"]; ok {
		t.Fatalf("profile still present after delete")
	}
}

func TestProfileHandlerCreateParsesDateOfBirth(t *testing.T) {
	store := newMemProfileStore()
	h := profileTestHandler(store)

	if rec := performProfileRequest(t, h.Create, http.MethodPost, "/users", "john@example.com", map[string]any{
		"name": "John", "surname": "Doe", "username": "johndoe", "date_of_birth": "1990-04-12",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", rec.Code)
	}

	record := store.byEmail["john@example.com"]
	if record.DateOfBirth == nil {
		t.Fatalf("expected date_of_birth to be stored")
	}
	want := time.Date(1990, time.April, 12, 0, 0, 0, 0, time.UTC)
	if !record.DateOfBirth.Equal(want) {
		t.Fatalf("unexpected date_of_birth: got %v want %v", record.DateOfBirth, want)
	}
}

func TestProfileHandlerCreateRejectsBadDate(t *testing.T) {
	h := profileTestHandler(newMemProfileStore())

	rec := performProfileRequest(t, h.Create, http.MethodPost, "/users", "john@example.com", map[string]any{
		"name": "John", "surname": "Doe", "username": "johndoe", "date_of_birth": "12/04/1990",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}
