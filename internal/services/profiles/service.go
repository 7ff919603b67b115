package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/domain/rules"
	pgrepo "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/repo/postgres"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("profile not found")
	ErrAlreadyExists = errors.New("profile already exists")
)

type ProfileStore interface {
	GetByEmail(ctx context.Context, email string) (pgrepo.ProfileRecord, error)
	GetByUsername(ctx context.Context, username string) (pgrepo.ProfileRecord, error)
	Create(ctx context.Context, record pgrepo.ProfileRecord) (pgrepo.ProfileRecord, error)
	Update(ctx context.Context, email string, in pgrepo.ProfileMutation) (pgrepo.ProfileRecord, error)
	Delete(ctx context.Context, email string) (pgrepo.ProfileRecord, error)
	ListUsernames(ctx context.Context) ([]string, error)
	ListAll(ctx context.Context) ([]pgrepo.ProfileRecord, error)
	ListVerified(ctx context.Context) ([]pgrepo.ProfileRecord, error)
	SearchByName(ctx context.Context, name string, offset, limit int) ([]pgrepo.ProfileRecord, error)
	SetVerified(ctx context.Context, username string, verified bool) error
}

type Service struct {
	store ProfileStore
}

type ProfileInput struct {
	Name        string
	Username    string
	Surname     string
	Location    *string
	Description *string
	DateOfBirth *time.Time
	Interests   []string
}

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 50
)

func NewService(store ProfileStore) *Service {
	return &Service{store: store}
}

// Create inserts the caller's profile. Email comes from the resolved token,
// never from the input. A second create for the same email fails, and the
// unique constraints stay the arbiter when two creates race.
func (s *Service) Create(ctx context.Context, callerEmail string, in ProfileInput) (pgrepo.ProfileRecord, error) {
	if err := s.ready(); err != nil {
		return pgrepo.ProfileRecord{}, err
	}
	callerEmail = strings.TrimSpace(callerEmail)
	if callerEmail == "" {
		return pgrepo.ProfileRecord{}, fmt.Errorf("caller email is required: %w", ErrValidation)
	}

	norm, err := normalizeInput(in)
	if err != nil {
		return pgrepo.ProfileRecord{}, err
	}

	if _, err := s.store.GetByEmail(ctx, callerEmail); err == nil {
		return pgrepo.ProfileRecord{}, ErrAlreadyExists
	} else if !errors.Is(err, pgrepo.ErrProfileNotFound) {
		return pgrepo.ProfileRecord{}, fmt.Errorf("check existing profile: %w", err)
	}

	created, err := s.store.Create(ctx, pgrepo.ProfileRecord{
		Email:       callerEmail,
		Username:    norm.Username,
		Name:        norm.Name,
		Surname:     norm.Surname,
		Location:    norm.Location,
		Description: norm.Description,
		DateOfBirth: norm.DateOfBirth,
		Interests:   norm.Interests,
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileExists) {
			return pgrepo.ProfileRecord{}, ErrAlreadyExists
		}
		return pgrepo.ProfileRecord{}, fmt.Errorf("create profile: %w", err)
	}

	return created, nil
}

func (s *Service) GetOwn(ctx context.Context, callerEmail string) (pgrepo.ProfileRecord, error) {
	return s.GetByEmail(ctx, callerEmail)
}

// Update overwrites every mutable field at once. Email and username are
// identity fields and stay untouched.
func (s *Service) Update(ctx context.Context, callerEmail string, in ProfileInput) (pgrepo.ProfileRecord, error) {
	if err := s.ready(); err != nil {
		return pgrepo.ProfileRecord{}, err
	}

	norm, err := normalizeInput(in)
	if err != nil {
		return pgrepo.ProfileRecord{}, err
	}

	updated, err := s.store.Update(ctx, strings.TrimSpace(callerEmail), pgrepo.ProfileMutation{
		Name:        norm.Name,
		Surname:     norm.Surname,
		Location:    norm.Location,
		Description: norm.Description,
		DateOfBirth: norm.DateOfBirth,
		Interests:   norm.Interests,
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return pgrepo.ProfileRecord{}, ErrNotFound
		}
		return pgrepo.ProfileRecord{}, fmt.Errorf("update profile: %w", err)
	}

	return updated, nil
}

// Delete removes the caller's profile and its follow edges and returns the
// removed row.
func (s *Service) Delete(ctx context.Context, callerEmail string) (pgrepo.ProfileRecord, error) {
	if err := s.ready(); err != nil {
		return pgrepo.ProfileRecord{}, err
	}

	removed, err := s.store.Delete(ctx, strings.TrimSpace(callerEmail))
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return pgrepo.ProfileRecord{}, ErrNotFound
		}
		return pgrepo.ProfileRecord{}, fmt.Errorf("delete profile: %w", err)
	}

	return removed, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (pgrepo.ProfileRecord, error) {
	if err := s.ready(); err != nil {
		return pgrepo.ProfileRecord{}, err
	}

	record, err := s.store.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return pgrepo.ProfileRecord{}, ErrNotFound
		}
		return pgrepo.ProfileRecord{}, fmt.Errorf("get profile by email: %w", err)
	}

	return record, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (pgrepo.ProfileRecord, error) {
	if err := s.ready(); err != nil {
		return pgrepo.ProfileRecord{}, err
	}

	record, err := s.store.GetByUsername(ctx, rules.NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return pgrepo.ProfileRecord{}, ErrNotFound
		}
		return pgrepo.ProfileRecord{}, fmt.Errorf("get profile by username: %w", err)
	}

	return record, nil
}

func (s *Service) ListUsernames(ctx context.Context) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	usernames, err := s.store.ListUsernames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list usernames: %w", err)
	}
	return usernames, nil
}

func (s *Service) ListAll(ctx context.Context) ([]pgrepo.ProfileRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return records, nil
}

func (s *Service) ListVerified(ctx context.Context) ([]pgrepo.ProfileRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	records, err := s.store.ListVerified(ctx)
	if err != nil {
		return nil, fmt.Errorf("list verified profiles: %w", err)
	}
	return records, nil
}

func (s *Service) SearchByName(ctx context.Context, name string, offset, limit int) ([]pgrepo.ProfileRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("search name is required: %w", ErrValidation)
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	records, err := s.store.SearchByName(ctx, name, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("search profiles by name: %w", err)
	}
	return records, nil
}

// Verify flips the moderation flag. There is no ownership check here:
// verification is a moderation action, gated at the transport layer.
func (s *Service) Verify(ctx context.Context, username string) error {
	return s.setVerified(ctx, username, true)
}

func (s *Service) Unverify(ctx context.Context, username string) error {
	return s.setVerified(ctx, username, false)
}

func (s *Service) setVerified(ctx context.Context, username string, verified bool) error {
	if err := s.ready(); err != nil {
		return err
	}

	if err := s.store.SetVerified(ctx, rules.NormalizeUsername(username), verified); err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("set profile verified: %w", err)
	}

	return nil
}

func (s *Service) ready() error {
	if s.store == nil {
		return fmt.Errorf("profile store is nil")
	}
	return nil
}

func normalizeInput(in ProfileInput) (ProfileInput, error) {
	out := ProfileInput{
		Name:        strings.TrimSpace(in.Name),
		Username:    rules.NormalizeUsername(in.Username),
		Surname:     strings.TrimSpace(in.Surname),
		DateOfBirth: in.DateOfBirth,
	}

	if out.Name == "" || out.Surname == "" {
		return ProfileInput{}, fmt.Errorf("name and surname are required: %w", ErrValidation)
	}
	if !rules.ValidUsername(out.Username) {
		return ProfileInput{}, fmt.Errorf("invalid username: %w", ErrValidation)
	}

	interests, ok := rules.CleanInterests(in.Interests)
	if !ok {
		return ProfileInput{}, fmt.Errorf("interests must be non-empty and must not contain %q: %w", rules.InterestsDelimiter, ErrValidation)
	}
	out.Interests = interests

	if in.Location != nil {
		location := strings.TrimSpace(*in.Location)
		if location != "" {
			out.Location = &location
		}
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description != "" {
			out.Description = &description
		}
	}

	return out, nil
}
