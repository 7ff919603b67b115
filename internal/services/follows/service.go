package follows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/domain/rules"
	pgrepo "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/repo/postgres"
)

var (
	ErrNotFound         = errors.New("profile not found")
	ErrSelfFollow       = errors.New("users cannot follow themselves")
	ErrAlreadyFollowing = errors.New("user is already followed")
	ErrNotFollowing     = errors.New("user is not followed")
	ErrNotVisible       = errors.New("connections are only visible to mutual connections")
)

type ProfileStore interface {
	GetByEmail(ctx context.Context, email string) (pgrepo.ProfileRecord, error)
	GetByUsername(ctx context.Context, username string) (pgrepo.ProfileRecord, error)
}

type EdgeStore interface {
	InsertEdge(ctx context.Context, follower, followed string) error
	DeleteEdge(ctx context.Context, follower, followed string) error
	ListFollowed(ctx context.Context, follower string) ([]string, error)
	ListFollowers(ctx context.Context, followed string) ([]string, error)
	ListFollowersWithTime(ctx context.Context, followed string) ([]pgrepo.FollowerRecord, error)
}

// Service owns the follow graph rules: who may create or remove an edge and
// who may see another user's connections. Every decision re-reads committed
// state; nothing about the graph is cached between requests.
type Service struct {
	profiles ProfileStore
	edges    EdgeStore
}

func NewService(profiles ProfileStore, edges EdgeStore) *Service {
	return &Service{
		profiles: profiles,
		edges:    edges,
	}
}

// Follow creates the edge caller -> target. The checks run in a fixed order
// so each failure mode is deterministic: target existence, caller existence,
// self-follow, duplicate edge. A concurrent duplicate insert loses to the
// primary key and is reported the same way as the optimistic check.
func (s *Service) Follow(ctx context.Context, callerEmail, targetUsername string) error {
	if err := s.ready(); err != nil {
		return err
	}

	target, err := s.resolveTarget(ctx, targetUsername)
	if err != nil {
		return err
	}

	caller, err := s.resolveCaller(ctx, callerEmail)
	if err != nil {
		return err
	}

	if caller.Username == target.Username {
		return ErrSelfFollow
	}

	followed, err := s.edges.ListFollowed(ctx, caller.Username)
	if err != nil {
		return fmt.Errorf("list followed users: %w", err)
	}
	if contains(followed, target.Username) {
		return ErrAlreadyFollowing
	}

	if err := s.edges.InsertEdge(ctx, caller.Username, target.Username); err != nil {
		if errors.Is(err, pgrepo.ErrEdgeExists) {
			return ErrAlreadyFollowing
		}
		return fmt.Errorf("insert follow edge: %w", err)
	}

	return nil
}

// Unfollow removes the edge caller -> target. A self-edge can never exist, so
// there is no self-unfollow case.
func (s *Service) Unfollow(ctx context.Context, callerEmail, targetUsername string) error {
	if err := s.ready(); err != nil {
		return err
	}

	target, err := s.resolveTarget(ctx, targetUsername)
	if err != nil {
		return err
	}

	caller, err := s.resolveCaller(ctx, callerEmail)
	if err != nil {
		return err
	}

	followed, err := s.edges.ListFollowed(ctx, caller.Username)
	if err != nil {
		return fmt.Errorf("list followed users: %w", err)
	}
	if !contains(followed, target.Username) {
		return ErrNotFollowing
	}

	if err := s.edges.DeleteEdge(ctx, caller.Username, target.Username); err != nil {
		return fmt.Errorf("delete follow edge: %w", err)
	}

	return nil
}

// Followed returns the users the target follows. A viewer other than the
// target sees the list only when both follow each other.
func (s *Service) Followed(ctx context.Context, viewerEmail, targetUsername string) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	viewer, target, err := s.resolvePair(ctx, viewerEmail, targetUsername)
	if err != nil {
		return nil, err
	}

	targetList, err := s.edges.ListFollowed(ctx, target.Username)
	if err != nil {
		return nil, fmt.Errorf("list followed users: %w", err)
	}
	if viewer.Username == target.Username {
		return targetList, nil
	}

	viewerList, err := s.edges.ListFollowed(ctx, viewer.Username)
	if err != nil {
		return nil, fmt.Errorf("list followed users: %w", err)
	}
	if !mutual(viewer.Username, target.Username, viewerList, targetList) {
		return nil, ErrNotVisible
	}

	return targetList, nil
}

// Followers returns the users following the target, gated by mutual presence
// in the followers relation.
func (s *Service) Followers(ctx context.Context, viewerEmail, targetUsername string) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	viewer, target, err := s.resolvePair(ctx, viewerEmail, targetUsername)
	if err != nil {
		return nil, err
	}

	targetList, err := s.edges.ListFollowers(ctx, target.Username)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	if viewer.Username == target.Username {
		return targetList, nil
	}

	if err := s.checkFollowersVisibility(ctx, viewer.Username, target.Username, targetList); err != nil {
		return nil, err
	}

	return targetList, nil
}

// FollowersWithTime is Followers with edge creation timestamps.
func (s *Service) FollowersWithTime(ctx context.Context, viewerEmail, targetUsername string) ([]pgrepo.FollowerRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	viewer, target, err := s.resolvePair(ctx, viewerEmail, targetUsername)
	if err != nil {
		return nil, err
	}

	records, err := s.edges.ListFollowersWithTime(ctx, target.Username)
	if err != nil {
		return nil, fmt.Errorf("list followers with time: %w", err)
	}
	if viewer.Username == target.Username {
		return records, nil
	}

	targetList := make([]string, 0, len(records))
	for _, record := range records {
		targetList = append(targetList, record.Username)
	}
	if err := s.checkFollowersVisibility(ctx, viewer.Username, target.Username, targetList); err != nil {
		return nil, err
	}

	return records, nil
}

// checkFollowersVisibility applies the mutual gate for the followers
// relation: the viewer must appear among the target's followers AND the
// target among the viewer's followers. Being a follower alone is not enough.
func (s *Service) checkFollowersVisibility(ctx context.Context, viewerUsername, targetUsername string, targetFollowers []string) error {
	viewerFollowers, err := s.edges.ListFollowers(ctx, viewerUsername)
	if err != nil {
		return fmt.Errorf("list followers: %w", err)
	}
	if !mutual(viewerUsername, targetUsername, viewerFollowers, targetFollowers) {
		return ErrNotVisible
	}
	return nil
}

func (s *Service) resolvePair(ctx context.Context, viewerEmail, targetUsername string) (pgrepo.ProfileRecord, pgrepo.ProfileRecord, error) {
	viewer, err := s.resolveCaller(ctx, viewerEmail)
	if err != nil {
		return pgrepo.ProfileRecord{}, pgrepo.ProfileRecord{}, err
	}

	target, err := s.resolveTarget(ctx, targetUsername)
	if err != nil {
		return pgrepo.ProfileRecord{}, pgrepo.ProfileRecord{}, err
	}

	return viewer, target, nil
}

func (s *Service) resolveTarget(ctx context.Context, targetUsername string) (pgrepo.ProfileRecord, error) {
	target, err := s.profiles.GetByUsername(ctx, rules.NormalizeUsername(targetUsername))
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return pgrepo.ProfileRecord{}, ErrNotFound
		}
		return pgrepo.ProfileRecord{}, fmt.Errorf("get target profile: %w", err)
	}
	return target, nil
}

func (s *Service) resolveCaller(ctx context.Context, callerEmail string) (pgrepo.ProfileRecord, error) {
	caller, err := s.profiles.GetByEmail(ctx, strings.TrimSpace(callerEmail))
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return pgrepo.ProfileRecord{}, ErrNotFound
		}
		return pgrepo.ProfileRecord{}, fmt.Errorf("get caller profile: %w", err)
	}
	return caller, nil
}

func (s *Service) ready() error {
	if s.profiles == nil || s.edges == nil {
		return fmt.Errorf("follow service dependencies are not configured")
	}
	return nil
}

func mutual(viewerUsername, targetUsername string, viewerList, targetList []string) bool {
	return contains(targetList, viewerUsername) && contains(viewerList, targetUsername)
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
