package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrEdgeExists = errors.New("follow edge already exists")

type FollowRepo struct {
	pool *pgxpool.Pool
}

type FollowerRecord struct {
	Username  string
	CreatedAt time.Time
}

func NewFollowRepo(pool *pgxpool.Pool) *FollowRepo {
	return &FollowRepo{pool: pool}
}

// InsertEdge creates a follow edge with a server-assigned timestamp. The
// primary key on (follower, followed) is the final arbiter for concurrent
// inserts of the same pair.
func (r *FollowRepo) InsertEdge(ctx context.Context, follower, followed string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO follows (follower, followed)
VALUES ($1, $2)
`, follower, followed); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEdgeExists
		}
		return fmt.Errorf("insert follow edge: %w", err)
	}

	return nil
}

// DeleteEdge removes a follow edge. Deleting a missing edge is not an error
// at this layer; the service checks existence first.
func (r *FollowRepo) DeleteEdge(ctx context.Context, follower, followed string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
DELETE FROM follows
WHERE follower = $1 AND followed = $2
`, follower, followed); err != nil {
		return fmt.Errorf("delete follow edge: %w", err)
	}

	return nil
}

func (r *FollowRepo) ListFollowed(ctx context.Context, follower string) ([]string, error) {
	return r.listUsernames(ctx, `
SELECT followed FROM follows WHERE follower = $1
`, follower)
}

func (r *FollowRepo) ListFollowers(ctx context.Context, followed string) ([]string, error) {
	return r.listUsernames(ctx, `
SELECT follower FROM follows WHERE followed = $1
`, followed)
}

func (r *FollowRepo) ListFollowersWithTime(ctx context.Context, followed string) ([]FollowerRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT follower, created_at
FROM follows
WHERE followed = $1
ORDER BY created_at
`, followed)
	if err != nil {
		return nil, fmt.Errorf("list followers with time: %w", err)
	}
	defer rows.Close()

	records := make([]FollowerRecord, 0)
	for rows.Next() {
		var record FollowerRecord
		if err := rows.Scan(&record.Username, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan follower record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate follower records: %w", err)
	}

	return records, nil
}

func (r *FollowRepo) listUsernames(ctx context.Context, query, arg string) ([]string, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list follow edges: %w", err)
	}
	defer rows.Close()

	usernames := make([]string, 0)
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("scan follow edge: %w", err)
		}
		usernames = append(usernames, username)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate follow edges: %w", err)
	}

	return usernames, nil
}
