package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

type ProfileRecord struct {
	Email       string
	Username    string
	Name        string
	Surname     string
	Location    *string
	Description *string
	DateOfBirth *time.Time
	Interests   []string
	IsVerified  bool
	AvatarKey   *string
}

// ProfileMutation carries every field the owner may change. Email and
// username are identity fields and are never part of an update.
type ProfileMutation struct {
	Name        string
	Surname     string
	Location    *string
	Description *string
	DateOfBirth *time.Time
	Interests   []string
}

const profileColumns = `email, username, name, surname, location, description, date_of_birth, interests, is_verified, avatar_key`

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (ProfileRecord, error) {
	if r.pool == nil {
		return ProfileRecord{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+profileColumns+`
FROM profiles
WHERE email = $1
`, email)

	record, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProfileRecord{}, ErrProfileNotFound
		}
		return ProfileRecord{}, fmt.Errorf("get profile by email: %w", err)
	}

	return record, nil
}

func (r *ProfileRepo) GetByUsername(ctx context.Context, username string) (ProfileRecord, error) {
	if r.pool == nil {
		return ProfileRecord{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+profileColumns+`
FROM profiles
WHERE username = $1
`, username)

	record, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProfileRecord{}, ErrProfileNotFound
		}
		return ProfileRecord{}, fmt.Errorf("get profile by username: %w", err)
	}

	return record, nil
}

func (r *ProfileRepo) Create(ctx context.Context, record ProfileRecord) (ProfileRecord, error) {
	if r.pool == nil {
		return ProfileRecord{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO profiles (email, username, name, surname, location, description, date_of_birth, interests)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+profileColumns+`
`,
		record.Email,
		record.Username,
		record.Name,
		record.Surname,
		record.Location,
		record.Description,
		record.DateOfBirth,
		record.Interests,
	)

	created, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ProfileRecord{}, ErrProfileExists
		}
		return ProfileRecord{}, fmt.Errorf("create profile: %w", err)
	}

	return created, nil
}

func (r *ProfileRepo) Update(ctx context.Context, email string, in ProfileMutation) (ProfileRecord, error) {
	if r.pool == nil {
		return ProfileRecord{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE profiles
SET
	name = $2,
	surname = $3,
	location = $4,
	description = $5,
	date_of_birth = $6,
	interests = $7
WHERE email = $1
RETURNING `+profileColumns+`
`,
		email,
		in.Name,
		in.Surname,
		in.Location,
		in.Description,
		in.DateOfBirth,
		in.Interests,
	)

	updated, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProfileRecord{}, ErrProfileNotFound
		}
		return ProfileRecord{}, fmt.Errorf("update profile: %w", err)
	}

	return updated, nil
}

// Delete removes the profile row together with every follow edge that
// references its username, in one transaction. The removed row is returned
// for the caller's response.
func (r *ProfileRepo) Delete(ctx context.Context, email string) (ProfileRecord, error) {
	var removed ProfileRecord

	err := withTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(txCtx, `
DELETE FROM profiles
WHERE email = $1
RETURNING `+profileColumns+`
`, email)

		record, err := scanProfile(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrProfileNotFound
			}
			return fmt.Errorf("delete profile: %w", err)
		}

		if _, err := tx.Exec(txCtx, `
DELETE FROM follows
WHERE follower = $1 OR followed = $1
`, record.Username); err != nil {
			return fmt.Errorf("delete follow edges for profile: %w", err)
		}

		removed = record
		return nil
	})
	if err != nil {
		return ProfileRecord{}, err
	}

	return removed, nil
}

func (r *ProfileRepo) ListUsernames(ctx context.Context) ([]string, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `SELECT username FROM profiles`)
	if err != nil {
		return nil, fmt.Errorf("list usernames: %w", err)
	}
	defer rows.Close()

	usernames := make([]string, 0)
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("scan username: %w", err)
		}
		usernames = append(usernames, username)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usernames: %w", err)
	}

	return usernames, nil
}

func (r *ProfileRepo) ListAll(ctx context.Context) ([]ProfileRecord, error) {
	return r.list(ctx, `SELECT `+profileColumns+` FROM profiles`)
}

func (r *ProfileRepo) ListVerified(ctx context.Context) ([]ProfileRecord, error) {
	return r.list(ctx, `SELECT `+profileColumns+` FROM profiles WHERE is_verified`)
}

// SearchByName looks for prefix matches first and fills the remainder of the
// page with contains matches, so exact-start hits always rank ahead.
func (r *ProfileRepo) SearchByName(ctx context.Context, name string, offset, limit int) ([]ProfileRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		return []ProfileRecord{}, nil
	}

	prefix, err := r.list(ctx, `
SELECT `+profileColumns+`
FROM profiles
WHERE name ILIKE $1 || '%'
ORDER BY name
OFFSET $2 LIMIT $3
`, name, offset, limit)
	if err != nil {
		return nil, err
	}
	if len(prefix) >= limit {
		return prefix, nil
	}

	remaining := limit - len(prefix)
	contains, err := r.list(ctx, `
SELECT `+profileColumns+`
FROM profiles
WHERE name ILIKE '%' || $1 || '%'
  AND name NOT ILIKE $1 || '%'
ORDER BY name
OFFSET $2 LIMIT $3
`, name, offset, remaining)
	if err != nil {
		return nil, err
	}

	return append(prefix, contains...), nil
}

func (r *ProfileRepo) SetVerified(ctx context.Context, username string, verified bool) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE profiles
SET is_verified = $2
WHERE username = $1
`, username, verified)
	if err != nil {
		return fmt.Errorf("set profile verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *ProfileRepo) SetAvatarKey(ctx context.Context, email, key string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE profiles
SET avatar_key = $2
WHERE email = $1
`, email, key)
	if err != nil {
		return fmt.Errorf("set profile avatar key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *ProfileRepo) list(ctx context.Context, query string, args ...any) ([]ProfileRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	records := make([]ProfileRecord, 0)
	for rows.Next() {
		record, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return records, nil
}

func scanProfile(row pgx.Row) (ProfileRecord, error) {
	var record ProfileRecord
	err := row.Scan(
		&record.Email,
		&record.Username,
		&record.Name,
		&record.Surname,
		&record.Location,
		&record.Description,
		&record.DateOfBirth,
		&record.Interests,
		&record.IsVerified,
		&record.AvatarKey,
	)
	return record, err
}
