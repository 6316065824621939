package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/parthu1029/DevShowcase/internal/apperror"
	"github.com/parthu1029/DevShowcase/internal/model"
	"github.com/parthu1029/DevShowcase/internal/repository"
)

// compile-time check that *ProfileStore implements repository.ProfileRepository
var _ repository.ProfileRepository = (*ProfileStore)(nil)

// ProfileStore persists public profiles.
type ProfileStore struct {
	conn *sql.DB
}

// Create inserts a new profile.
//
// The profile's ID is the principal's ID (not generated here), and the
// username arrives already normalized from the provisioning engine. Two
// distinct UNIQUE constraints can fire:
//   - username taken → a provisioning race, the caller tries the next candidate
//   - id taken       → a concurrent EnsureProfile for the same principal
//     already won; the caller re-reads and returns that row
//
// Both are reported as apperror.ErrConflict; the service tells them apart by
// re-checking which row exists.
func (s *ProfileStore) Create(ctx context.Context, profile *model.Profile) error {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO profiles (id, username, full_name, avatar_url, bio, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.Username, profile.FullName, profile.AvatarURL, profile.Bio,
		profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("profile", profile.Username)
		}
		return apperror.Unavailable("profile insert", err)
	}
	return nil
}

// GetByID retrieves a profile by its ID (== principal ID).
func (s *ProfileStore) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	return s.get(ctx, `WHERE id = ?`, id)
}

// GetByUsername retrieves a profile by its unique username.
func (s *ProfileStore) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	return s.get(ctx, `WHERE username = ?`, username)
}

func (s *ProfileStore) get(ctx context.Context, where, arg string) (*model.Profile, error) {
	var p model.Profile

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, username, full_name, avatar_url, bio, created_at, updated_at
		 FROM profiles `+where,
		arg,
	).Scan(&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.Bio, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("profile", arg)
		}
		return nil, apperror.Unavailable("profile lookup", err)
	}

	return &p, nil
}

// UsernameTaken reports whether any profile has claimed the username.
// Pre-check only — the UNIQUE constraint remains the source of truth.
func (s *ProfileStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var one int
	err := s.conn.QueryRowContext(ctx,
		`SELECT 1 FROM profiles WHERE username = ? LIMIT 1`, username,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, apperror.Unavailable("username check", err)
	}
	return true, nil
}

// Update rewrites a profile's mutable fields. The username column is
// deliberately absent — usernames are immutable once claimed.
func (s *ProfileStore) Update(ctx context.Context, profile *model.Profile) error {
	profile.UpdatedAt = time.Now()

	res, err := s.conn.ExecContext(ctx,
		`UPDATE profiles SET full_name = ?, avatar_url = ?, bio = ?, updated_at = ?
		 WHERE id = ?`,
		profile.FullName, profile.AvatarURL, profile.Bio, profile.UpdatedAt, profile.ID,
	)
	if err != nil {
		return apperror.Unavailable("profile update", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.NotFound("profile", profile.ID)
	}
	return nil
}
