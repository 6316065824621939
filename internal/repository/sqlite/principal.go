package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/parthu1029/DevShowcase/internal/apperror"
	"github.com/parthu1029/DevShowcase/internal/model"
	"github.com/parthu1029/DevShowcase/internal/repository"
)

// compile-time check that *PrincipalStore implements repository.PrincipalRepository
var _ repository.PrincipalRepository = (*PrincipalStore)(nil)

// PrincipalStore persists authenticated identities.
type PrincipalStore struct {
	conn *sql.DB
}

// UpsertByGitHub inserts or updates a principal keyed on their GitHub ID.
//
// We look up by github_id first: if a principal with this GitHub account
// already exists we KEEP their internal ID (profiles and engagement rows hang
// off it) and refresh the identity hints, which the user may have changed on
// GitHub since last login. Otherwise we generate an xid and INSERT.
func (s *PrincipalStore) UpsertByGitHub(ctx context.Context, p *model.Principal) error {
	if p.GitHubID == 0 {
		return fmt.Errorf("sqlite: upsert requires a GitHub ID")
	}

	var existingID string
	err := s.conn.QueryRowContext(ctx,
		`SELECT id FROM principals WHERE github_id = ?`, p.GitHubID,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return apperror.Unavailable("principal lookup", err)
	}

	if existingID != "" {
		p.ID = existingID
		p.UpdatedAt = time.Now()
		_, err = s.conn.ExecContext(ctx,
			`UPDATE principals
			 SET email = ?, preferred_username = ?, full_name = ?, picture_url = ?, updated_at = ?
			 WHERE id = ?`,
			p.Email, p.PreferredUsername, p.FullName, p.PictureURL, p.UpdatedAt, p.ID,
		)
		if err != nil {
			return apperror.Unavailable("principal update", err)
		}
		return nil
	}

	now := time.Now()
	p.ID = xid.New().String()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO principals
		 (id, github_id, email, password_hash, preferred_username, full_name, picture_url, created_at, updated_at)
		 VALUES (?, ?, ?, '', ?, ?, ?, ?, ?)`,
		p.ID, p.GitHubID, p.Email, p.PreferredUsername, p.FullName, p.PictureURL,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Two first-logins for the same GitHub account raced. The other
			// writer's row is authoritative — re-read it.
			return s.reloadByGitHub(ctx, p)
		}
		return apperror.Unavailable("principal insert", err)
	}

	return nil
}

// reloadByGitHub refreshes p from the row a concurrent upsert created.
func (s *PrincipalStore) reloadByGitHub(ctx context.Context, p *model.Principal) error {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at FROM principals WHERE github_id = ?`, p.GitHubID,
	)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return apperror.Unavailable("principal reload", err)
	}
	return nil
}

// Create inserts a password-based principal.
// Returns apperror.ErrConflict if the email is already registered.
func (s *PrincipalStore) Create(ctx context.Context, p *model.Principal) error {
	now := time.Now()
	p.ID = xid.New().String()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO principals
		 (id, github_id, email, password_hash, preferred_username, full_name, picture_url, created_at, updated_at)
		 VALUES (?, NULL, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.PasswordHash, p.PreferredUsername, p.FullName, p.PictureURL,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("principal", p.Email)
		}
		return apperror.Unavailable("principal insert", err)
	}
	return nil
}

// GetByID retrieves a principal by internal ID.
// Returns apperror.ErrNotFound if no principal exists with that ID.
func (s *PrincipalStore) GetByID(ctx context.Context, id string) (*model.Principal, error) {
	return s.get(ctx, `WHERE id = ?`, id)
}

// GetByEmail retrieves a principal by email (password login path).
func (s *PrincipalStore) GetByEmail(ctx context.Context, email string) (*model.Principal, error) {
	return s.get(ctx, `WHERE email = ? AND email <> ''`, email)
}

func (s *PrincipalStore) get(ctx context.Context, where string, arg any) (*model.Principal, error) {
	var (
		p        model.Principal
		githubID sql.NullInt64
	)

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, github_id, email, password_hash, preferred_username, full_name, picture_url, created_at, updated_at
		 FROM principals `+where,
		arg,
	).Scan(
		&p.ID, &githubID, &p.Email, &p.PasswordHash,
		&p.PreferredUsername, &p.FullName, &p.PictureURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("principal", fmt.Sprint(arg))
		}
		return nil, apperror.Unavailable("principal lookup", err)
	}

	p.GitHubID = githubID.Int64 // zero for password accounts
	return &p, nil
}
