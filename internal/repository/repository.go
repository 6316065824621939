// Package repository defines the storage interfaces the service layer
// depends on. The sqlite subpackage implements them; tests substitute
// in-memory mocks.
package repository

import (
	"context"

	"github.com/parthu1029/DevShowcase/internal/model"
)

// ProjectWithAuthor is a project row joined with its owner's public identity.
// The join is done in the store (LEFT JOIN) so a deleted or missing owner
// yields empty author fields rather than an error — the service maps those
// to the "Unknown" display name.
type ProjectWithAuthor struct {
	model.Project
	AuthorUsername  string
	AuthorAvatarURL string
}

// PrincipalRepository persists authenticated identities (the auth layer's
// account records). Implementations must keep github_id unique and email
// unique among password accounts, signaling violations with
// apperror.ErrConflict.
type PrincipalRepository interface {
	// UpsertByGitHub inserts on first login, updates hints on later logins.
	// Keyed on the stable GitHub numeric ID; fills in p.ID.
	UpsertByGitHub(ctx context.Context, p *model.Principal) error
	// Create inserts a password-based principal. ErrConflict on duplicate email.
	Create(ctx context.Context, p *model.Principal) error
	GetByID(ctx context.Context, id string) (*model.Principal, error)
	GetByEmail(ctx context.Context, email string) (*model.Principal, error)
}

// ProfileRepository persists public profiles. The UNIQUE constraint on
// username is the authoritative collision detector for provisioning:
// Create must return apperror.ErrConflict (not a raw driver error) when the
// username or id is already claimed.
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByUsername(ctx context.Context, username string) (*model.Profile, error)
	// UsernameTaken is the cheap pre-check before an insert attempt. It is an
	// optimization only — correctness rests on Create's conflict signal.
	UsernameTaken(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, profile *model.Profile) error
}

// ProjectRepository persists project submissions.
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	// List returns all projects newest-first (created_at DESC, stable on
	// primary key), each joined with its author.
	List(ctx context.Context) ([]ProjectWithAuthor, error)
	Delete(ctx context.Context, id string) error

	// Vote-count cache operations. Only the engagement service calls these.
	VoteCount(ctx context.Context, id string) (int, error)
	SetVoteCount(ctx context.Context, id string, count int) error
	// RecountVotes heals the cache: vote_count = count(*) over project_upvotes.
	// Returns the recomputed count.
	RecountVotes(ctx context.Context, id string) (int, error)
}

// EngagementRepository persists the upvote/star relation rows. Row existence
// is the signal; the UNIQUE(profile_id, project_id) constraint per table is
// the only serialization point the toggle engine relies on.
type EngagementRepository interface {
	Exists(ctx context.Context, kind model.EngagementKind, profileID, projectID string) (bool, error)
	// Insert returns apperror.ErrConflict if the row already exists (a
	// concurrent toggle won the race).
	Insert(ctx context.Context, kind model.EngagementKind, profileID, projectID string) error
	// Delete returns the number of rows removed. Zero is not an error — the
	// row may have been removed by a concurrent toggle.
	Delete(ctx context.Context, kind model.EngagementKind, profileID, projectID string) (int64, error)
	// ProjectIDs returns the set of projects the profile engages with.
	ProjectIDs(ctx context.Context, kind model.EngagementKind, profileID string) (map[string]bool, error)
}

// CommentRepository persists comments. Comments are append-only.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	// ListByProject returns comments oldest-first with author usernames joined.
	ListByProject(ctx context.Context, projectID string) ([]model.Comment, error)
}
