package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/parthu1029/DevShowcase/internal/apperror"
	"github.com/parthu1029/DevShowcase/internal/model"
	"github.com/parthu1029/DevShowcase/internal/repository"
)

// compile-time check that *ProjectStore implements repository.ProjectRepository
var _ repository.ProjectRepository = (*ProjectStore)(nil)

// ProjectStore persists project submissions.
type ProjectStore struct {
	conn *sql.DB
}

// Create inserts a new project. Fills in ID and CreatedAt.
// Tags and platform links are marshalled to JSON text columns.
func (s *ProjectStore) Create(ctx context.Context, project *model.Project) error {
	project.ID = xid.New().String()
	project.CreatedAt = time.Now()

	tags, err := marshalJSONColumn(project.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: encoding tags: %w", err)
	}
	platforms, err := marshalJSONColumn(project.PlatformLinks)
	if err != nil {
		return fmt.Errorf("sqlite: encoding platform links: %w", err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO projects (id, title, description, tags, owner_profile_id, platforms, vote_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		project.ID, project.Title, project.Description, tags,
		project.OwnerProfileID, platforms, project.CreatedAt,
	)
	if err != nil {
		return apperror.Unavailable("project insert", err)
	}
	return nil
}

// GetByID retrieves a single project.
func (s *ProjectStore) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var (
		p               model.Project
		tags, platforms string
	)

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, title, description, tags, owner_profile_id, platforms, vote_count, created_at
		 FROM projects WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.Title, &p.Description, &tags, &p.OwnerProfileID, &platforms, &p.VoteCount, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("project", id)
		}
		return nil, apperror.Unavailable("project lookup", err)
	}

	if err := unmarshalJSONColumns(&p, tags, platforms); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns every project, newest first. Ties on created_at are broken by
// the primary key, which for xid values is insertion order — the listing is
// stable across calls.
//
// The owner join is a LEFT JOIN on purpose: a project whose owner profile
// cannot be resolved still lists, with empty author fields.
func (s *ProjectStore) List(ctx context.Context) ([]repository.ProjectWithAuthor, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT p.id, p.title, p.description, p.tags, p.owner_profile_id, p.platforms,
		        p.vote_count, p.created_at,
		        COALESCE(pr.username, ''), COALESCE(pr.avatar_url, '')
		 FROM projects p
		 LEFT JOIN profiles pr ON pr.id = p.owner_profile_id
		 ORDER BY p.created_at DESC, p.id`,
	)
	if err != nil {
		return nil, apperror.Unavailable("project list", err)
	}
	defer rows.Close()

	var result []repository.ProjectWithAuthor
	for rows.Next() {
		var (
			item            repository.ProjectWithAuthor
			tags, platforms string
		)
		if err := rows.Scan(
			&item.ID, &item.Title, &item.Description, &tags, &item.OwnerProfileID,
			&platforms, &item.VoteCount, &item.CreatedAt,
			&item.AuthorUsername, &item.AuthorAvatarURL,
		); err != nil {
			return nil, apperror.Unavailable("project scan", err)
		}
		if err := unmarshalJSONColumns(&item.Project, tags, platforms); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Unavailable("project list", err)
	}

	return result, nil
}

// Delete removes a project. Engagement rows and comments cascade.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return apperror.Unavailable("project delete", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.NotFound("project", id)
	}
	return nil
}

// VoteCount reads the cached counter.
func (s *ProjectStore) VoteCount(ctx context.Context, id string) (int, error) {
	var count int
	err := s.conn.QueryRowContext(ctx,
		`SELECT vote_count FROM projects WHERE id = ?`, id,
	).Scan(&count)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, apperror.NotFound("project", id)
		}
		return 0, apperror.Unavailable("vote count read", err)
	}
	return count, nil
}

// SetVoteCount writes the cached counter. Best-effort from the toggle's
// perspective — a failure here never invalidates the relation-row write.
func (s *ProjectStore) SetVoteCount(ctx context.Context, id string, count int) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE projects SET vote_count = ? WHERE id = ?`, count, id,
	)
	if err != nil {
		return apperror.Unavailable("vote count write", err)
	}
	return nil
}

// RecountVotes heals the cache from its authoritative source: the upvote
// relation table. One statement, so the count and the write can't interleave
// with each other.
func (s *ProjectStore) RecountVotes(ctx context.Context, id string) (int, error) {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE projects
		 SET vote_count = (SELECT COUNT(*) FROM project_upvotes WHERE project_id = ?)
		 WHERE id = ?`,
		id, id,
	)
	if err != nil {
		return 0, apperror.Unavailable("vote recount", err)
	}
	return s.VoteCount(ctx, id)
}

// marshalJSONColumn encodes a slice for storage, normalizing nil to "[]" so
// reads never see SQL NULL and JSON responses never show null arrays.
func marshalJSONColumn(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return "[]", nil
	}
	return string(data), nil
}

func unmarshalJSONColumns(p *model.Project, tags, platforms string) error {
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return fmt.Errorf("sqlite: decoding tags for project %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(platforms), &p.PlatformLinks); err != nil {
		return fmt.Errorf("sqlite: decoding platform links for project %s: %w", p.ID, err)
	}
	return nil
}
