package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/xid"

	"github.com/parthu1029/DevShowcase/internal/apperror"
	"github.com/parthu1029/DevShowcase/internal/model"
	"github.com/parthu1029/DevShowcase/internal/repository"
)

// compile-time check that *CommentStore implements repository.CommentRepository
var _ repository.CommentRepository = (*CommentStore)(nil)

// CommentStore persists project comments.
type CommentStore struct {
	conn *sql.DB
}

// Create inserts a new comment. Fills in ID and CreatedAt.
func (s *CommentStore) Create(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO comments (id, project_id, author_profile_id, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.ID, comment.ProjectID, comment.AuthorProfileID, comment.Content, comment.CreatedAt,
	)
	if err != nil {
		return apperror.Unavailable("comment insert", err)
	}
	return nil
}

// ListByProject returns a project's comments oldest-first, with the author
// username joined in (empty when the author profile is gone; the service
// substitutes "Unknown").
func (s *CommentStore) ListByProject(ctx context.Context, projectID string) ([]model.Comment, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT c.id, c.project_id, c.author_profile_id, c.content, c.created_at,
		        COALESCE(pr.username, '')
		 FROM comments c
		 LEFT JOIN profiles pr ON pr.id = c.author_profile_id
		 WHERE c.project_id = ?
		 ORDER BY c.created_at, c.id`,
		projectID,
	)
	if err != nil {
		return nil, apperror.Unavailable("comment list", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.AuthorProfileID, &c.Content, &c.CreatedAt, &c.AuthorUsername); err != nil {
			return nil, apperror.Unavailable("comment scan", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Unavailable("comment list", err)
	}
	return comments, nil
}
