package model

import "time"

// Comment is a remark left on a project. Comments are immutable once posted —
// there is no edit or delete path, so no UpdatedAt.
type Comment struct {
	ID              string    `json:"id"        db:"id"`
	ProjectID       string    `json:"projectId" db:"project_id"`
	AuthorProfileID string    `json:"authorId"  db:"author_profile_id"`
	Content         string    `json:"content"   db:"content"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`

	// AuthorUsername is populated on reads (joined from profiles), never
	// stored. Falls back to "Unknown" when the author profile is gone.
	AuthorUsername string `json:"author,omitempty" db:"-"`
}
