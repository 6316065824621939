package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/parthu1029/DevShowcase/internal/apperror"
	"github.com/parthu1029/DevShowcase/internal/model"
	"github.com/parthu1029/DevShowcase/internal/repository"
)

// MaxCommentLength caps comment bodies.
const MaxCommentLength = 2000

// CommentService handles project comments. Comments are append-only —
// no edit or delete.
type CommentService struct {
	comments repository.CommentRepository
	projects repository.ProjectRepository
	profiles *ProfileService
	logger   *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(
	comments repository.CommentRepository,
	projects repository.ProjectRepository,
	profiles *ProfileService,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		projects: projects,
		profiles: profiles,
		logger:   logger,
	}
}

// Add posts a comment on a project for the principal, ensuring their profile
// exists first (commenting can be a brand-new user's first action).
func (s *CommentService) Add(ctx context.Context, principal *model.Principal, projectID, content string) (*model.Comment, error) {
	if principal == nil || principal.ID == "" {
		return nil, apperror.NotAuthenticated()
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment cannot be empty")
	}
	if len(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, apperror.ValidationFailed("projectId", "project ID is required")
	}
	// NotFound here instead of a foreign-key error from the insert.
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	profile, err := s.profiles.EnsureProfile(ctx, principal)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ProjectID:       projectID,
		AuthorProfileID: profile.ID,
		Content:         content,
		AuthorUsername:  profile.Username,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("projectID", projectID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/comment: creating comment: %w", err)
	}

	return comment, nil
}

// ListByProject returns a project's comments oldest-first.
func (s *CommentService) ListByProject(ctx context.Context, projectID string) ([]model.Comment, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, apperror.ValidationFailed("projectId", "project ID is required")
	}

	comments, err := s.comments.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("service/comment: listing comments: %w", err)
	}

	for i := range comments {
		if comments[i].AuthorUsername == "" {
			comments[i].AuthorUsername = unknownAuthor
		}
	}
	return comments, nil
}
