package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/parthu1029/DevShowcase/internal/apperror"
	"github.com/parthu1029/DevShowcase/internal/model"
)

type mockCommentRepo struct {
	comments []model.Comment
	nextID   int
}

func (m *mockCommentRepo) Create(_ context.Context, comment *model.Comment) error {
	m.nextID++
	comment.ID = fmt.Sprintf("comment-%d", m.nextID)
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *mockCommentRepo) ListByProject(_ context.Context, projectID string) ([]model.Comment, error) {
	result := make([]model.Comment, 0)
	for _, c := range m.comments {
		if c.ProjectID == projectID {
			result = append(result, c)
		}
	}
	return result, nil
}

func newTestCommentService(t *testing.T) (*CommentService, *mockCommentRepo, *mockProjectRepo, *mockProfileRepo) {
	t.Helper()
	comments := &mockCommentRepo{}
	projects := newMockProjectRepo()
	profileRepo := newMockProfileRepo()
	profiles := NewProfileService(profileRepo, testLogger())
	svc := NewCommentService(comments, projects, profiles, testLogger())
	return svc, comments, projects, profileRepo
}

func TestCommentAdd_ProvisionsProfileAndStores(t *testing.T) {
	svc, comments, projects, profileRepo := newTestCommentService(t)
	projectID := seedProject(t, projects, 0)

	principal := &model.Principal{ID: "p1", PreferredUsername: "alice"}
	comment, err := svc.Add(context.Background(), principal, projectID, "  nice work  ")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if comment.Content != "nice work" {
		t.Errorf("Content = %q, want trimmed", comment.Content)
	}
	if comment.AuthorUsername != "alice" {
		t.Errorf("AuthorUsername = %q, want %q", comment.AuthorUsername, "alice")
	}
	// Commenting can be a brand-new user's first action.
	if _, ok := profileRepo.byID["p1"]; !ok {
		t.Error("commenter's profile was not provisioned")
	}
	if len(comments.comments) != 1 {
		t.Errorf("stored %d comments, want 1", len(comments.comments))
	}
}

func TestCommentAdd_EmptyContent(t *testing.T) {
	svc, _, projects, _ := newTestCommentService(t)
	projectID := seedProject(t, projects, 0)

	principal := &model.Principal{ID: "p1", PreferredUsername: "alice"}
	_, err := svc.Add(context.Background(), principal, projectID, "   ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestCommentAdd_ContentTooLong(t *testing.T) {
	svc, _, projects, _ := newTestCommentService(t)
	projectID := seedProject(t, projects, 0)

	principal := &model.Principal{ID: "p1", PreferredUsername: "alice"}
	_, err := svc.Add(context.Background(), principal, projectID, strings.Repeat("a", MaxCommentLength+1))
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestCommentAdd_MissingProject(t *testing.T) {
	svc, _, _, _ := newTestCommentService(t)

	principal := &model.Principal{ID: "p1", PreferredUsername: "alice"}
	_, err := svc.Add(context.Background(), principal, "nope", "hello")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCommentAdd_RequiresAuthentication(t *testing.T) {
	svc, _, projects, _ := newTestCommentService(t)
	projectID := seedProject(t, projects, 0)

	_, err := svc.Add(context.Background(), nil, projectID, "hello")
	if !errors.Is(err, apperror.ErrNotAuthenticated) {
		t.Errorf("error = %v, want ErrNotAuthenticated", err)
	}
}

func TestCommentList_BlankAuthorBecomesUnknown(t *testing.T) {
	svc, comments, projects, _ := newTestCommentService(t)
	projectID := seedProject(t, projects, 0)

	comments.comments = append(comments.comments, model.Comment{
		ID:        "c1",
		ProjectID: projectID,
		Content:   "orphaned",
	})

	got, err := svc.ListByProject(context.Background(), projectID)
	if err != nil {
		t.Fatalf("ListByProject() error = %v", err)
	}
	if got[0].AuthorUsername != "Unknown" {
		t.Errorf("AuthorUsername = %q, want %q", got[0].AuthorUsername, "Unknown")
	}
}
