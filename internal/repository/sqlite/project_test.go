package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/parthu1029/DevShowcase/internal/apperror"
	"github.com/parthu1029/DevShowcase/internal/model"
)

func TestProjectCreate_RoundTripsJSONColumns(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createTestProfile(t, db, "p1", "alice")
	project := &model.Project{
		Title:          "DevShowcase",
		Description:    "a community showcase",
		Tags:           []string{"go", "sqlite"},
		OwnerProfileID: owner.ID,
		PlatformLinks: []model.PlatformLink{
			{Name: "GitHub", URL: "https://github.com/alice/devshowcase"},
			{Name: "demo", URL: "https://demo.example.com"},
		},
	}
	if err := db.Projects().Create(ctx, project); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if project.ID == "" {
		t.Fatal("Create() should assign an ID")
	}

	stored, err := db.Projects().GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(stored.Tags) != 2 || stored.Tags[0] != "go" {
		t.Errorf("Tags = %v, want [go sqlite]", stored.Tags)
	}
	if len(stored.PlatformLinks) != 2 || stored.PlatformLinks[0].Name != "GitHub" {
		t.Errorf("PlatformLinks = %v, want link order preserved", stored.PlatformLinks)
	}
	if stored.VoteCount != 0 {
		t.Errorf("VoteCount = %d for new project, want 0", stored.VoteCount)
	}
}

func TestProjectCreate_NilSlicesBecomeEmpty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createTestProfile(t, db, "p1", "alice")
	project := &model.Project{Title: "bare", OwnerProfileID: owner.ID}
	if err := db.Projects().Create(ctx, project); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	stored, err := db.Projects().GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Tags == nil {
		t.Error("Tags should decode to an empty slice, not nil")
	}
	if stored.PlatformLinks == nil {
		t.Error("PlatformLinks should decode to an empty slice, not nil")
	}
}

func TestProjectList_NewestFirstWithAuthor(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createTestProfile(t, db, "p1", "alice")

	// Insert in order; created_at has coarse resolution so sleep a little to
	// force distinct timestamps.
	first := createTestProject(t, db, owner.ID, "first")
	time.Sleep(5 * time.Millisecond)
	second := createTestProject(t, db, owner.ID, "second")

	listed, err := db.Projects().List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("List() returned %d projects, want 2", len(listed))
	}
	if listed[0].ID != second.ID || listed[1].ID != first.ID {
		t.Errorf("List() order = [%s %s], want newest first [%s %s]",
			listed[0].Title, listed[1].Title, second.Title, first.Title)
	}
	if listed[0].AuthorUsername != "alice" {
		t.Errorf("AuthorUsername = %q, want %q", listed[0].AuthorUsername, "alice")
	}
}

func TestProjectDelete_CascadesEngagement(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createTestProfile(t, db, "p1", "alice")
	project := createTestProject(t, db, owner.ID, "doomed")

	if err := db.Engagements().Insert(ctx, model.KindUpvote, owner.ID, project.ID); err != nil {
		t.Fatalf("Insert error = %v", err)
	}

	if err := db.Projects().Delete(ctx, project.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	exists, err := db.Engagements().Exists(ctx, model.KindUpvote, owner.ID, project.ID)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("engagement row should cascade away with its project")
	}

	_, err = db.Projects().GetByID(ctx, project.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID after delete error = %v, want ErrNotFound", err)
	}
}

func TestProjectVoteCount_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Projects().VoteCount(context.Background(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("VoteCount(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestCommentCreateAndList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createTestProfile(t, db, "p1", "alice")
	project := createTestProject(t, db, owner.ID, "chatty")

	first := &model.Comment{ProjectID: project.ID, AuthorProfileID: owner.ID, Content: "first!"}
	if err := db.Comments().Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second := &model.Comment{ProjectID: project.ID, AuthorProfileID: owner.ID, Content: "second"}
	if err := db.Comments().Create(ctx, second); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	comments, err := db.Comments().ListByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListByProject() error = %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("ListByProject() returned %d comments, want 2", len(comments))
	}
	// Oldest first.
	if comments[0].Content != "first!" || comments[1].Content != "second" {
		t.Errorf("comment order = [%q %q], want oldest first", comments[0].Content, comments[1].Content)
	}
	if comments[0].AuthorUsername != "alice" {
		t.Errorf("AuthorUsername = %q, want %q", comments[0].AuthorUsername, "alice")
	}
}
