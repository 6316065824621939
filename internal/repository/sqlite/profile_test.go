package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/parthu1029/DevShowcase/internal/apperror"
	"github.com/parthu1029/DevShowcase/internal/model"
)

func TestProfileCreate_AndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	profile := &model.Profile{
		ID:        "principal-1",
		Username:  "alice",
		FullName:  "Alice Example",
		AvatarURL: "https://example.com/a.png",
	}
	if err := db.Profiles().Create(ctx, profile); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if profile.CreatedAt.IsZero() {
		t.Error("Create() should set CreatedAt")
	}

	byID, err := db.Profiles().GetByID(ctx, "principal-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Username != "alice" {
		t.Errorf("Username = %q, want %q", byID.Username, "alice")
	}

	byName, err := db.Profiles().GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if byName.ID != "principal-1" {
		t.Errorf("ID = %q, want %q", byName.ID, "principal-1")
	}
}

func TestProfileCreate_DuplicateUsernameIsConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createTestProfile(t, db, "p1", "partha")

	err := db.Profiles().Create(ctx, &model.Profile{ID: "p2", Username: "partha"})
	if err == nil {
		t.Fatal("Create() should fail on duplicate username")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestProfileCreate_DuplicateIDIsConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createTestProfile(t, db, "p1", "partha")

	// Same principal, different username — the one-profile-per-principal
	// invariant comes from the primary key on id.
	err := db.Profiles().Create(ctx, &model.Profile{ID: "p1", Username: "partha999"})
	if err == nil {
		t.Fatal("Create() should fail on duplicate id")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestProfileGet_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Profiles().GetByID(context.Background(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID(ghost) error = %v, want ErrNotFound", err)
	}

	_, err = db.Profiles().GetByUsername(context.Background(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByUsername(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestProfileUsernameTaken(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createTestProfile(t, db, "p1", "alice")

	taken, err := db.Profiles().UsernameTaken(ctx, "alice")
	if err != nil {
		t.Fatalf("UsernameTaken() error = %v", err)
	}
	if !taken {
		t.Error("UsernameTaken(alice) = false, want true")
	}

	taken, err = db.Profiles().UsernameTaken(ctx, "bob")
	if err != nil {
		t.Fatalf("UsernameTaken() error = %v", err)
	}
	if taken {
		t.Error("UsernameTaken(bob) = true, want false")
	}
}

func TestProfileUpdate_CannotChangeUsername(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	profile := createTestProfile(t, db, "p1", "alice")
	profile.Username = "renamed" // ignored by Update — usernames are immutable
	profile.Bio = "building things"

	if err := db.Profiles().Update(ctx, profile); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	stored, err := db.Profiles().GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Username != "alice" {
		t.Errorf("Username = %q after update, want unchanged %q", stored.Username, "alice")
	}
	if stored.Bio != "building things" {
		t.Errorf("Bio = %q, want %q", stored.Bio, "building things")
	}
}

func TestProfileUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Profiles().Update(context.Background(), &model.Profile{ID: "ghost"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestPrincipalUpsertByGitHub_KeepsInternalID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &model.Principal{GitHubID: 42, Email: "a@example.com", PreferredUsername: "alice"}
	if err := db.Principals().UpsertByGitHub(ctx, first); err != nil {
		t.Fatalf("first upsert error = %v", err)
	}
	if first.ID == "" {
		t.Fatal("upsert should assign an internal ID")
	}

	// Second login with changed hints: same internal ID, refreshed fields.
	second := &model.Principal{GitHubID: 42, Email: "new@example.com", PreferredUsername: "alice2"}
	if err := db.Principals().UpsertByGitHub(ctx, second); err != nil {
		t.Fatalf("second upsert error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second upsert ID = %q, want same as first %q", second.ID, first.ID)
	}

	stored, err := db.Principals().GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID error = %v", err)
	}
	if stored.Email != "new@example.com" {
		t.Errorf("Email = %q, want refreshed %q", stored.Email, "new@example.com")
	}
}

func TestPrincipalCreate_DuplicateEmailIsConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Principals().Create(ctx, &model.Principal{Email: "a@example.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("Create error = %v", err)
	}

	err := db.Principals().Create(ctx, &model.Principal{Email: "a@example.com", PasswordHash: "y"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate email error = %v, want ErrConflict", err)
	}
}
