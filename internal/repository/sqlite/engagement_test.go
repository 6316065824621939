package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/parthu1029/DevShowcase/internal/apperror"
	"github.com/parthu1029/DevShowcase/internal/model"
)

// The engagement tables' UNIQUE constraints are the app's only concurrency
// control, so these tests pin down the exact conflict signaling the toggle
// engine depends on.

func TestEngagementInsert_ThenExists(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	profile := createTestProfile(t, db, "p1", "alice")
	project := createTestProject(t, db, profile.ID, "cool tool")

	for _, kind := range []model.EngagementKind{model.KindUpvote, model.KindStar} {
		if err := db.Engagements().Insert(ctx, kind, profile.ID, project.ID); err != nil {
			t.Fatalf("Insert(%s) error = %v", kind, err)
		}

		exists, err := db.Engagements().Exists(ctx, kind, profile.ID, project.ID)
		if err != nil {
			t.Fatalf("Exists(%s) error = %v", kind, err)
		}
		if !exists {
			t.Errorf("Exists(%s) = false after insert, want true", kind)
		}
	}
}

func TestEngagementInsert_DuplicateIsConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	profile := createTestProfile(t, db, "p1", "alice")
	project := createTestProject(t, db, profile.ID, "cool tool")

	if err := db.Engagements().Insert(ctx, model.KindUpvote, profile.ID, project.ID); err != nil {
		t.Fatalf("first Insert error = %v", err)
	}

	err := db.Engagements().Insert(ctx, model.KindUpvote, profile.ID, project.ID)
	if err == nil {
		t.Fatal("second Insert should fail — at most one row per pair")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second Insert error = %v, want ErrConflict", err)
	}
}

func TestEngagementDelete_ReportsRowsAffected(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	profile := createTestProfile(t, db, "p1", "alice")
	project := createTestProject(t, db, profile.ID, "cool tool")

	// Deleting a row that was never inserted is NOT an error — it reports
	// zero rows, which the toggle engine reads as "already gone".
	n, err := db.Engagements().Delete(ctx, model.KindStar, profile.ID, project.ID)
	if err != nil {
		t.Fatalf("Delete on missing row error = %v", err)
	}
	if n != 0 {
		t.Errorf("Delete on missing row affected %d rows, want 0", n)
	}

	if err := db.Engagements().Insert(ctx, model.KindStar, profile.ID, project.ID); err != nil {
		t.Fatalf("Insert error = %v", err)
	}

	n, err = db.Engagements().Delete(ctx, model.KindStar, profile.ID, project.ID)
	if err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if n != 1 {
		t.Errorf("Delete affected %d rows, want 1", n)
	}
}

func TestEngagement_KindsAreIndependent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	profile := createTestProfile(t, db, "p1", "alice")
	project := createTestProject(t, db, profile.ID, "cool tool")

	// An upvote must not look like a star.
	if err := db.Engagements().Insert(ctx, model.KindUpvote, profile.ID, project.ID); err != nil {
		t.Fatalf("Insert(upvote) error = %v", err)
	}

	starred, err := db.Engagements().Exists(ctx, model.KindStar, profile.ID, project.ID)
	if err != nil {
		t.Fatalf("Exists(star) error = %v", err)
	}
	if starred {
		t.Error("upvote row leaked into the star relation")
	}
}

func TestEngagementProjectIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	profile := createTestProfile(t, db, "p1", "alice")
	other := createTestProfile(t, db, "p2", "bob")
	projectA := createTestProject(t, db, profile.ID, "a")
	projectB := createTestProject(t, db, profile.ID, "b")

	mustInsert := func(kind model.EngagementKind, profileID, projectID string) {
		t.Helper()
		if err := db.Engagements().Insert(ctx, kind, profileID, projectID); err != nil {
			t.Fatalf("Insert error = %v", err)
		}
	}

	mustInsert(model.KindStar, profile.ID, projectA.ID)
	mustInsert(model.KindStar, other.ID, projectB.ID)

	set, err := db.Engagements().ProjectIDs(ctx, model.KindStar, profile.ID)
	if err != nil {
		t.Fatalf("ProjectIDs error = %v", err)
	}
	if !set[projectA.ID] {
		t.Errorf("set should contain %s", projectA.ID)
	}
	if set[projectB.ID] {
		t.Error("set should not contain another profile's star")
	}
}

func TestRecountVotes_HealsDriftedCache(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := createTestProfile(t, db, "p1", "alice")
	bob := createTestProfile(t, db, "p2", "bob")
	project := createTestProject(t, db, alice.ID, "cool tool")

	for _, voter := range []string{alice.ID, bob.ID} {
		if err := db.Engagements().Insert(ctx, model.KindUpvote, voter, project.ID); err != nil {
			t.Fatalf("Insert error = %v", err)
		}
	}

	// Simulate a drifted cache: the best-effort write after a toggle failed.
	if err := db.Projects().SetVoteCount(ctx, project.ID, 99); err != nil {
		t.Fatalf("SetVoteCount error = %v", err)
	}

	count, err := db.Projects().RecountVotes(ctx, project.ID)
	if err != nil {
		t.Fatalf("RecountVotes error = %v", err)
	}
	if count != 2 {
		t.Errorf("RecountVotes = %d, want 2 (count of relation rows)", count)
	}

	stored, err := db.Projects().VoteCount(ctx, project.ID)
	if err != nil {
		t.Fatalf("VoteCount error = %v", err)
	}
	if stored != 2 {
		t.Errorf("stored vote_count = %d after recount, want 2", stored)
	}
}
