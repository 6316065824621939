package sqlite

import (
	"context"
	"testing"

	"github.com/parthu1029/DevShowcase/internal/model"
)

// TESTING WITH IN-MEMORY SQLITE:
// Using ":memory:" creates a fresh database that exists only during the test.
// Fast, isolated, and automatically destroyed when the connection closes.
//
// newTestDB is a test helper — t.Helper() makes failures report at the
// caller's line, and t.Cleanup closes the DB even in subtests.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestProfile inserts a profile row directly, bypassing the
// provisioning engine — repository tests only need the row to exist.
func createTestProfile(t *testing.T, db *DB, id, username string) *model.Profile {
	t.Helper()
	profile := &model.Profile{ID: id, Username: username}
	if err := db.Profiles().Create(context.Background(), profile); err != nil {
		t.Fatalf("failed to create test profile %s: %v", username, err)
	}
	return profile
}

// createTestProject inserts a project owned by the given profile.
func createTestProject(t *testing.T, db *DB, ownerID, title string) *model.Project {
	t.Helper()
	project := &model.Project{
		Title:          title,
		OwnerProfileID: ownerID,
		Tags:           []string{"go"},
	}
	if err := db.Projects().Create(context.Background(), project); err != nil {
		t.Fatalf("failed to create test project %s: %v", title, err)
	}
	return project
}
