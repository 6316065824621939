// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. Perfect for
// single-server deployments, and ":memory:" gives tests a free isolated store.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere Go works.
//
// CONSTRAINTS AS CONCURRENCY CONTROL:
// This app deliberately has no multi-statement transactions and no app-level
// locks. The UNIQUE constraints below — profiles.username, and the
// (profile_id, project_id) primary keys on the two engagement tables — are
// the only serialization points. The repository's job is to translate a
// constraint violation into apperror.ErrConflict so the service layer can
// absorb or surface it; everything else that goes wrong at this layer is
// classified as apperror.ErrUnavailable (I/O failure, caller retries).
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	// The import also registers the "sqlite" driver with database/sql via its
	// init(). We additionally use the package directly to inspect result
	// codes on constraint violations.
	sqlite "modernc.org/sqlite"
)

// SQLite extended result codes for uniqueness violations.
// https://sqlite.org/rescode.html
const (
	codeConstraintUnique     = 2067 // SQLITE_CONSTRAINT_UNIQUE
	codeConstraintPrimaryKey = 1555 // SQLITE_CONSTRAINT_PRIMARYKEY
)

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure. Every repository insert that can race checks this and
// returns apperror.ErrConflict instead of the raw driver error, so callers
// never have to know the driver's error shape.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		code := serr.Code()
		return code == codeConstraintUnique || code == codeConstraintPrimaryKey
	}
	return false
}

// DB wraps a sql.DB connection pool and hands out per-entity stores.
//
// Each store (PrincipalStore, ProfileStore, ...) implements one repository
// interface against the shared pool. Splitting them keeps method sets from
// colliding (every entity wants a Create) and lets the service layer depend
// on exactly the store it needs.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/showcase.db" → file-based database (persistent)
//   - ":memory:"         → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection, always. SQLite allows a single writer anyway, so a
	// bigger pool only buys SQLITE_BUSY errors — and for ":memory:" every
	// pool connection would open its OWN empty database, silently losing
	// the schema between queries.
	conn.SetMaxOpenConns(1)

	// Ping forces an immediate connection so a bad path or permissions issue
	// surfaces here instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is happening — critical
	// for a web server where multiple requests hit the DB.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (backwards compatibility).
	// We need them: engagement rows and comments reference profiles/projects.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer it next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Per-entity store accessors. The stores share the pool; they carry no state
// of their own, so handing out a fresh value each call is fine.

func (db *DB) Principals() *PrincipalStore { return &PrincipalStore{conn: db.conn} }
func (db *DB) Profiles() *ProfileStore     { return &ProfileStore{conn: db.conn} }
func (db *DB) Projects() *ProjectStore     { return &ProjectStore{conn: db.conn} }
func (db *DB) Engagements() *EngagementStore {
	return &EngagementStore{conn: db.conn}
}
func (db *DB) Comments() *CommentStore { return &CommentStore{conn: db.conn} }

// migrate runs all database migrations.
//
// CREATE TABLE IF NOT EXISTS is idempotent — safe to run on every startup.
// For a schema this size, embedded SQL beats pulling in a migration tool.
func (db *DB) migrate() error {
	// Auth accounts. github_id is UNIQUE but nullable — password accounts
	// store NULL there, and SQLite allows any number of NULLs in a UNIQUE
	// column. Email uniqueness is enforced only for non-empty emails
	// (GitHub users may hide theirs, which arrives as "").
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS principals (
			id                 TEXT PRIMARY KEY,
			github_id          INTEGER UNIQUE,
			email              TEXT NOT NULL DEFAULT '',
			password_hash      TEXT NOT NULL DEFAULT '',
			preferred_username TEXT NOT NULL DEFAULT '',
			full_name          TEXT NOT NULL DEFAULT '',
			picture_url        TEXT NOT NULL DEFAULT '',
			created_at         DATETIME NOT NULL,
			updated_at         DATETIME NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_principals_email
			ON principals(email) WHERE email <> '';
	`)
	if err != nil {
		return fmt.Errorf("creating principals table: %w", err)
	}

	// Public profiles. The UNIQUE constraint on username is the authoritative
	// collision detector for the provisioning loop — the pre-check SELECT is
	// only an optimization.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id         TEXT PRIMARY KEY,
			username   TEXT NOT NULL UNIQUE,
			full_name  TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			bio        TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating profiles table: %w", err)
	}

	// Projects. tags and platforms are JSON text blobs (owned by one row,
	// never queried across rows). vote_count is the denormalized cache.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id               TEXT PRIMARY KEY,
			title            TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			tags             TEXT NOT NULL DEFAULT '[]',
			owner_profile_id TEXT NOT NULL REFERENCES profiles(id),
			platforms        TEXT NOT NULL DEFAULT '[]',
			vote_count       INTEGER NOT NULL DEFAULT 0,
			created_at       DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating projects table: %w", err)
	}

	// Engagement relations. The composite PRIMARY KEY is the at-most-one-row
	// invariant: a second concurrent insert for the same pair fails with a
	// constraint violation, which the toggle engine absorbs.
	for _, table := range []string{"project_upvotes", "project_stars"} {
		_, err = db.conn.Exec(fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				profile_id TEXT NOT NULL REFERENCES profiles(id),
				project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
				created_at DATETIME NOT NULL,
				PRIMARY KEY (profile_id, project_id)
			);
			CREATE INDEX IF NOT EXISTS idx_%s_project ON %s(project_id);
		`, table, table, table))
		if err != nil {
			return fmt.Errorf("creating %s table: %w", table, err)
		}
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id                TEXT PRIMARY KEY,
			project_id        TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			author_profile_id TEXT NOT NULL REFERENCES profiles(id),
			content           TEXT NOT NULL,
			created_at        DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comments_project ON comments(project_id);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	return nil
}
