package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/parthu1029/DevShowcase/internal/apperror"
	"github.com/parthu1029/DevShowcase/internal/model"
	"github.com/parthu1029/DevShowcase/internal/repository"
)

// compile-time check that *EngagementStore implements repository.EngagementRepository
var _ repository.EngagementRepository = (*EngagementStore)(nil)

// EngagementStore persists the upvote and star relation tables.
//
// Both tables have the same shape, so every method dispatches on the kind tag
// rather than duplicating SQL per relation. The table name is interpolated
// from a fixed map — never from caller input — so this is not an injection
// surface.
type EngagementStore struct {
	conn *sql.DB
}

var kindTables = map[model.EngagementKind]string{
	model.KindUpvote: "project_upvotes",
	model.KindStar:   "project_stars",
}

func tableFor(kind model.EngagementKind) (string, error) {
	table, ok := kindTables[kind]
	if !ok {
		return "", fmt.Errorf("sqlite: unknown engagement kind %q", kind)
	}
	return table, nil
}

// Exists reports whether the (profile, project) relation row is present.
func (s *EngagementStore) Exists(ctx context.Context, kind model.EngagementKind, profileID, projectID string) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	var one int
	err = s.conn.QueryRowContext(ctx,
		`SELECT 1 FROM `+table+` WHERE profile_id = ? AND project_id = ? LIMIT 1`,
		profileID, projectID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, apperror.Unavailable(string(kind)+" lookup", err)
	}
	return true, nil
}

// Insert adds the relation row. Returns apperror.ErrConflict if it already
// exists — the composite primary key rejects the second writer in a race,
// and the toggle engine treats that as "already active".
func (s *EngagementStore) Insert(ctx context.Context, kind model.EngagementKind, profileID, projectID string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO `+table+` (profile_id, project_id, created_at) VALUES (?, ?, ?)`,
		profileID, projectID, time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(string(kind), profileID+"/"+projectID)
		}
		return apperror.Unavailable(string(kind)+" insert", err)
	}
	return nil
}

// Delete removes the relation row and returns how many rows went away.
// Zero rows is a legitimate outcome (a concurrent toggle got there first),
// so it is returned as data, not as an error.
func (s *EngagementStore) Delete(ctx context.Context, kind model.EngagementKind, profileID, projectID string) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE profile_id = ? AND project_id = ?`,
		profileID, projectID,
	)
	if err != nil {
		return 0, apperror.Unavailable(string(kind)+" delete", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperror.Unavailable(string(kind)+" delete", err)
	}
	return n, nil
}

// ProjectIDs returns the set of project IDs the profile has engaged with.
// Used by the read projection to mark starred/voted flags for the viewer.
func (s *EngagementStore) ProjectIDs(ctx context.Context, kind model.EngagementKind, profileID string) (map[string]bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT project_id FROM `+table+` WHERE profile_id = ?`, profileID,
	)
	if err != nil {
		return nil, apperror.Unavailable(string(kind)+" set query", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperror.Unavailable(string(kind)+" set scan", err)
		}
		set[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Unavailable(string(kind)+" set query", err)
	}
	return set, nil
}
