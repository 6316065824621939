package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/parthu1029/DevShowcase/internal/apperror"
	"github.com/parthu1029/DevShowcase/internal/model"
	"github.com/parthu1029/DevShowcase/internal/repository"
)

// EngagementService flips upvote/star relations and keeps the project
// vote-count cache within repair range of the truth.
//
// THE TOGGLE'S CONCURRENCY ARGUMENT (same for both kinds, which is why the
// engine is written once over the kind tag):
//
//	read existence → flip (insert or delete) → best-effort cache update
//
// Two toggles racing between the read and the flip can both observe "absent"
// and both insert. The relation table's composite primary key rejects the
// second insert; that writer treats the conflict as "a concurrent toggle
// already made me active" and reports active=true WITHOUT touching the cache
// (the winner already counted the flip). Symmetrically, a delete that
// affects zero rows means the row was already gone — also no cache
// adjustment. So every relation row that exists was counted at most once,
// and the cache never double-counts a single logical flip.
//
// Store failures are never retried here: a toggle retried after a timeout
// could flip state twice. The caller re-queries, then decides.
type EngagementService struct {
	engagements repository.EngagementRepository
	projects    repository.ProjectRepository
	logger      *slog.Logger
}

// NewEngagementService creates an EngagementService.
func NewEngagementService(
	engagements repository.EngagementRepository,
	projects repository.ProjectRepository,
	logger *slog.Logger,
) *EngagementService {
	return &EngagementService{
		engagements: engagements,
		projects:    projects,
		logger:      logger,
	}
}

// ToggleResult is what a toggle reports back for immediate UI reconciliation.
// VoteCount is only meaningful for the upvote kind; stars have no counter.
type ToggleResult struct {
	Active    bool `json:"active"`
	VoteCount int  `json:"votes"`
}

// Toggle flips the existence of the (actingProfileID, projectID) relation row
// of the given kind and returns the new state.
//
// Calling it twice in sequence from the same actor alternates the state.
// Calling it concurrently from two processes converges on one well-defined
// winner (see the type comment).
func (s *EngagementService) Toggle(ctx context.Context, kind model.EngagementKind, actingProfileID, projectID string) (*ToggleResult, error) {
	if actingProfileID == "" {
		return nil, apperror.NotAuthenticated()
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("service/engagement: unknown kind %q", kind)
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, apperror.ValidationFailed("projectId", "project ID is required")
	}

	// Precondition: the target project must exist. This also keeps a typo'd
	// ID from surfacing as a foreign-key error out of the relation insert.
	cached, err := s.projects.VoteCount(ctx, projectID)
	if err != nil {
		return nil, err
	}

	exists, err := s.engagements.Exists(ctx, kind, actingProfileID, projectID)
	if err != nil {
		return nil, err
	}

	var (
		active  bool
		mutated bool // did WE change a row? (gates the cache adjustment)
	)

	if exists {
		n, err := s.engagements.Delete(ctx, kind, actingProfileID, projectID)
		if err != nil {
			return nil, err
		}
		// n == 0: a concurrent toggle removed the row first. Still inactive
		// from our side, but the other writer owns the cache adjustment.
		active = false
		mutated = n > 0
	} else {
		err := s.engagements.Insert(ctx, kind, actingProfileID, projectID)
		switch {
		case err == nil:
			active = true
			mutated = true
		case errors.Is(err, apperror.ErrConflict):
			// A concurrent toggle already made us active. Do not retry the
			// insert and do not touch the cache — the winner counted it.
			active = true
		default:
			return nil, err
		}
	}

	result := &ToggleResult{Active: active}

	if kind == model.KindUpvote {
		if mutated {
			result.VoteCount = s.adjustVoteCache(ctx, projectID, active, cached)
		} else {
			result.VoteCount = cached
		}
	}

	s.logger.Info("engagement toggled",
		slog.String("kind", string(kind)),
		slog.String("profileID", actingProfileID),
		slog.String("projectID", projectID),
		slog.Bool("active", active),
	)

	return result, nil
}

// adjustVoteCache applies the ±1 cache update after a successful flip.
//
// Best effort by design: the relation row is already authoritative, so a
// failure here only leaves the counter stale until ReconcileVotes (or the
// next successful toggle) heals it. We log and return the freshest number we
// have rather than failing the toggle.
func (s *EngagementService) adjustVoteCache(ctx context.Context, projectID string, active bool, fallback int) int {
	count, err := s.projects.VoteCount(ctx, projectID)
	if err != nil {
		s.logger.Warn("vote cache read failed after toggle; counter will heal on reconcile",
			slog.String("projectID", projectID),
			slog.String("error", err.Error()),
		)
		return fallback
	}

	next := count - 1
	if active {
		next = count + 1
	}
	if next < 0 {
		// A negative counter is always cache drift, never truth.
		next = 0
	}

	if err := s.projects.SetVoteCount(ctx, projectID, next); err != nil {
		s.logger.Warn("vote cache write failed after toggle; counter will heal on reconcile",
			slog.String("projectID", projectID),
			slog.String("error", err.Error()),
		)
		return count
	}
	return next
}

// ReconcileVotes recomputes a project's vote count from the relation table,
// healing any drift the best-effort cache updates left behind. Invoked on
// single-project reads; harmless to call at any time.
func (s *EngagementService) ReconcileVotes(ctx context.Context, projectID string) (int, error) {
	if projectID == "" {
		return 0, apperror.ValidationFailed("projectId", "project ID is required")
	}
	return s.projects.RecountVotes(ctx, projectID)
}
