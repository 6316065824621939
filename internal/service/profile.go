// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes to the database
//
// Services accept repository interfaces, not concrete stores, so tests can
// inject in-memory mocks and the sqlite package stays swappable.
//
// The two services in profile.go and engagement.go are the consistency core
// of the app: both layer mutable state (a unique username claim, a toggled
// relation plus cached counter) on top of a store with no multi-statement
// transactions, and both get their correctness from the store's uniqueness
// constraints rather than from locks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"

	"github.com/parthu1029/DevShowcase/internal/apperror"
	"github.com/parthu1029/DevShowcase/internal/model"
	"github.com/parthu1029/DevShowcase/internal/repository"
)

const (
	// maxProvisionAttempts bounds the username claim loop. With a ~1000-value
	// suffix space, five attempts make exhaustion astronomically unlikely for
	// honest traffic while keeping worst-case signup latency bounded.
	maxProvisionAttempts = 5

	// usernameBaseLength leaves room under model.MaxUsernameLength for a
	// numeric collision suffix.
	usernameBaseLength = 24

	MaxFullNameLength = 80
	MaxBioLength      = 500
)

// ProfileService provisions and manages public profiles.
type ProfileService struct {
	profiles repository.ProfileRepository
	logger   *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(profiles repository.ProfileRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		logger:   logger,
	}
}

// EnsureProfile guarantees exactly one Profile exists for the principal and
// returns it. Called lazily before any action that needs a public identity
// (submitting, voting, commenting), so signup never blocks on username
// allocation.
//
// HOW THE CLAIM LOOP STAYS CORRECT WITHOUT A LOCK:
// The username pre-check (UsernameTaken) only avoids insert attempts that are
// guaranteed to fail; the real arbiter is the UNIQUE constraint on
// profiles.username. When an insert fails with a conflict despite a clean
// pre-check, some concurrent signup claimed the name between our two
// statements — we treat it exactly like a pre-check hit and move to the next
// candidate. A conflict on the profile's OWN id means a concurrent
// EnsureProfile for this same principal won the race, in which case we return
// the row it created: the call is idempotent either way.
//
// Candidates: the normalized base first, then base + random suffix in
// [0,999), at most maxProvisionAttempts total. Exhaustion surfaces as
// ErrProvisioningExhausted rather than retrying forever — the caller can ask
// the user to retry.
func (s *ProfileService) EnsureProfile(ctx context.Context, principal *model.Principal) (*model.Profile, error) {
	if principal == nil || principal.ID == "" {
		return nil, apperror.NotAuthenticated()
	}

	// Idempotent fast path: the profile usually already exists.
	existing, err := s.profiles.GetByID(ctx, principal.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/profile: checking profile %s: %w", principal.ID, err)
	}

	base := usernameBase(principal)
	candidate := base

	for attempt := 0; attempt < maxProvisionAttempts; attempt++ {
		taken, err := s.profiles.UsernameTaken(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("service/profile: checking username %q: %w", candidate, err)
		}

		if !taken {
			profile := &model.Profile{
				ID:        principal.ID,
				Username:  candidate,
				FullName:  principal.FullName,
				AvatarURL: principal.PictureURL,
			}

			err := s.profiles.Create(ctx, profile)
			if err == nil {
				s.logger.Info("profile provisioned",
					slog.String("profileID", profile.ID),
					slog.String("username", profile.Username),
					slog.Int("attempt", attempt+1),
				)
				return profile, nil
			}
			if !errors.Is(err, apperror.ErrConflict) {
				return nil, fmt.Errorf("service/profile: creating profile %s: %w", principal.ID, err)
			}

			// Conflict despite a clean pre-check. Either a concurrent
			// provisioning of this same principal won (return its row), or a
			// concurrent signup grabbed the username (try the next candidate).
			if winner, err := s.profiles.GetByID(ctx, principal.ID); err == nil {
				return winner, nil
			}
		}

		candidate = suffixCandidate(base)
	}

	s.logger.Warn("username provisioning exhausted",
		slog.String("principalID", principal.ID),
		slog.String("base", base),
	)
	return nil, apperror.ProvisioningExhausted(base)
}

// GetByID returns the profile for a principal ID.
func (s *ProfileService) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "profile ID is required")
	}
	return s.profiles.GetByID(ctx, id)
}

// GetByUsername returns the profile behind a public profile page.
func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	return s.profiles.GetByUsername(ctx, username)
}

// Update modifies the acting principal's own profile. Username is not an
// accepted field — it is immutable once claimed.
func (s *ProfileService) Update(ctx context.Context, actingProfileID, fullName, avatarURL, bio string) (*model.Profile, error) {
	if actingProfileID == "" {
		return nil, apperror.NotAuthenticated()
	}

	fullName = strings.TrimSpace(fullName)
	bio = strings.TrimSpace(bio)
	if len(fullName) > MaxFullNameLength {
		return nil, apperror.ValidationFailed("fullName",
			fmt.Sprintf("full name must be %d characters or less", MaxFullNameLength))
	}
	if len(bio) > MaxBioLength {
		return nil, apperror.ValidationFailed("bio",
			fmt.Sprintf("bio must be %d characters or less", MaxBioLength))
	}

	profile, err := s.profiles.GetByID(ctx, actingProfileID)
	if err != nil {
		return nil, err
	}

	profile.FullName = fullName
	profile.AvatarURL = strings.TrimSpace(avatarURL)
	profile.Bio = bio

	if err := s.profiles.Update(ctx, profile); err != nil {
		s.logger.Error("failed to update profile",
			slog.String("profileID", actingProfileID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/profile: updating profile %s: %w", actingProfileID, err)
	}

	return profile, nil
}

// usernameBase derives the raw candidate base from the principal's identity
// hints, in priority order: provider username hint, full name, the local part
// of the email, the literal "user". The result is already normalized.
func usernameBase(principal *model.Principal) string {
	raw := principal.PreferredUsername
	if raw == "" {
		raw = principal.FullName
	}
	if raw == "" {
		if at := strings.IndexByte(principal.Email, '@'); at > 0 {
			raw = principal.Email[:at]
		}
	}
	if raw == "" {
		raw = "user"
	}

	base := normalizeUsername(raw)
	if base == "" {
		// The hint was all symbols/diacritics. Fall back to a fragment of the
		// opaque principal ID, which is already URL-safe.
		base = "user_" + idPrefix(principal.ID, 6)
	}
	return base
}

// normalizeUsername lowercases, strips every character outside [a-z0-9_.-]
// and truncates to usernameBaseLength. May return "".
func normalizeUsername(raw string) string {
	raw = strings.ToLower(raw)

	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteByte(byte(r))
		}
	}

	s := b.String()
	if len(s) > usernameBaseLength {
		s = s[:usernameBaseLength]
	}
	return s
}

// suffixCandidate appends a random integer in [0, 999) to the base, capped
// at the overall username length limit.
func suffixCandidate(base string) string {
	candidate := base + strconv.Itoa(rand.Intn(999))
	if len(candidate) > model.MaxUsernameLength {
		candidate = candidate[:model.MaxUsernameLength]
	}
	return candidate
}

func idPrefix(id string, n int) string {
	if len(id) < n {
		return id
	}
	return id[:n]
}
