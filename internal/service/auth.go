// Package service — authentication business logic.
//
// AuthService sits between the HTTP handlers and the repository/auth
// utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → PrincipalRepository (DB)
//	                   ↘ TokenService (JWT) / PasswordService (bcrypt)
//
// Its job is to turn "someone proved who they are" (a GitHub OAuth exchange
// or a correct password) into a stored Principal plus a session token. It
// deliberately does NOT create the public Profile — that is provisioned
// lazily by ProfileService the first time the user acts, which keeps login
// free of username allocation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/parthu1029/DevShowcase/internal/apperror"
	"github.com/parthu1029/DevShowcase/internal/auth"
	"github.com/parthu1029/DevShowcase/internal/model"
	"github.com/parthu1029/DevShowcase/internal/repository"
)

// MinPasswordLength for email+password signups.
const MinPasswordLength = 8

// AuthService handles the authentication business logic.
type AuthService struct {
	principals repository.PrincipalRepository
	tokens     *auth.TokenService
	passwords  *auth.PasswordService
	logger     *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	principals repository.PrincipalRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		principals: principals,
		tokens:     tokens,
		passwords:  passwords,
		logger:     logger,
	}
}

// AuthResult bundles the principal and the issued JWT so the handler can set
// the cookie and respond in one step.
type AuthResult struct {
	Principal *model.Principal
	Token     string
}

// LoginOrRegisterGitHub handles the GitHub OAuth callback: upsert the
// principal keyed on the stable GitHub ID (first login inserts, later logins
// refresh the identity hints), then issue a session token.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	principal := &model.Principal{
		GitHubID:          ghUser.ID,
		Email:             ghUser.Email,
		PreferredUsername: ghUser.Login,
		FullName:          ghUser.Name,
		PictureURL:        ghUser.AvatarURL,
	}

	if err := s.principals.UpsertByGitHub(ctx, principal); err != nil {
		return nil, fmt.Errorf("service/auth: upserting principal (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("principal authenticated via GitHub",
		slog.String("principalID", principal.ID),
		slog.String("login", ghUser.Login),
	)

	return s.issue(principal)
}

// SignupWithPassword registers an email+password principal. The optional
// username is kept as an identity hint — the actual unique username is only
// claimed when the profile is provisioned.
func (s *AuthService) SignupWithPassword(ctx context.Context, email, password, username string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	principal := &model.Principal{
		Email:             email,
		PasswordHash:      hash,
		PreferredUsername: strings.TrimSpace(username),
	}
	if err := s.principals.Create(ctx, principal); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			// Duplicate email is user-facing — unlike provisioning
			// collisions, there is no alternative to offer.
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating principal: %w", err)
	}

	s.logger.Info("principal registered",
		slog.String("principalID", principal.ID),
	)

	return s.issue(principal)
}

// LoginWithPassword authenticates an email+password principal.
//
// Wrong email and wrong password both come back as the same NotAuthenticated
// error so the response doesn't reveal which emails are registered.
func (s *AuthService) LoginWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	principal, err := s.principals.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotAuthenticated()
		}
		return nil, fmt.Errorf("service/auth: looking up principal: %w", err)
	}
	if principal.PasswordHash == "" {
		// GitHub-only account — no password to check.
		return nil, apperror.NotAuthenticated()
	}

	if err := s.passwords.Verify(principal.PasswordHash, password); err != nil {
		return nil, apperror.NotAuthenticated()
	}

	s.logger.Info("principal authenticated via password",
		slog.String("principalID", principal.ID),
	)

	return s.issue(principal)
}

// GetPrincipalByID returns the principal for the given internal ID. Used by
// the auth middleware to rehydrate the request identity from the JWT subject.
func (s *AuthService) GetPrincipalByID(ctx context.Context, id string) (*model.Principal, error) {
	if id == "" {
		return nil, apperror.NotAuthenticated()
	}
	return s.principals.GetByID(ctx, id)
}

// ValidateToken validates a JWT string and returns the principal ID it
// encodes. Thin delegation so callers only import the service package.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	principalID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}
	return principalID, nil
}

func (s *AuthService) issue(principal *model.Principal) (*AuthResult, error) {
	token, err := s.tokens.Generate(principal.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %s: %w", principal.ID, err)
	}
	return &AuthResult{Principal: principal, Token: token}, nil
}
