// Package auth provides session tokens, the GitHub OAuth flow, and password
// hashing for the showcase API.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. User signs in — GitHub OAuth redirect/callback, or email+password
//  2. Server upserts/creates the principal and issues a JWT access token,
//     stored in an HttpOnly cookie
//  3. On subsequent API calls, middleware reads the cookie, validates the
//     JWT, and sets the principal ID in the request context
//
// WHY JWT?
// JWT (JSON Web Token) is stateless — the server doesn't need to store
// session data. The signed token carries the principal ID and expiry; the
// signature ensures nobody can tamper with it without the secret key, and
// verification needs no DB lookup.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer is checked on validation so tokens minted by other apps
// sharing a secret (or a misconfigured staging box) are rejected.
const tokenIssuer = "devshowcase"

// accessTokenTTL is deliberately short; the cookie expires alongside it and
// the user re-authenticates. Long-lived refresh tokens are a non-goal here.
const accessTokenTTL = 24 * time.Hour

// TokenService handles JWT creation and validation. It holds the HMAC secret
// used to sign and verify tokens — the same secret for both operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims embeds jwt.RegisteredClaims; "sub" (Subject) carries the internal
// principal ID — the standard claim for identifying the token's owner.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new access token for the given principal ID.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, and right for a
// single-server deployment where signer and verifier are the same process.
func (s *TokenService) Generate(principalID string) (string, error) {
	return s.GenerateWithDuration(principalID, accessTokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry. Used by tests
// to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(principalID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the principal ID
// from the "sub" claim.
//
// The jwt library checks the signature, expiry, and issuer. Passing
// jwt.WithValidMethods pins the algorithm to HS256 — without it, an
// algorithm-confusion attack could slip through a token signed with "none".
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
