package auth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "principalID", id), ANY package that knows that string
// can read or shadow your value. Using a package-private type prevents collisions:
// only THIS package can create a key of type contextKey, so only this package
// can read or write principal IDs in the context.
type contextKey string

const principalIDKey contextKey = "principalID"

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads the JWT from the "token" HttpOnly cookie, validates it, and
// stores the principal ID in the request context. If the token is missing or
// invalid, it returns 401 Unauthorized and stops the request chain.
//
// MIDDLEWARE PATTERN IN GO:
// A middleware is a function that takes an http.Handler and returns a new
// http.Handler. The new handler "wraps" the original:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // ... do stuff before the handler ...
//	        next.ServeHTTP(w, r)
//	        // ... do stuff after the handler ...
//	    })
//	}
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
//
// COOKIE-BASED TOKEN STORAGE:
// We store the JWT in an HttpOnly cookie rather than localStorage or a
// header. HttpOnly means JavaScript cannot read it, which prevents
// XSS (Cross-Site Scripting) attacks from stealing the token.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principalID, err := extractPrincipalID(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"not_authenticated","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			// Store the principal ID in context so handlers can read it
			ctx := context.WithValue(r.Context(), principalIDKey, principalID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth is a middleware that extracts the caller's identity if a valid
// token is present, but does NOT block the request if it's missing or invalid.
//
// Use this on public routes like GET /api/projects where:
// - Anonymous users can still read
// - But logged-in users see extra data (their own starred/voted flags)
//
// Handlers check for the caller via PrincipalIDFromContext — if it returns
// ("", false), the request is anonymous.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if principalID, err := extractPrincipalID(r, tokens); err == nil && principalID != "" {
				ctx := context.WithValue(r.Context(), principalIDKey, principalID)
				r = r.WithContext(ctx)
			}
			// Always continue — no 401 even if no token
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalIDFromContext retrieves the authenticated principal's ID from the
// request context.
//
// Returns ("", false) if the request is anonymous (no valid token was present).
// Returns (id, true) if the caller is authenticated.
//
// Usage in handlers:
//
//	principalID, ok := auth.PrincipalIDFromContext(r.Context())
//	if !ok {
//	    // anonymous request
//	}
func PrincipalIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalIDKey).(string)
	return id, ok && id != ""
}

// extractPrincipalID reads the JWT cookie and validates it.
// This is a private helper shared by RequireAuth and OptionalAuth.
//
// COOKIE FLOW:
// 1. Set-Cookie: token=<jwt>; HttpOnly; Secure; SameSite=Lax (set on login)
// 2. Browser automatically sends Cookie: token=<jwt> on subsequent requests
// 3. We read r.Cookie("token") and validate it
func extractPrincipalID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie("token")
	if err != nil {
		// http.ErrNoCookie means the cookie isn't present — not an error, just anonymous
		return "", err
	}

	return tokens.Validate(cookie.Value)
}
