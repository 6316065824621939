// Package model defines the data structures used throughout the application.
package model

import "time"

// Principal is an authenticated identity — the account record owned by the
// auth layer, as opposed to Profile which is the public-facing record.
//
// A Principal can come from two places:
//   - GitHub OAuth: GitHubID is set (UNIQUE in the DB), PasswordHash is empty
//   - Email+password signup: Email+PasswordHash are set, GitHubID is zero
//
// WHY BOTH IN ONE TABLE?
// The rest of the app only ever needs the Principal's stable ID and its
// identity hints. Splitting OAuth and password accounts into separate tables
// would force every consumer to join two tables to answer "who is this?".
//
// The identity hints (PreferredUsername, FullName, PictureURL) are captured
// at login time and used exactly once: to derive a username candidate when
// the Profile is lazily provisioned. After that they're just display fallbacks.
type Principal struct {
	ID                string    `json:"id"                db:"id"`
	GitHubID          int64     `json:"githubId"          db:"github_id"` // 0 for password accounts
	Email             string    `json:"email"             db:"email"`
	PasswordHash      string    `json:"-"                 db:"password_hash"` // never serialized
	PreferredUsername string    `json:"preferredUsername" db:"preferred_username"`
	FullName          string    `json:"fullName"          db:"full_name"`
	PictureURL        string    `json:"pictureUrl"        db:"picture_url"`
	CreatedAt         time.Time `json:"createdAt"         db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt"         db:"updated_at"`
}
