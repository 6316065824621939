package model

import "time"

// MaxUsernameLength is the hard cap on a username, including any collision
// suffix. Base candidates are truncated shorter (see service.EnsureProfile)
// so that a numeric suffix still fits under this cap.
const MaxUsernameLength = 28

// Profile is the public identity record for a Principal.
//
// Profile.ID == Principal.ID — a strict one-to-one. The row is created
// lazily, on the first action that needs a public identity (submitting a
// project, voting, commenting), not during signup. That keeps the auth flow
// free of any username-allocation step.
//
// Username is globally unique (UNIQUE constraint in the DB), URL-safe
// (lowercase [a-z0-9_.-] only), and immutable once claimed — there is no
// rename path, so profile URLs never break.
type Profile struct {
	ID        string    `json:"id"        db:"id"`
	Username  string    `json:"username"  db:"username"`
	FullName  string    `json:"fullName"  db:"full_name"`  // optional, may be empty
	AvatarURL string    `json:"avatarUrl" db:"avatar_url"` // optional, may be empty
	Bio       string    `json:"bio"       db:"bio"`        // optional, may be empty
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
