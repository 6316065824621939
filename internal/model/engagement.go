package model

import "time"

// EngagementKind selects which engagement relation a toggle operates on.
//
// Upvotes and stars are structurally identical — a (profile, project) pair
// whose row-existence is the signal — so the toggle engine is written once
// over this tag rather than duplicated per relation. The only behavioural
// difference is that upvotes maintain the project's vote-count cache.
type EngagementKind string

const (
	KindUpvote EngagementKind = "upvote"
	KindStar   EngagementKind = "star"
)

// Valid reports whether k is one of the two known kinds.
func (k EngagementKind) Valid() bool {
	return k == KindUpvote || k == KindStar
}

// Engagement is a stored fact: "profile X upvoted/starred project Y at T".
// At most one row exists per (profile, project) pair per kind — enforced by a
// UNIQUE constraint, which is the toggle engine's only serialization point.
type Engagement struct {
	ProfileID string    `json:"profileId" db:"profile_id"`
	ProjectID string    `json:"projectId" db:"project_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
