package model

import (
	"strings"
	"time"
)

// PlatformLink is one external link attached to a project, e.g.
// {Name: "github", URL: "https://github.com/..."} or {Name: "demo", ...}.
// Order matters — the first link is the fallback when no named link matches.
type PlatformLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Project is a community submission.
//
// Tags and PlatformLinks are stored as JSON text columns rather than join
// tables. They are read-modify-write blobs owned entirely by one project row,
// never queried across rows, so normalizing them would buy nothing.
//
// VoteCount is a denormalized cache of count(*) over project_upvotes. It is
// owned by the engagement service: nothing else writes it, and it must always
// be re-derivable from the relation table (see ReconcileVotes).
type Project struct {
	ID             string         `json:"id"          db:"id"`
	Title          string         `json:"title"       db:"title"`
	Description    string         `json:"description" db:"description"`
	Tags           []string       `json:"tags"        db:"tags"`
	OwnerProfileID string         `json:"ownerId"     db:"owner_profile_id"`
	PlatformLinks  []PlatformLink `json:"platforms"   db:"platforms"`
	VoteCount      int            `json:"votes"       db:"vote_count"`
	CreatedAt      time.Time      `json:"createdAt"   db:"created_at"`
}

// ProjectView is a Project enriched with viewer-specific engagement state and
// derived display fields. This is what GET /api/projects returns.
type ProjectView struct {
	Project
	AuthorDisplayName string `json:"author"`
	AuthorAvatarURL   string `json:"authorAvatarUrl,omitempty"`
	StarredByViewer   bool   `json:"starred"`
	VotedByViewer     bool   `json:"voted"`
	PrimaryLinkURL    string `json:"github,omitempty"`
	PreviewURL        string `json:"preview,omitempty"`
}

// PrimaryLink returns the project's main link: the first platform link
// named "github" (case-insensitive), else the first link of any name, else "".
// Total over any well-formed project, including zero links.
func (p *Project) PrimaryLink() string {
	if url := p.linkNamed("github"); url != "" {
		return url
	}
	if len(p.PlatformLinks) > 0 {
		return p.PlatformLinks[0].URL
	}
	return ""
}

// PreviewLink returns the first link (in link order) whose name is one of
// "preview", "live", "demo" or "website" (case-insensitive), else "".
func (p *Project) PreviewLink() string {
	for _, link := range p.PlatformLinks {
		switch strings.ToLower(link.Name) {
		case "preview", "live", "demo", "website":
			return link.URL
		}
	}
	return ""
}

func (p *Project) linkNamed(name string) string {
	for _, link := range p.PlatformLinks {
		if strings.EqualFold(link.Name, name) {
			return link.URL
		}
	}
	return ""
}
