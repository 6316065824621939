package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/parthu1029/DevShowcase/internal/apperror"
	"github.com/parthu1029/DevShowcase/internal/model"
	"github.com/parthu1029/DevShowcase/internal/repository"
)

// Validation constants for project submissions.
const (
	MaxTitleLength       = 120
	MaxDescriptionLength = 10000
	MaxTagCount          = 10
	MaxTagLength         = 30
	MaxPlatformLinks     = 10

	// unknownAuthor is shown when a project's owner profile can't be
	// resolved, rather than failing the whole listing.
	unknownAuthor = "Unknown"
)

// ProjectService handles submissions and the enriched read projection.
type ProjectService struct {
	projects    repository.ProjectRepository
	engagements repository.EngagementRepository
	profiles    *ProfileService
	logger      *slog.Logger
}

// NewProjectService creates a ProjectService. It takes the ProfileService
// (not just the repository) because submission must run the provisioning
// engine for first-time authors.
func NewProjectService(
	projects repository.ProjectRepository,
	engagements repository.EngagementRepository,
	profiles *ProfileService,
	logger *slog.Logger,
) *ProjectService {
	return &ProjectService{
		projects:    projects,
		engagements: engagements,
		profiles:    profiles,
		logger:      logger,
	}
}

// Create validates and stores a new submission on behalf of the principal.
// The author's profile is ensured first — a brand-new user's very first
// action can be a submission, and the profile row must exist before the
// project references it.
func (s *ProjectService) Create(
	ctx context.Context,
	principal *model.Principal,
	title, description string,
	tags []string,
	links []model.PlatformLink,
) (*model.Project, error) {
	if principal == nil || principal.ID == "" {
		return nil, apperror.NotAuthenticated()
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "project title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("project title must be %d characters or less", MaxTitleLength))
	}
	if len(description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}

	tags, err := normalizeTags(tags)
	if err != nil {
		return nil, err
	}
	links, err = normalizeLinks(links)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.EnsureProfile(ctx, principal)
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		Title:          title,
		Description:    strings.TrimSpace(description),
		Tags:           tags,
		OwnerProfileID: profile.ID,
		PlatformLinks:  links,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		s.logger.Error("failed to create project",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/project: creating project: %w", err)
	}

	s.logger.Info("project created",
		slog.String("id", project.ID),
		slog.String("owner", profile.Username),
	)

	return project, nil
}

// List builds the project listing enriched with the viewer's engagement
// state. viewerProfileID may be empty (anonymous browsing).
//
// The viewer's starred/voted sets come from two independent queries rather
// than a join, so an anonymous request pays zero extra query cost and the
// listing query itself stays session-free.
func (s *ProjectService) List(ctx context.Context, viewerProfileID string) ([]model.ProjectView, error) {
	rows, err := s.projects.List(ctx)
	if err != nil {
		s.logger.Error("failed to list projects", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/project: listing projects: %w", err)
	}

	starred := map[string]bool{}
	voted := map[string]bool{}
	if viewerProfileID != "" {
		if starred, err = s.engagements.ProjectIDs(ctx, model.KindStar, viewerProfileID); err != nil {
			return nil, fmt.Errorf("service/project: loading viewer stars: %w", err)
		}
		if voted, err = s.engagements.ProjectIDs(ctx, model.KindUpvote, viewerProfileID); err != nil {
			return nil, fmt.Errorf("service/project: loading viewer votes: %w", err)
		}
	}

	views := make([]model.ProjectView, 0, len(rows))
	for _, row := range rows {
		views = append(views, buildView(row, starred[row.ID], voted[row.ID]))
	}
	return views, nil
}

// Get returns a single project as a view (no viewer flags on the detail
// path — the list already carried them). The vote count is reconciled from
// the relation table on the way out, which is the designated healing point
// for cache drift left by failed best-effort updates.
func (s *ProjectService) Get(ctx context.Context, id string) (*model.ProjectView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "project ID is required")
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if count, err := s.projects.RecountVotes(ctx, id); err == nil {
		project.VoteCount = count
	} else {
		s.logger.Warn("vote reconcile failed on read; serving cached count",
			slog.String("projectID", id),
			slog.String("error", err.Error()),
		)
	}

	row := repository.ProjectWithAuthor{Project: *project}
	if owner, err := s.profiles.GetByID(ctx, project.OwnerProfileID); err == nil {
		row.AuthorUsername = owner.Username
		row.AuthorAvatarURL = owner.AvatarURL
	}

	view := buildView(row, false, false)
	return &view, nil
}

// Delete removes a project. Only the owner may delete; engagement rows and
// comments go with it.
func (s *ProjectService) Delete(ctx context.Context, actingProfileID, id string) error {
	if actingProfileID == "" {
		return apperror.NotAuthenticated()
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "project ID is required")
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if project.OwnerProfileID != actingProfileID {
		return apperror.Forbidden("only the project owner can delete it")
	}

	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("project deleted",
		slog.String("id", id),
		slog.String("by", actingProfileID),
	)
	return nil
}

// buildView derives the display fields. Pure and total: any well-formed
// project produces a view, including one with no links and no resolvable
// author.
func buildView(row repository.ProjectWithAuthor, starred, voted bool) model.ProjectView {
	author := row.AuthorUsername
	if author == "" {
		author = unknownAuthor
	}
	return model.ProjectView{
		Project:           row.Project,
		AuthorDisplayName: author,
		AuthorAvatarURL:   row.AuthorAvatarURL,
		StarredByViewer:   starred,
		VotedByViewer:     voted,
		PrimaryLinkURL:    row.PrimaryLink(),
		PreviewURL:        row.PreviewLink(),
	}
}

// normalizeTags trims, drops empties, and deduplicates case-insensitively
// (first spelling wins — "Go" and "go" are one tag).
func normalizeTags(tags []string) ([]string, error) {
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if len(tag) > MaxTagLength {
			return nil, apperror.ValidationFailed("tags",
				fmt.Sprintf("tags must be %d characters or less", MaxTagLength))
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, tag)
	}
	if len(result) > MaxTagCount {
		return nil, apperror.ValidationFailed("tags",
			fmt.Sprintf("at most %d tags allowed", MaxTagCount))
	}
	return result, nil
}

// normalizeLinks trims names/URLs and drops entries with no URL, preserving
// order — the first link is the primary-link fallback.
func normalizeLinks(links []model.PlatformLink) ([]model.PlatformLink, error) {
	if len(links) > MaxPlatformLinks {
		return nil, apperror.ValidationFailed("platforms",
			fmt.Sprintf("at most %d platform links allowed", MaxPlatformLinks))
	}
	result := make([]model.PlatformLink, 0, len(links))
	for _, link := range links {
		link.Name = strings.TrimSpace(link.Name)
		link.URL = strings.TrimSpace(link.URL)
		if link.URL == "" {
			continue
		}
		result = append(result, link)
	}
	return result, nil
}
