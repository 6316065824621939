package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parthu1029/DevShowcase/internal/auth"
	"github.com/parthu1029/DevShowcase/internal/model"
	"github.com/parthu1029/DevShowcase/internal/service"
)

// EngagementHandler exposes the upvote and star toggles.
//
// Both routes run the same engine with a different kind tag, so the two
// handler methods are one-line wrappers around toggle().
type EngagementHandler struct {
	engagements *service.EngagementService
	profiles    *service.ProfileService
	auths       *service.AuthService
	logger      *slog.Logger
}

// NewEngagementHandler creates an EngagementHandler.
func NewEngagementHandler(
	engagements *service.EngagementService,
	profiles *service.ProfileService,
	auths *service.AuthService,
	logger *slog.Logger,
) *EngagementHandler {
	return &EngagementHandler{
		engagements: engagements,
		profiles:    profiles,
		auths:       auths,
		logger:      logger,
	}
}

// HandleUpvote toggles the caller's upvote on a project.
//
// HTTP: POST /api/projects/{id}/upvote
// Auth: Required
// RESPONSE: {"active":true,"votes":12}
func (h *EngagementHandler) HandleUpvote(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, model.KindUpvote)
}

// HandleStar toggles the caller's star on a project.
//
// HTTP: POST /api/projects/{id}/star
// Auth: Required
// RESPONSE: {"active":true,"votes":0} — votes is unused for stars
func (h *EngagementHandler) HandleStar(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, model.KindStar)
}

// toggle is the shared body of both toggle routes.
//
// A toggle can be a brand-new user's very first action, so the caller's
// profile is ensured before the flip — the relation row references it.
func (h *EngagementHandler) toggle(w http.ResponseWriter, r *http.Request, kind model.EngagementKind) {
	principalID, ok := auth.PrincipalIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"not_authenticated"}`, http.StatusUnauthorized)
		return
	}

	principal, err := h.auths.GetPrincipalByID(r.Context(), principalID)
	if err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.profiles.EnsureProfile(r.Context(), principal)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.engagements.Toggle(r.Context(), kind, profile.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Warn("engagement toggle failed",
			slog.String("kind", string(kind)),
			slog.String("projectID", chi.URLParam(r, "id")),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
