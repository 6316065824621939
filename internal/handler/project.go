package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parthu1029/DevShowcase/internal/auth"
	"github.com/parthu1029/DevShowcase/internal/model"
	"github.com/parthu1029/DevShowcase/internal/service"
)

// ProjectHandler manages the project listing and submissions.
//
// WHY A SEPARATE HANDLER?
// Each handler struct "owns" one area of functionality. All project routes
// live here; engagement toggles live in EngagementHandler even though they
// hang off /api/projects/{id}/... — they are a different concern with a
// different service behind them.
type ProjectHandler struct {
	projects *service.ProjectService
	auths    *service.AuthService
	logger   *slog.Logger
}

// NewProjectHandler creates a ProjectHandler.
func NewProjectHandler(
	projects *service.ProjectService,
	auths *service.AuthService,
	logger *slog.Logger,
) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		auths:    auths,
		logger:   logger,
	}
}

// HandleList returns the enriched project listing.
//
// HTTP: GET /api/projects
// Auth: Optional — anonymous callers get the listing with all viewer flags
// false; authenticated callers get their own starred/voted flags set.
//
// The principal ID doubles as the profile ID (a profile shares its
// principal's ID), so no extra lookup is needed to resolve the viewer.
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.PrincipalIDFromContext(r.Context())

	views, err := h.projects.List(r.Context(), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// HandleGet returns a single project with its author resolved and the vote
// count reconciled.
//
// HTTP: GET /api/projects/{id}
func (h *ProjectHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// createProjectRequest is the JSON body for POST /api/projects.
type createProjectRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Tags        []string             `json:"tags"`
	Platforms   []model.PlatformLink `json:"platforms"`
}

// HandleCreate submits a new project.
//
// HTTP: POST /api/projects
// Auth: Required
//
// The service needs the full principal (not just the ID) because a first-time
// author's profile is provisioned from the principal's identity hints.
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"not_authenticated"}`, http.StatusUnauthorized)
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid project JSON", slog.String("error", err.Error()))
		http.Error(w, `{"error":"validation_error","message":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	principal, err := h.auths.GetPrincipalByID(r.Context(), principalID)
	if err != nil {
		writeError(w, err)
		return
	}

	project, err := h.projects.Create(r.Context(), principal, req.Title, req.Description, req.Tags, req.Platforms)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

// HandleDelete removes a project. Only the owner may delete.
//
// HTTP: DELETE /api/projects/{id}
// Auth: Required
func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"not_authenticated"}`, http.StatusUnauthorized)
		return
	}

	if err := h.projects.Delete(r.Context(), principalID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent) // 204 — successful deletion, no body
}
