package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parthu1029/DevShowcase/internal/auth"
	"github.com/parthu1029/DevShowcase/internal/service"
)

// ProfileHandler exposes public profile pages and the caller's own profile
// update route.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// HandleGetByUsername returns the public profile behind a profile page.
//
// HTTP: GET /api/profiles/{username}
func (h *ProfileHandler) HandleGetByUsername(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// updateProfileRequest uses pointer fields so PATCH can distinguish "field
// absent — keep the current value" from "field present but empty — clear it".
// Username is deliberately not a field: it's immutable once claimed.
type updateProfileRequest struct {
	FullName  *string `json:"fullName"`
	AvatarURL *string `json:"avatarUrl"`
	Bio       *string `json:"bio"`
}

// HandleUpdateMe updates the caller's own profile.
//
// HTTP: PATCH /api/me
// Auth: Required
func (h *ProfileHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"not_authenticated"}`, http.StatusUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid profile JSON", slog.String("error", err.Error()))
		http.Error(w, `{"error":"validation_error","message":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	// Fill absent fields from the current profile so PATCH is partial.
	current, err := h.profiles.GetByID(r.Context(), principalID)
	if err != nil {
		writeError(w, err)
		return
	}

	fullName := current.FullName
	if req.FullName != nil {
		fullName = *req.FullName
	}
	avatarURL := current.AvatarURL
	if req.AvatarURL != nil {
		avatarURL = *req.AvatarURL
	}
	bio := current.Bio
	if req.Bio != nil {
		bio = *req.Bio
	}

	profile, err := h.profiles.Update(r.Context(), principalID, fullName, avatarURL, bio)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
