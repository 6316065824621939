package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parthu1029/DevShowcase/internal/auth"
	"github.com/parthu1029/DevShowcase/internal/service"
)

// CommentHandler manages project comments.
type CommentHandler struct {
	comments *service.CommentService
	auths    *service.AuthService
	logger   *slog.Logger
}

// NewCommentHandler creates a CommentHandler.
func NewCommentHandler(
	comments *service.CommentService,
	auths *service.AuthService,
	logger *slog.Logger,
) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		auths:    auths,
		logger:   logger,
	}
}

// HandleList returns a project's comments, oldest first.
//
// HTTP: GET /api/projects/{id}/comments
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListByProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

type createCommentRequest struct {
	Content string `json:"content"`
}

// HandleCreate posts a comment on a project.
//
// HTTP: POST /api/projects/{id}/comments
// Auth: Required
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"not_authenticated"}`, http.StatusUnauthorized)
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid comment JSON", slog.String("error", err.Error()))
		http.Error(w, `{"error":"validation_error","message":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	principal, err := h.auths.GetPrincipalByID(r.Context(), principalID)
	if err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Add(r.Context(), principal, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}
