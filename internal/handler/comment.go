package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/movie-platform/internal/apperror"
	"github.com/sakif/movie-platform/internal/auth"
	"github.com/sakif/movie-platform/internal/service"
)

type CommentHandler struct {
	responder
	comments *service.CommentService
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger, showDetail bool) *CommentHandler {
	return &CommentHandler{
		responder: responder{logger: logger, showDetail: showDetail},
		comments:  comments,
	}
}

type addCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// HTTP: POST /comments (authenticated)
func (h *CommentHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req addCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	comment, err := h.comments.Add(r.Context(), userID, req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, comment)
}

// HTTP: GET /comments (public)
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, comments)
}
