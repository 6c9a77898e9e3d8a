package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/movie-platform/internal/apperror"
	"github.com/sakif/movie-platform/internal/auth"
	"github.com/sakif/movie-platform/internal/service"
)

type UserHandler struct {
	responder
	accounts *service.AccountService
}

func NewUserHandler(accounts *service.AccountService, logger *slog.Logger, showDetail bool) *UserHandler {
	return &UserHandler{
		responder: responder{logger: logger, showDetail: showDetail},
		accounts:  accounts,
	}
}

// HandleCheckUsername reports whether a username is taken.
//
// HTTP: GET /users/check-username?username=analee → 200 {"exists": true}
func (h *UserHandler) HandleCheckUsername(w http.ResponseWriter, r *http.Request) {
	exists, err := h.accounts.CheckUsernameAvailable(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]bool{"exists": exists})
}

// HandleMe returns the caller's profile.
//
// HTTP: GET /users/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperror.Unauthorized("valid authentication required"))
		return
	}

	user, err := h.accounts.GetSelf(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, user)
}

type updateUsernameRequest struct {
	Username string `json:"username" validate:"required,max=50"`
}

// HandleUpdateMe renames the caller.
//
// HTTP: PATCH /users/me {"username": "..."}
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req updateUsernameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.accounts.UpdateUsername(r.Context(), userID, req.Username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, user)
}

type linkRequest struct {
	ExternalID  string `json:"external_id"`
	FirebaseUID string `json:"firebase_uid"`
}

// HandleLinkExternalIdentity attaches an external identity to the caller's
// own account.
//
// WHY LOOK UP {id} BEFORE COMPARING IT TO THE CALLER?
// An {id} that names nobody is a 404 whoever asks. Only an existing account
// that belongs to someone else is a 403.
//
// HTTP: PATCH /users/{id}/firebase-uid {"external_id": "..."}
func (h *UserHandler) HandleLinkExternalIdentity(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperror.Unauthorized("valid authentication required"))
		return
	}
	if target := chi.URLParam(r, "id"); target != userID {
		if _, err := h.accounts.GetSelf(r.Context(), target); err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeError(w, r, apperror.Forbidden("you can only link an identity to your own account"))
		return
	}

	var req linkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	externalID := req.ExternalID
	if externalID == "" {
		externalID = req.FirebaseUID
	}

	user, err := h.accounts.LinkExternalIdentity(r.Context(), userID, externalID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, user)
}
