package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/movie-platform/internal/apperror"
	"github.com/sakif/movie-platform/internal/auth"
	"github.com/sakif/movie-platform/internal/service"
)

// FavoriteHandler serves /favorites. Every route sits behind RequireAuth.
type FavoriteHandler struct {
	responder
	favorites *service.FavoriteService
}

func NewFavoriteHandler(favorites *service.FavoriteService, logger *slog.Logger, showDetail bool) *FavoriteHandler {
	return &FavoriteHandler{
		responder: responder{logger: logger, showDetail: showDetail},
		favorites: favorites,
	}
}

type addFavoriteRequest struct {
	MovieID     flexInt `json:"movie_id"     validate:"required,gt=0"`
	Title       string  `json:"title"        validate:"required,max=500"`
	Poster      string  `json:"poster"       validate:"max=500"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date" validate:"max=32"`
}

// HandleAdd saves a movie. The body is the new favorite, or null when the
// movie was already saved.
//
// HTTP: POST /favorites
//
// WHY 200 null AND NOT 409?
// The client's heart button sends the same POST whether or not the movie is
// already saved. A second save is not an error from its point of view, and
// the favorites list is the same afterwards either way. Answering null tells
// it nothing new was created without making it handle an error branch.
func (h *FavoriteHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req addFavoriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	favorite, err := h.favorites.Add(r.Context(), userID, service.FavoriteInput{
		MovieID:     int64(req.MovieID),
		Title:       req.Title,
		Poster:      req.Poster,
		Overview:    req.Overview,
		ReleaseDate: req.ReleaseDate,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, favorite)
}

// HandleList returns the caller's favorites, newest first.
//
// HTTP: GET /favorites
func (h *FavoriteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperror.Unauthorized("valid authentication required"))
		return
	}

	favorites, err := h.favorites.List(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, favorites)
}

// HandleRemove deletes a saved movie. It succeeds whether or not the movie
// was in the list.
//
// HTTP: DELETE /favorites/{movieId} → 200 {"success": true}
func (h *FavoriteHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperror.Unauthorized("valid authentication required"))
		return
	}

	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieId"), 10, 64)
	if err != nil {
		h.writeError(w, r, apperror.ValidationFailed("movieId", "movieId must be an integer"))
		return
	}

	if err := h.favorites.Remove(r.Context(), userID, movieID); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}
