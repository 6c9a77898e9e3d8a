package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/movie-platform/internal/apperror"
	"github.com/sakif/movie-platform/internal/model"
	"github.com/sakif/movie-platform/internal/repository"
)

// FavoriteInput is the catalog data a client sends when saving a movie.
type FavoriteInput struct {
	MovieID     int64
	Title       string
	Poster      string
	Overview    string
	ReleaseDate string
}

// FavoriteService manages a user's saved movies. Every method is scoped
// to the userID taken from the bearer token; there is no way to touch
// another user's list.
type FavoriteService struct {
	repo   repository.FavoriteRepository
	logger *slog.Logger
}

func NewFavoriteService(repo repository.FavoriteRepository, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{repo: repo, logger: logger}
}

// Add saves a movie. Saving one that is already in the list changes nothing
// and returns (nil, nil).
func (s *FavoriteService) Add(ctx context.Context, userID string, in FavoriteInput) (*model.Favorite, error) {
	if in.MovieID <= 0 {
		return nil, apperror.ValidationFailed("movie_id", "movie_id must be a positive integer")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}

	favorite := &model.Favorite{
		UserID:      userID,
		MovieID:     in.MovieID,
		Title:       title,
		Poster:      in.Poster,
		Overview:    in.Overview,
		ReleaseDate: in.ReleaseDate,
	}

	added, err := s.repo.Add(ctx, favorite)
	if err != nil {
		return nil, fmt.Errorf("service/favorite: adding movie %d: %w", in.MovieID, err)
	}
	if !added {
		return nil, nil
	}

	s.logger.Debug("favorite added",
		slog.String("userID", userID),
		slog.Int64("movieID", in.MovieID),
	)
	return favorite, nil
}

// List returns the user's favorites, newest first. Never nil.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]model.Favorite, error) {
	favorites, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/favorite: listing for %s: %w", userID, err)
	}
	if favorites == nil {
		favorites = []model.Favorite{}
	}
	return favorites, nil
}

// Remove drops a movie from the list. Removing one that is not there succeeds.
func (s *FavoriteService) Remove(ctx context.Context, userID string, movieID int64) error {
	if err := s.repo.Remove(ctx, userID, movieID); err != nil {
		return fmt.Errorf("service/favorite: removing movie %d: %w", movieID, err)
	}
	return nil
}
