package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"github.com/sakif/movie-platform/internal/model"
	"github.com/sakif/movie-platform/internal/repository"
)

var _ repository.FavoriteRepository = (*FavoriteStore)(nil)

// FavoriteStore persists model.Favorite rows in user_favorites.
type FavoriteStore struct {
	db *sqlx.DB
}

// Add inserts the favorite keyed on (UserID, MovieID). An existing row is
// left untouched and Add reports false; favorite is then not modified.
// On insert, ID and AddedAt are filled in.
//
// WHY ON CONFLICT DO NOTHING INSTEAD OF SELECT-THEN-INSERT?
// Two quick clicks can send two POSTs at once. A lookup followed by an insert
// lets both pass the lookup; the UNIQUE(user_id, movie_id) index is the only
// thing that serializes them. DO NOTHING turns the loser into a zero-row
// insert instead of a constraint error, and RowsAffected tells us which
// request won. Both PostgreSQL and SQLite accept the same statement.
func (s *FavoriteStore) Add(ctx context.Context, favorite *model.Favorite) (bool, error) {
	id := xid.New().String()
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user_favorites (id, user_id, movie_id, title, poster, overview, release_date, added_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, movie_id) DO NOTHING`,
		id,
		favorite.UserID,
		favorite.MovieID,
		favorite.Title,
		favorite.Poster,
		favorite.Overview,
		favorite.ReleaseDate,
		now,
	)
	if err != nil {
		return false, fmt.Errorf("sqlstore: adding favorite movie %d for user %s: %w", favorite.MovieID, favorite.UserID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlstore: adding favorite movie %d for user %s: %w", favorite.MovieID, favorite.UserID, err)
	}
	if n == 0 {
		return false, nil
	}

	favorite.ID = id
	favorite.AddedAt = now
	return true, nil
}

// ListByUser returns the user's favorites, most recently added first.
// ids are xids, which sort by creation time, so they break added_at ties.
func (s *FavoriteStore) ListByUser(ctx context.Context, userID string) ([]model.Favorite, error) {
	favorites := []model.Favorite{}
	err := s.db.SelectContext(ctx, &favorites,
		`SELECT id, user_id, movie_id, title, poster, overview, release_date, added_at
		 FROM user_favorites
		 WHERE user_id = $1
		 ORDER BY added_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing favorites for user %s: %w", userID, err)
	}
	return favorites, nil
}

// Remove deletes the (userID, movieID) favorite. Deleting something that is
// not there is not an error.
func (s *FavoriteStore) Remove(ctx context.Context, userID string, movieID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM user_favorites WHERE user_id = $1 AND movie_id = $2`,
		userID, movieID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: removing favorite movie %d for user %s: %w", movieID, userID, err)
	}
	return nil
}
