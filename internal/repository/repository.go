// Package repository declares the storage contracts the service layer depends on.
// The sqlstore subpackage implements them on top of database/sql.
package repository

import (
	"context"

	"github.com/sakif/movie-platform/internal/model"
)

type UserRepository interface {
	// Create inserts user, filling in ID and timestamps. A duplicate email,
	// username or external ID yields an apperror.Conflict naming the field.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)
	// UsernameExists reports whether a user other than excludeID holds username.
	// Pass an empty excludeID to check against every user.
	UsernameExists(ctx context.Context, username, excludeID string) (bool, error)
	UpdateNames(ctx context.Context, id, firstName, lastName string) error
	UpdateUsername(ctx context.Context, id, username string) error
	SetExternalID(ctx context.Context, id, externalID string) error
}

type FavoriteRepository interface {
	// Add inserts favorite unless (UserID, MovieID) already exists.
	// It reports whether a row was written.
	Add(ctx context.Context, favorite *model.Favorite) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.Favorite, error)
	Remove(ctx context.Context, userID string, movieID int64) error
}

type CommentRepository interface {
	// Create inserts comment, filling in ID, CreatedAt and the author's Username.
	Create(ctx context.Context, comment *model.Comment) error
	List(ctx context.Context) ([]model.Comment, error)
}
