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

var _ repository.CommentRepository = (*CommentStore)(nil)

type CommentStore struct {
	db *sqlx.DB
}

// Create inserts comment and fills in ID, CreatedAt and the author's Username,
// so the returned value has the same shape as a row from List.
func (s *CommentStore) Create(ctx context.Context, comment *model.Comment) error {
	id := xid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: beginning comment insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO comments (id, user_id, content, created_at) VALUES ($1, $2, $3, $4)`,
		id, comment.UserID, comment.Content, now,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: inserting comment for user %s: %w", comment.UserID, err)
	}

	var username string
	if err := tx.GetContext(ctx, &username, `SELECT username FROM users WHERE id = $1`, comment.UserID); err != nil {
		return fmt.Errorf("sqlstore: loading author of comment %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: committing comment %s: %w", id, err)
	}

	comment.ID = id
	comment.Username = username
	comment.CreatedAt = now
	return nil
}

// List returns every comment with its author's username, newest first.
func (s *CommentStore) List(ctx context.Context) ([]model.Comment, error) {
	comments := []model.Comment{}
	err := s.db.SelectContext(ctx, &comments,
		`SELECT c.id, c.user_id, u.username, c.content, c.created_at
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 ORDER BY c.created_at DESC, c.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing comments: %w", err)
	}
	return comments, nil
}
