package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"github.com/sakif/movie-platform/internal/apperror"
	"github.com/sakif/movie-platform/internal/model"
	"github.com/sakif/movie-platform/internal/repository"
)

var _ repository.UserRepository = (*UserStore)(nil)

// UserStore persists model.User rows in the users table.
type UserStore struct {
	db *sqlx.DB
}

// userRow is the table layout. The nullable password_hash / external_id
// columns are folded into model.Credential by toModel.
type userRow struct {
	ID           string         `db:"id"`
	FirstName    string         `db:"first_name"`
	LastName     string         `db:"last_name"`
	Username     string         `db:"username"`
	Email        sql.NullString `db:"email"`
	PasswordHash sql.NullString `db:"password_hash"`
	ExternalID   sql.NullString `db:"external_id"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

const userColumns = `id, first_name, last_name, username, email, password_hash, external_id, created_at, updated_at`

func (r userRow) toModel() *model.User {
	return &model.User{
		ID:         r.ID,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Username:   r.Username,
		Email:      r.Email.String,
		Credential: model.NewCredential(r.PasswordHash.String, r.ExternalID.String),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// nullable maps "" to SQL NULL so UNIQUE columns accept any number of blanks.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create inserts a new user and fills in ID, CreatedAt and UpdatedAt.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	id := xid.New().String()
	hash, _ := model.PasswordHashOf(user.Credential)
	externalID, _ := model.ExternalIDOf(user.Credential)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, first_name, last_name, username, email, password_hash, external_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id,
		user.FirstName,
		user.LastName,
		user.Username,
		nullable(user.Email),
		nullable(hash),
		nullable(externalID),
		now,
		now,
	)
	if err != nil {
		if conflict := userConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("sqlstore: inserting user %q: %w", user.Username, err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByID returns apperror.ErrNotFound if no user has that ID.
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.getOne(ctx, "id", id, `SELECT `+userColumns+` FROM users WHERE id = $1`)
}

// GetByEmail returns apperror.ErrNotFound if no user has that email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getOne(ctx, "email", email, `SELECT `+userColumns+` FROM users WHERE email = $1`)
}

// GetByExternalID returns apperror.ErrNotFound if no user is linked to externalID.
func (s *UserStore) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	return s.getOne(ctx, "external id", externalID, `SELECT `+userColumns+` FROM users WHERE external_id = $1`)
}

func (s *UserStore) getOne(ctx context.Context, by, value, query string) (*model.User, error) {
	var row userRow
	if err := s.db.GetContext(ctx, &row, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", value)
		}
		return nil, fmt.Errorf("sqlstore: getting user by %s: %w", by, err)
	}
	return row.toModel(), nil
}

func (s *UserStore) UsernameExists(ctx context.Context, username, excludeID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND id <> $2)`,
		username, excludeID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlstore: checking username %q: %w", username, err)
	}
	return exists, nil
}

func (s *UserStore) UpdateNames(ctx context.Context, id, firstName, lastName string) error {
	return s.update(ctx, id,
		`UPDATE users SET first_name = $1, last_name = $2, updated_at = $3 WHERE id = $4`,
		firstName, lastName, time.Now().UTC(), id,
	)
}

// UpdateUsername returns apperror.ErrConflict if the username is taken.
func (s *UserStore) UpdateUsername(ctx context.Context, id, username string) error {
	return s.update(ctx, id,
		`UPDATE users SET username = $1, updated_at = $2 WHERE id = $3`,
		username, time.Now().UTC(), id,
	)
}

// SetExternalID links an external identity to the user. Setting the value the
// user already has is a no-op; a value owned by another user is a conflict.
func (s *UserStore) SetExternalID(ctx context.Context, id, externalID string) error {
	return s.update(ctx, id,
		`UPDATE users SET external_id = $1, updated_at = $2 WHERE id = $3`,
		externalID, time.Now().UTC(), id,
	)
}

// update runs a single-row UPDATE and maps "no row" to NotFound and unique
// violations to Conflict.
func (s *UserStore) update(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if conflict := userConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("sqlstore: updating user %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: updating user %s: %w", id, err)
	}
	if n == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// userConflict converts a unique violation on users into an apperror.Conflict.
func userConflict(err error) error {
	column, ok := uniqueViolation(err, "users")
	if !ok {
		return nil
	}
	switch column {
	case "email":
		return apperror.Conflict("email", "email is already in use")
	case "username":
		return apperror.Conflict("username", "username is already in use")
	case "external_id":
		return apperror.Conflict("external_id", "external identity is already linked to another account")
	default:
		return apperror.Conflict(column, "unique field violation")
	}
}
