package sqlstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolation_Postgres(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantCol string
		wantOK  bool
	}{
		{
			name:    "constraint name",
			err:     &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"},
			wantCol: "email",
			wantOK:  true,
		},
		{
			name:    "multi-word column",
			err:     fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_external_id_key"}),
			wantCol: "external_id",
			wantOK:  true,
		},
		{
			name:    "detail fallback",
			err:     &pgconn.PgError{Code: "23505", ConstraintName: "custom_idx", Detail: "Key (username)=(ana) already exists."},
			wantCol: "username",
			wantOK:  true,
		},
		{
			name:   "other sqlstate",
			err:    &pgconn.PgError{Code: "23503", ConstraintName: "users_email_key"},
			wantOK: false,
		},
		{
			name:   "not a database error",
			err:    errors.New("boom"),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, ok := uniqueViolation(tt.err, "users")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCol, col)
		})
	}
}
