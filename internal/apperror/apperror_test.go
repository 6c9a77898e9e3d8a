package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinels(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		matches []error
		misses  []error
	}{
		{"not found", NotFound("user", "abc123"), []error{ErrNotFound}, []error{ErrValidation, ErrInvalidCredentials}},
		{"validation", ValidationFailed("username", "username is required"), []error{ErrValidation}, []error{ErrConflict}},
		{"conflict", Conflict("email", "email is already in use"), []error{ErrConflict}, []error{ErrValidation}},
		{"forbidden", Forbidden("not yours"), []error{ErrForbidden}, []error{ErrUnauthorized}},
		{"unauthorized", Unauthorized("token expired"), []error{ErrUnauthorized}, []error{ErrForbidden}},
		{"invalid credentials", InvalidCredentials("password", "invalid password"), []error{ErrInvalidCredentials}, []error{ErrNotFound}},
		{"unknown account", UnknownAccount("ana@x.com"), []error{ErrInvalidCredentials, ErrNotFound}, []error{ErrConflict}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, target := range tc.matches {
				assert.ErrorIs(t, tc.err, target)
			}
			for _, target := range tc.misses {
				assert.NotErrorIs(t, tc.err, target)
			}
		})
	}
}

func TestMessagesAndFields(t *testing.T) {
	assert.Equal(t, "user not found with id abc123", NotFound("user", "abc123").Error())

	v := ValidationFailed("email", "invalid email format")
	assert.Equal(t, "invalid email format", v.Error())
	assert.Equal(t, "email", v.Field)

	assert.Equal(t, "username", Conflict("username", "taken").Field)
	assert.Equal(t, "email", UnknownAccount("ana@x.com").Field)
	assert.Empty(t, Unauthorized("missing token").Field)
}

func TestSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("creating user: %w", Conflict("email", "email is already in use"))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "email", appErr.Field)
	assert.ErrorIs(t, err, ErrConflict)
}
