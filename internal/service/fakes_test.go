package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/movie-platform/internal/apperror"
	"github.com/sakif/movie-platform/internal/auth"
	"github.com/sakif/movie-platform/internal/model"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================

// fakeUserRepo enforces the same uniqueness rules as the users table.
type fakeUserRepo struct {
	users  map[string]*model.User
	nextID int

	createCalls int
	// createErr is returned by the next createFails calls to Create.
	createErr   error
	createFails int
	// beforeCreate runs once at the start of the next Create.
	beforeCreate func()
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.createCalls++
	if hook := f.beforeCreate; hook != nil {
		f.beforeCreate = nil
		hook()
	}
	if f.createFails > 0 {
		f.createFails--
		return f.createErr
	}
	externalID, _ := model.ExternalIDOf(user.Credential)
	for _, u := range f.users {
		if user.Email != "" && u.Email == user.Email {
			return apperror.Conflict("email", "email is already in use")
		}
		if u.Username == user.Username {
			return apperror.Conflict("username", "username is already in use")
		}
		if id, ok := model.ExternalIDOf(u.Credential); ok && id == externalID {
			return apperror.Conflict("external_id", "external identity is already linked to another account")
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) find(match func(*model.User) bool, value string) (*model.User, error) {
	for _, u := range f.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", value)
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id }, id)
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email }, email)
}

func (f *fakeUserRepo) GetByExternalID(_ context.Context, externalID string) (*model.User, error) {
	return f.find(func(u *model.User) bool {
		id, ok := model.ExternalIDOf(u.Credential)
		return ok && id == externalID
	}, externalID)
}

func (f *fakeUserRepo) UsernameExists(_ context.Context, username, excludeID string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) UpdateNames(_ context.Context, id, firstName, lastName string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.FirstName, u.LastName = firstName, lastName
	return nil
}

func (f *fakeUserRepo) UpdateUsername(_ context.Context, id, username string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.Username = username
	return nil
}

func (f *fakeUserRepo) SetExternalID(_ context.Context, id, externalID string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	for _, other := range f.users {
		if got, ok := model.ExternalIDOf(other.Credential); ok && got == externalID && other.ID != id {
			return apperror.Conflict("external_id", "external identity is already linked to another account")
		}
	}
	u.Credential = model.WithExternalID(u.Credential, externalID)
	return nil
}

type fakeFavoriteRepo struct {
	rows   []model.Favorite
	nextID int
	err    error
}

func (f *fakeFavoriteRepo) Add(_ context.Context, favorite *model.Favorite) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, r := range f.rows {
		if r.UserID == favorite.UserID && r.MovieID == favorite.MovieID {
			return false, nil
		}
	}
	f.nextID++
	favorite.ID = fmt.Sprintf("fav-%03d", f.nextID)
	favorite.AddedAt = time.Now()
	f.rows = append(f.rows, *favorite)
	return true, nil
}

func (f *fakeFavoriteRepo) ListByUser(_ context.Context, userID string) ([]model.Favorite, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Favorite
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeFavoriteRepo) Remove(_ context.Context, userID string, movieID int64) error {
	if f.err != nil {
		return f.err
	}
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.UserID != userID || r.MovieID != movieID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

type fakeCommentRepo struct {
	rows []model.Comment
	err  error
	// usernames resolves authors the way the users join does.
	usernames map[string]string
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *model.Comment) error {
	if f.err != nil {
		return f.err
	}
	comment.ID = fmt.Sprintf("c-%d", len(f.rows)+1)
	comment.Username = f.usernames[comment.UserID]
	comment.CreatedAt = time.Now()
	f.rows = append(f.rows, *comment)
	return nil
}

func (f *fakeCommentRepo) List(_ context.Context) ([]model.Comment, error) {
	return f.rows, f.err
}

type recordingObserver struct {
	events []string
}

func (r *recordingObserver) ObserveAuth(method, outcome string) {
	r.events = append(r.events, method+":"+outcome)
}

// =========================================================================
// HELPERS
// =========================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService("service-test-secret-0123456789", time.Hour)
	require.NoError(t, err)
	return tokens
}

func newTestAccountService(t *testing.T) (*AccountService, *fakeUserRepo, *recordingObserver) {
	t.Helper()
	repo := newFakeUserRepo()
	obs := &recordingObserver{}
	svc := NewAccountService(repo, newTestTokens(t), auth.NewPasswordServiceForTest(4), discardLogger())
	svc.SetObserver(obs)
	return svc, repo, obs
}
