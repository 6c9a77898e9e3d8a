// Package service holds the business rules of the movie platform.
//
//	Handler (HTTP) → Service (rules) → Repository (SQL)
//
// Services depend on repository interfaces, never on sqlstore directly, so
// tests run against in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/movie-platform/internal/apperror"
	"github.com/sakif/movie-platform/internal/auth"
	"github.com/sakif/movie-platform/internal/model"
	"github.com/sakif/movie-platform/internal/repository"
)

// Authentication methods and outcomes reported to an AuthObserver.
const (
	MethodPassword = "password"
	MethodExternal = "external"

	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeCreated  = "created"
)

// AuthObserver is notified of every login attempt. The metrics package
// implements it with a Prometheus counter.
type AuthObserver interface {
	ObserveAuth(method, outcome string)
}

type noopObserver struct{}

func (noopObserver) ObserveAuth(string, string) {}

// AuthResult is what a successful login returns to the client.
type AuthResult struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

// RegisterInput carries the fields of a password registration.
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// AccountService implements registration, login and profile updates.
type AccountService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	observer  AuthObserver
	logger    *slog.Logger
}

func NewAccountService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		observer:  noopObserver{},
		logger:    logger,
	}
}

// SetObserver replaces the login observer. A nil observer disables reporting.
func (s *AccountService) SetObserver(o AuthObserver) {
	if o == nil {
		o = noopObserver{}
	}
	s.observer = o
}

// Register creates a password account. Every field is required; a taken
// email or username comes back as apperror.ErrConflict with Field set.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.PublicUser, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	for _, f := range []struct{ name, value string }{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"username", in.Username},
		{"email", in.Email},
		{"password", in.Password},
	} {
		if f.value == "" {
			return nil, apperror.ValidationFailed(f.name, f.name+" is required")
		}
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperror.ValidationFailed("password", err.Error())
		}
		return nil, fmt.Errorf("service/account: hashing password: %w", err)
	}

	user := &model.User{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Username:   in.Username,
		Email:      in.Email,
		Credential: model.PasswordCredential{Hash: hash},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/account: registering %q: %w", in.Username, err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID), slog.String("username", user.Username))

	public := user.Public()
	return &public, nil
}

// Login checks an email/password pair and issues a token.
//
// All credential failures map to 400: unknown email, an account without a
// password, and a wrong password. A missing password is a validation error.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.observer.ObserveAuth(MethodPassword, OutcomeRejected)
			return nil, apperror.UnknownAccount(email)
		}
		s.observer.ObserveAuth(MethodPassword, OutcomeError)
		return nil, fmt.Errorf("service/account: looking up %q: %w", email, err)
	}

	hash, ok := model.PasswordHashOf(user.Credential)
	if !ok {
		s.observer.ObserveAuth(MethodPassword, OutcomeRejected)
		return nil, apperror.InvalidCredentials("password", "this account has no password; sign in with your identity provider")
	}

	if err := s.passwords.Verify(hash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.observer.ObserveAuth(MethodPassword, OutcomeRejected)
			return nil, apperror.InvalidCredentials("password", "invalid password")
		}
		s.observer.ObserveAuth(MethodPassword, OutcomeError)
		return nil, fmt.Errorf("service/account: verifying password for %s: %w", user.ID, err)
	}

	result, err := s.issue(user)
	if err != nil {
		s.observer.ObserveAuth(MethodPassword, OutcomeError)
		return nil, err
	}
	s.observer.ObserveAuth(MethodPassword, OutcomeSuccess)
	return result, nil
}

// ExternalLogin is an identity already verified by an external provider.
type ExternalLogin struct {
	ExternalID  string
	Email       string
	DisplayName string
}

// LoginOrCreateByExternalIdentity signs in the account linked to
// in.ExternalID, creating it on first sight. Missing names on an existing
// account are backfilled from the display name.
func (s *AccountService) LoginOrCreateByExternalIdentity(ctx context.Context, in ExternalLogin) (*AuthResult, error) {
	in.ExternalID = strings.TrimSpace(in.ExternalID)
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.ExternalID == "" {
		return nil, apperror.ValidationFailed("external_id", "external_id is required")
	}

	user, err := s.users.GetByExternalID(ctx, in.ExternalID)
	if errors.Is(err, apperror.ErrNotFound) {
		created, createErr := s.createExternalUser(ctx, in)
		if createErr == nil {
			s.observer.ObserveAuth(MethodExternal, OutcomeCreated)
			return s.issue(created)
		}
		if !errors.Is(createErr, apperror.ErrConflict) {
			s.observer.ObserveAuth(MethodExternal, outcomeOf(createErr))
			return nil, createErr
		}

		// WHY LOOK AGAIN AFTER A CONFLICT?
		// Two first logins for the same identity can both miss the lookup
		// above. The loser's insert then trips a unique index (external_id,
		// or email/username first, depending on which the database checks).
		// If the identity now exists, the winner created it and this caller
		// simply signs in as that user. Otherwise the conflict is real.
		user, err = s.users.GetByExternalID(ctx, in.ExternalID)
		if errors.Is(err, apperror.ErrNotFound) {
			s.observer.ObserveAuth(MethodExternal, OutcomeRejected)
			return nil, createErr
		}
	}
	if err != nil {
		s.observer.ObserveAuth(MethodExternal, OutcomeError)
		return nil, fmt.Errorf("service/account: looking up external id: %w", err)
	}

	if err := s.backfillNames(ctx, user, in.DisplayName); err != nil {
		s.observer.ObserveAuth(MethodExternal, OutcomeError)
		return nil, err
	}
	s.observer.ObserveAuth(MethodExternal, OutcomeSuccess)
	return s.issue(user)
}

func (s *AccountService) createExternalUser(ctx context.Context, in ExternalLogin) (*model.User, error) {
	first, last := splitDisplayName(in.DisplayName)
	if first == "" && last == "" {
		first, last = namesFromEmail(in.Email)
	}

	user := &model.User{
		FirstName:  first,
		LastName:   last,
		Username:   baseUsername(in.Email),
		Email:      in.Email,
		Credential: model.ExternalCredential{ExternalID: in.ExternalID},
	}

	err := s.users.Create(ctx, user)
	if isConflictOn(err, "username") {
		// One retry with a random suffix; a second collision is reported.
		user.Username = withSuffix(user.Username)
		err = s.users.Create(ctx, user)
	}
	if err != nil {
		return nil, fmt.Errorf("service/account: creating external user: %w", err)
	}

	s.logger.Info("user created from external identity",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

func (s *AccountService) backfillNames(ctx context.Context, user *model.User, displayName string) error {
	if user.FirstName != "" && user.LastName != "" {
		return nil
	}
	first, last := splitDisplayName(displayName)
	if user.FirstName != "" {
		first = user.FirstName
	}
	if user.LastName != "" {
		last = user.LastName
	}
	if first == user.FirstName && last == user.LastName {
		return nil
	}

	if err := s.users.UpdateNames(ctx, user.ID, first, last); err != nil {
		return fmt.Errorf("service/account: backfilling names for %s: %w", user.ID, err)
	}
	user.FirstName, user.LastName = first, last
	return nil
}

// CheckUsernameAvailable reports whether username is already taken.
func (s *AccountService) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, apperror.ValidationFailed("username", "username is required")
	}
	exists, err := s.users.UsernameExists(ctx, username, "")
	if err != nil {
		return false, fmt.Errorf("service/account: checking username: %w", err)
	}
	return exists, nil
}

// GetSelf returns the caller's own profile.
func (s *AccountService) GetSelf(ctx context.Context, userID string) (*model.PublicUser, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/account: fetching user %s: %w", userID, err)
	}
	public := user.Public()
	return &public, nil
}

// UpdateUsername renames the caller. Keeping the current name is allowed.
func (s *AccountService) UpdateUsername(ctx context.Context, userID, username string) (*model.PublicUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	taken, err := s.users.UsernameExists(ctx, username, userID)
	if err != nil {
		return nil, fmt.Errorf("service/account: checking username: %w", err)
	}
	if taken {
		return nil, apperror.Conflict("username", "username is already in use")
	}

	// The store still enforces uniqueness if a concurrent rename wins the race.
	if err := s.users.UpdateUsername(ctx, userID, username); err != nil {
		return nil, fmt.Errorf("service/account: updating username for %s: %w", userID, err)
	}
	return s.GetSelf(ctx, userID)
}

// LinkExternalIdentity attaches an external identity to an existing account.
// Linking the identity the account already has is a no-op.
func (s *AccountService) LinkExternalIdentity(ctx context.Context, userID, externalID string) (*model.PublicUser, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperror.ValidationFailed("external_id", "external_id is required")
	}

	if err := s.users.SetExternalID(ctx, userID, externalID); err != nil {
		return nil, fmt.Errorf("service/account: linking external identity to %s: %w", userID, err)
	}

	s.logger.Info("external identity linked", slog.String("userID", userID))
	return s.GetSelf(ctx, userID)
}

func (s *AccountService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/account: generating token for %s: %w", user.ID, err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

func isConflictOn(err error, field string) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && errors.Is(appErr, apperror.ErrConflict) && appErr.Field == field
}

func outcomeOf(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return OutcomeRejected
	}
	return OutcomeError
}
