package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/movie-platform/internal/apperror"
	"github.com/sakif/movie-platform/internal/auth"
	"github.com/sakif/movie-platform/internal/service"
)

const stateCookie = "oauth_state"

// IdentityProvider runs an OAuth code flow. auth.GitHubProvider implements it.
type IdentityProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.ExternalIdentity, error)
}

// AuthHandler serves the /auth routes.
//
// DEPENDENCY CHAIN:
//   - accounts *service.AccountService → every login path, and the only place tokens are issued
//   - provider IdentityProvider        → optional GitHub code exchange; nil disables those routes
//
// HANDLER RESPONSIBILITIES:
//   - POST /auth/register        password registration
//   - POST /auth/login           email + password login
//   - POST /auth/firebase-login  login with an identity the client already verified
//   - GET  /auth/github/login    redirect to GitHub (when configured)
//   - GET  /auth/github/callback complete the GitHub flow
type AuthHandler struct {
	responder
	accounts *service.AccountService
	provider IdentityProvider
}

// NewAuthHandler creates an AuthHandler. provider may be nil, in which case
// the GitHub routes answer 404.
func NewAuthHandler(accounts *service.AccountService, provider IdentityProvider, logger *slog.Logger, showDetail bool) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger, showDetail: showDetail},
		accounts:  accounts,
		provider:  provider,
	}
}

type registerRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name"  validate:"required,max=100"`
	Username  string `json:"username"   validate:"required,max=50"`
	Email     string `json:"email"      validate:"required,email,max=254"`
	Password  string `json:"password"   validate:"required"`
}

// HandleRegister creates a password account.
//
// HTTP: POST /auth/register → 200 {"user": {...}}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"user": user})
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin checks an email/password pair.
//
// HTTP: POST /auth/login → 200 {"token": "...", "user": {...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}

// externalLoginRequest accepts firebase_uid as an older name for external_id.
type externalLoginRequest struct {
	ExternalID  string `json:"external_id"`
	FirebaseUID string `json:"firebase_uid"`
	Email       string `json:"email"        validate:"omitempty,email,max=254"`
	DisplayName string `json:"display_name" validate:"max=200"`
}

func (req externalLoginRequest) id() string {
	if req.ExternalID != "" {
		return req.ExternalID
	}
	return req.FirebaseUID
}

// HandleExternalLogin signs in (or creates) the account linked to an
// external identity.
//
// HTTP: POST /auth/firebase-login → 200 {"token": "...", "user": {...}}
func (h *AuthHandler) HandleExternalLogin(w http.ResponseWriter, r *http.Request) {
	var req externalLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.accounts.LoginOrCreateByExternalIdentity(r.Context(), service.ExternalLogin{
		ExternalID:  req.id(),
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}

// HandleGitHubLogin redirects to the provider's consent page.
//
// CSRF PROTECTION VIA STATE:
// A random state is stored in a short-lived HttpOnly cookie and sent to
// GitHub. The callback only proceeds when GitHub echoes the same value back,
// which proves this server started the flow for this browser.
//
// HTTP: GET /auth/github/login → 307
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		NotFound(w, r)
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/github",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   !h.showDetail,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback exchanges the code and logs the identity in through
// the same path as HandleExternalLogin.
//
// HTTP: GET /auth/github/callback?code=...&state=... → 200 {"token": "...", "user": {...}}
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		NotFound(w, r)
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || r.URL.Query().Get("state") != cookie.Value {
		h.logger.Warn("oauth callback: state mismatch")
		h.writeError(w, r, apperror.ValidationFailed("state", "invalid OAuth state"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth/github", MaxAge: -1})

	if denied := r.URL.Query().Get("error"); denied != "" {
		h.writeError(w, r, apperror.ValidationFailed("code", "authorization was denied: "+denied))
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		h.writeError(w, r, apperror.ValidationFailed("code", "code is required"))
		return
	}

	identity, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.accounts.LoginOrCreateByExternalIdentity(r.Context(), service.ExternalLogin{
		ExternalID:  identity.ID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}
