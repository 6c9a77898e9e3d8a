package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// ExternalIdentity is what an identity provider tells us about a user.
// ID is opaque to the rest of the application and is stored as the user's
// external identity reference.
type ExternalIdentity struct {
	ID          string
	Email       string
	DisplayName string
}

// githubUser is the portion of the GitHub /user API response we care about.
type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

const githubUserURL = "https://api.github.com/user"

// userAPITripAfter consecutive /user failures open the breaker.
const userAPITripAfter = 5

// GitHubProvider runs the OAuth 2.0 authorization code flow against GitHub
// and turns the result into an ExternalIdentity.
type GitHubProvider struct {
	config  *oauth2.Config
	userURL string
	breaker *gobreaker.CircuitBreaker[*githubUser]
}

// NewGitHubProvider creates a GitHubProvider with the given OAuth app credentials.
// callbackURL must match the one registered with the OAuth app exactly.
// Breaker state changes are logged to logger.
func NewGitHubProvider(clientID, clientSecret, callbackURL string, logger *slog.Logger) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		userURL: githubUserURL,
		breaker: gobreaker.NewCircuitBreaker[*githubUser](gobreaker.Settings{
			Name:        "github-user-api",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= userAPITripAfter
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			},
		}),
	}
}

// AuthURL returns the GitHub authorization URL. state is echoed back on the
// callback and must be checked against the value stored before redirecting.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the caller's GitHub identity.
// The returned ID is namespaced ("github:<numeric id>") so it cannot collide
// with references from other providers.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*ExternalIdentity, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	gh, err := p.breaker.Execute(func() (*githubUser, error) {
		return p.fetchUser(ctx, p.config.Client(ctx, oauthToken))
	})
	if err != nil {
		return nil, err
	}

	displayName := gh.Name
	if displayName == "" {
		displayName = gh.Login
	}

	return &ExternalIdentity{
		ID:          "github:" + strconv.FormatInt(gh.ID, 10),
		Email:       gh.Email,
		DisplayName: displayName,
	}, nil
}

func (p *GitHubProvider) fetchUser(ctx context.Context, client *http.Client) (*githubUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building GitHub /user request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: calling GitHub /user API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: GitHub /user API returned status %d", resp.StatusCode)
	}

	var gh githubUser
	if err := json.NewDecoder(resp.Body).Decode(&gh); err != nil {
		return nil, fmt.Errorf("auth: decoding GitHub /user response: %w", err)
	}
	if gh.ID == 0 {
		return nil, fmt.Errorf("auth: GitHub returned an invalid user (ID = 0)")
	}
	return &gh, nil
}
