package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"

	"github.com/traklab/workout-tracker/internal/domain/entity"
	repo "github.com/traklab/workout-tracker/internal/domain/repository"
)

var ErrOAuthFailed = errors.New("oauth flow failed")

const (
	githubAPIBase = "https://api.github.com"
	stateTTL      = 10 * time.Minute
)

// GitHubAuthenticator runs the redirect/callback exchange against GitHub and
// maps the returned identity onto a local User, creating or linking accounts
// as needed.
type GitHubAuthenticator struct {
	Users   repo.UserRepository
	Redis   *redis.Client
	Logger  *logrus.Logger
	OAuth   *oauth2.Config
	APIBase string // overridable for tests
}

func NewGitHubAuthenticator(users repo.UserRepository, rdb *redis.Client, logger *logrus.Logger, clientID, clientSecret, callbackURL string) *GitHubAuthenticator {
	return &GitHubAuthenticator{
		Users:  users,
		Redis:  rdb,
		Logger: logger,
		OAuth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"user:email"},
			Endpoint:     oauthgithub.Endpoint,
		},
		APIBase: githubAPIBase,
	}
}

// Enabled reports whether client credentials are configured.
func (g *GitHubAuthenticator) Enabled() bool {
	return g.OAuth.ClientID != "" && g.OAuth.ClientSecret != ""
}

func stateKey(state string) string {
	return "oauth:github:state:" + state
}

// AuthURL mints a state nonce, records it in Redis, and returns the provider
// redirect URL.
func (g *GitHubAuthenticator) AuthURL(ctx context.Context) (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	if g.Redis != nil {
		if err := g.Redis.Set(ctx, stateKey(state), "1", stateTTL).Err(); err != nil {
			return "", err
		}
	}
	return g.OAuth.AuthCodeURL(state), nil
}

// HandleCallback verifies the state nonce, exchanges the code, and resolves
// the GitHub identity to a local user. Every failure maps to ErrOAuthFailed;
// callers redirect to the login page without creating a session.
func (g *GitHubAuthenticator) HandleCallback(ctx context.Context, state, code string) (*entity.User, error) {
	if state == "" || code == "" {
		return nil, ErrOAuthFailed
	}
	if g.Redis != nil {
		n, err := g.Redis.Del(ctx, stateKey(state)).Result()
		if err != nil || n == 0 {
			return nil, ErrOAuthFailed
		}
	}

	tok, err := g.OAuth.Exchange(ctx, code)
	if err != nil {
		if g.Logger != nil {
			g.Logger.WithError(err).Warn("github code exchange failed")
		}
		return nil, ErrOAuthFailed
	}

	profile, err := g.fetchProfile(ctx, tok)
	if err != nil {
		if g.Logger != nil {
			g.Logger.WithError(err).Warn("github profile fetch failed")
		}
		return nil, ErrOAuthFailed
	}

	return g.findOrCreateUser(ctx, profile)
}

type githubProfile struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
}

func (g *GitHubAuthenticator) fetchProfile(ctx context.Context, tok *oauth2.Token) (*githubProfile, error) {
	client := g.OAuth.Client(ctx, tok)

	p := &githubProfile{}
	if err := getJSON(ctx, client, g.APIBase+"/user", p); err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, errors.New("github profile missing id")
	}

	// The public profile email may be hidden; fall back to the primary
	// verified address from the emails endpoint.
	if p.Email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(ctx, client, g.APIBase+"/user/emails", &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				p.Email = e.Email
				break
			}
		}
	}
	if p.Email == "" {
		return nil, errors.New("github account has no usable email")
	}
	p.Email = strings.ToLower(p.Email)
	return p, nil
}

func (g *GitHubAuthenticator) findOrCreateUser(ctx context.Context, p *githubProfile) (*entity.User, error) {
	if u, err := g.Users.GetByGitHubID(ctx, p.ID); err == nil {
		return u, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	// Link an existing local account with the same email.
	if u, err := g.Users.GetByEmail(ctx, p.Email); err == nil {
		u.GitHubID = p.ID
		if uErr := g.Users.Update(ctx, u); uErr != nil {
			return nil, uErr
		}
		return u, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	u := &entity.User{
		Username: p.Login,
		Email:    p.Email,
		GitHubID: p.ID,
	}
	if err := g.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api status %d for %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
