package application

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

type githubStub struct {
	profile map[string]any
	emails  []map[string]any
}

// newGitHubStub fakes the two provider endpoints the callback touches: the
// token exchange and the user/profile API.
func newGitHubStub(t *testing.T, stub githubStub) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "stub-token",
			"token_type":   "bearer",
		})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stub.profile)
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stub.emails)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGitHubAuthenticator(users *fakeUserRepo, srv *httptest.Server) *GitHubAuthenticator {
	return &GitHubAuthenticator{
		Users: users,
		OAuth: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			RedirectURL:  "http://localhost/users/github/callback",
			Scopes:       []string{"user:email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  srv.URL + "/authorize",
				TokenURL: srv.URL + "/token",
			},
		},
		APIBase: srv.URL,
	}
}

func TestGitHubCallbackCreatesUser(t *testing.T) {
	users := newFakeUserRepo()
	srv := newGitHubStub(t, githubStub{
		profile: map[string]any{"id": 42, "login": "octo", "email": "Octo@Example.com"},
	})
	g := newTestGitHubAuthenticator(users, srv)

	u, err := g.HandleCallback(context.Background(), "state", "code")
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if u.GitHubID != 42 || u.Username != "octo" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.Email != "octo@example.com" {
		t.Fatalf("expected lowercased email, got %q", u.Email)
	}
	if _, err := users.GetByGitHubID(context.Background(), 42); err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
}

func TestGitHubCallbackLinksExistingEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users)
	local, err := svc.Register(context.Background(), "octo", "octo@example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	srv := newGitHubStub(t, githubStub{
		profile: map[string]any{"id": 42, "login": "octo-gh", "email": "octo@example.com"},
	})
	g := newTestGitHubAuthenticator(users, srv)

	u, err := g.HandleCallback(context.Background(), "state", "code")
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if u.ID != local.ID {
		t.Fatalf("expected the local account linked, got %q vs %q", u.ID, local.ID)
	}
	stored, _ := users.GetByID(context.Background(), local.ID)
	if stored.GitHubID != 42 {
		t.Fatalf("link not persisted: %+v", stored)
	}
	if stored.Password == "" {
		t.Fatal("linking must not drop the local password")
	}
}

func TestGitHubCallbackReusesLinkedAccount(t *testing.T) {
	users := newFakeUserRepo()
	srv := newGitHubStub(t, githubStub{
		profile: map[string]any{"id": 42, "login": "octo", "email": "octo@example.com"},
	})
	g := newTestGitHubAuthenticator(users, srv)

	first, err := g.HandleCallback(context.Background(), "state", "code")
	if err != nil {
		t.Fatalf("first callback: %v", err)
	}
	second, err := g.HandleCallback(context.Background(), "state2", "code2")
	if err != nil {
		t.Fatalf("second callback: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected one account, got %q and %q", first.ID, second.ID)
	}
}

func TestGitHubCallbackHiddenEmailUsesPrimaryVerified(t *testing.T) {
	users := newFakeUserRepo()
	srv := newGitHubStub(t, githubStub{
		profile: map[string]any{"id": 7, "login": "shy"},
		emails: []map[string]any{
			{"email": "old@example.com", "primary": false, "verified": true},
			{"email": "shy@example.com", "primary": true, "verified": true},
		},
	})
	g := newTestGitHubAuthenticator(users, srv)

	u, err := g.HandleCallback(context.Background(), "state", "code")
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if u.Email != "shy@example.com" {
		t.Fatalf("expected the primary verified email, got %q", u.Email)
	}
}

func TestGitHubCallbackNoUsableEmailFails(t *testing.T) {
	users := newFakeUserRepo()
	srv := newGitHubStub(t, githubStub{
		profile: map[string]any{"id": 7, "login": "shy"},
		emails: []map[string]any{
			{"email": "shy@example.com", "primary": true, "verified": false},
		},
	})
	g := newTestGitHubAuthenticator(users, srv)

	if _, err := g.HandleCallback(context.Background(), "state", "code"); !errors.Is(err, ErrOAuthFailed) {
		t.Fatalf("expected ErrOAuthFailed, got %v", err)
	}
}

func TestGitHubCallbackRejectsMissingParams(t *testing.T) {
	g := newTestGitHubAuthenticator(newFakeUserRepo(), newGitHubStub(t, githubStub{
		profile: map[string]any{"id": 1, "login": "x", "email": "x@example.com"},
	}))

	cases := []struct{ state, code string }{
		{"", "code"},
		{"state", ""},
	}
	for _, tc := range cases {
		if _, err := g.HandleCallback(context.Background(), tc.state, tc.code); !errors.Is(err, ErrOAuthFailed) {
			t.Fatalf("state=%q code=%q: expected ErrOAuthFailed, got %v", tc.state, tc.code, err)
		}
	}
}
