package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/traklab/workout-tracker/internal/domain/entity"
	repo "github.com/traklab/workout-tracker/internal/domain/repository"
	"github.com/traklab/workout-tracker/pkg/helpers"
)

type fakeUserRepo struct {
	users  map[string]*entity.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	r.nextID++
	u.ID = fmt.Sprintf("u-%d", r.nextID)
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) GetByIdentifier(_ context.Context, identifier string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Username == identifier || u.Email == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) GetByGitHubID(_ context.Context, githubID int64) (*entity.User, error) {
	for _, u := range r.users {
		if u.GitHubID == githubID && githubID != 0 {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func newTestAuthService(users repo.UserRepository) *AuthService {
	sessions := helpers.NewSessionManager("test-secret", time.Hour)
	return NewAuthService(users, sessions, nil, nil, nil, "Workout Tracker", time.Hour, false)
}

func TestRegisterHashesPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users)

	u, err := svc.Register(context.Background(), "alice", "Alice@Example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", u.Email)
	}
	stored, _ := users.GetByID(context.Background(), u.ID)
	if stored.Password == "password123" || stored.Password == "" {
		t.Fatal("password stored without hashing")
	}
	if !helpers.CompareHashAndPassword(stored.Password, "password123") {
		t.Fatal("stored hash does not verify the original password")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users)

	if _, err := svc.Register(context.Background(), "alice", "alice@example.com", "password123"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), "alice2", "alice@example.com", "different11")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticateByUsernameAndEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users)
	if _, err := svc.Register(context.Background(), "alice", "alice@example.com", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, identifier := range []string{"alice", "alice@example.com"} {
		u, err := svc.Authenticate(context.Background(), identifier, "password123")
		if err != nil {
			t.Fatalf("authenticate %q: %v", identifier, err)
		}
		if u.Username != "alice" {
			t.Fatalf("authenticate %q: got user %q", identifier, u.Username)
		}
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users)
	if _, err := svc.Register(context.Background(), "alice", "alice@example.com", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		name       string
		identifier string
		password   string
	}{
		{"wrong password", "alice", "wrongwrong"},
		{"unknown user", "nobody", "password123"},
	}
	for _, tc := range cases {
		if _, err := svc.Authenticate(context.Background(), tc.identifier, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", tc.name, err)
		}
	}
}

func TestAuthenticateRejectsOAuthOnlyAccount(t *testing.T) {
	users := newFakeUserRepo()
	if err := users.Create(context.Background(), &entity.User{
		Username: "ghuser",
		Email:    "gh@example.com",
		GitHubID: 42,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	svc := newTestAuthService(users)

	if _, err := svc.Authenticate(context.Background(), "ghuser", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users)
	u, err := svc.Register(context.Background(), "alice", "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	sess, err := svc.IssueSession(context.Background(), u)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	if sess.Token == "" || !sess.Expiry.After(time.Now()) {
		t.Fatalf("unusable session: %+v", sess)
	}

	got, err := svc.CurrentUser(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if got.UserID != u.ID || got.Username != "alice" {
		t.Fatalf("resolved wrong identity: %+v", got)
	}
}

func TestCurrentUserRejectsGarbageToken(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	if _, err := svc.CurrentUser(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
