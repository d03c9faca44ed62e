package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/traklab/workout-tracker/internal/domain/entity"
	repo "github.com/traklab/workout-tracker/internal/domain/repository"
	"github.com/traklab/workout-tracker/pkg/helpers"
	"github.com/traklab/workout-tracker/pkg/mailer"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService owns registration, credential checks, and the Redis-backed
// session lifecycle.
type AuthService struct {
	Users       repo.UserRepository
	Sessions    *helpers.SessionManager
	Redis       *redis.Client
	Logger      *logrus.Logger
	Pub         *helpers.RabbitPublisher
	AppName     string
	SessionTTL  time.Duration
	MailEnabled bool
}

func NewAuthService(users repo.UserRepository, sessions *helpers.SessionManager, rdb *redis.Client, logger *logrus.Logger, pub *helpers.RabbitPublisher, appName string, sessionTTL time.Duration, mailEnabled bool) *AuthService {
	return &AuthService{
		Users:       users,
		Sessions:    sessions,
		Redis:       rdb,
		Logger:      logger,
		Pub:         pub,
		AppName:     appName,
		SessionTTL:  sessionTTL,
		MailEnabled: mailEnabled,
	}
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Register hashes the password and creates the account. The hash always
// completes before the user row is written. A duplicate email yields
// ErrEmailTaken so the form can surface it distinctly.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{Username: username, Email: email, Password: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.sendWelcome(ctx, u)
	return u, nil
}

// Authenticate validates an identifier (username or email) and password.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*entity.User, error) {
	u, err := s.Users.GetByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	// OAuth-only accounts have no local password
	if u.Password == "" || !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Session is the identity attached to a request after middleware resolution.
type Session struct {
	Token    string
	Expiry   time.Time
	UserID   string
	Username string
	Email    string
}

// IssueSession generates a signed session token and records the session
// hash in Redis.
func (s *AuthService) IssueSession(ctx context.Context, u *entity.User) (*Session, error) {
	sid := uuid.NewString()
	token, exp, err := s.Sessions.Generate(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate session token failed")
		}
		return nil, err
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    u.ID,
			"username":   u.Username,
			"email":      u.Email,
			"sid":        sid,
			"created_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, s.SessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			if s.Logger != nil {
				s.Logger.WithError(rErr).WithField("key", key).Error("redis session write failed")
			}
			return nil, rErr
		}
	}

	return &Session{Token: token, Expiry: exp, UserID: u.ID, Username: u.Username, Email: u.Email}, nil
}

// CurrentUser resolves a session token to its identity. The token's session
// id must match the live Redis record, so logout invalidates outstanding
// tokens immediately.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*Session, error) {
	claims, err := s.Sessions.Parse(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if s.Redis != nil {
		key := sessionKey(claims.UserID)
		data, rErr := s.Redis.HGetAll(ctx, key).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return nil, ErrInvalidCredentials
		}
		return &Session{
			UserID:   claims.UserID,
			Username: data["username"],
			Email:    data["email"],
		}, nil
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	return &Session{UserID: u.ID, Username: u.Username, Email: u.Email}, nil
}

// Logout drops the server-side session record.
func (s *AuthService) Logout(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, sessionKey(userID)).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("redis session delete failed")
	}
}

func (s *AuthService) sendWelcome(ctx context.Context, u *entity.User) {
	if s.Pub == nil || !s.MailEnabled {
		return
	}
	job := mailer.WelcomeEmail(u.Email, u.Username, s.AppName)
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("welcome email enqueue failed")
	}
}
