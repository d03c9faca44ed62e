package repository

import (
	"context"

	"github.com/traklab/workout-tracker/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByIdentifier resolves a login identifier that may be either a
	// username or an email address.
	GetByIdentifier(ctx context.Context, identifier string) (*entity.User, error)
	GetByGitHubID(ctx context.Context, githubID int64) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
