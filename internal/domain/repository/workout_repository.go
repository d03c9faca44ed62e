package repository

import (
	"context"

	"github.com/traklab/workout-tracker/internal/domain/entity"
)

// WorkoutRepository defines the interface for workout-related database operations.
// List results are ordered by workout date, newest first.
type WorkoutRepository interface {
	Create(ctx context.Context, w *entity.Workout) error
	GetByID(ctx context.Context, id string) (*entity.Workout, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Workout, error)
	ListAll(ctx context.Context) ([]*entity.Workout, error)
	Update(ctx context.Context, w *entity.Workout) error
	Delete(ctx context.Context, id string) error
}
