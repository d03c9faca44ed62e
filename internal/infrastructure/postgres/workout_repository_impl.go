package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/traklab/workout-tracker/internal/domain/entity"
	"github.com/traklab/workout-tracker/internal/domain/repository"
)

type WorkoutRepository struct {
	pool *pgxpool.Pool
}

func NewWorkoutRepository(pool *pgxpool.Pool) *WorkoutRepository {
	return &WorkoutRepository{pool: pool}
}

func (r *WorkoutRepository) Create(ctx context.Context, w *entity.Workout) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO workouts (user_id, exercise_name, duration_minutes, calories_burned, category, date)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
		RETURNING id, date, created_at, updated_at
	`, w.UserID, w.ExerciseName, w.Duration, w.CaloriesBurned, w.Category, dateParam(w.Date))

	return row.Scan(&w.ID, &w.Date, &w.CreatedAt, &w.UpdatedAt)
}

func (r *WorkoutRepository) GetByID(ctx context.Context, id string) (*entity.Workout, error) {
	w := &entity.Workout{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, exercise_name, duration_minutes, calories_burned, category, date, created_at, updated_at
		FROM workouts
		WHERE id = $1
	`, id)

	if err := scanWorkout(row, w); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

func (r *WorkoutRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Workout, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, exercise_name, duration_minutes, calories_burned, category, date, created_at, updated_at
		FROM workouts
		WHERE user_id = $1
		ORDER BY date DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWorkouts(rows)
}

func (r *WorkoutRepository) ListAll(ctx context.Context) ([]*entity.Workout, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, exercise_name, duration_minutes, calories_burned, category, date, created_at, updated_at
		FROM workouts
		ORDER BY date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWorkouts(rows)
}

// Update never touches user_id; ownership is immutable after creation.
func (r *WorkoutRepository) Update(ctx context.Context, w *entity.Workout) error {
	w.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE workouts
		SET exercise_name = $1, duration_minutes = $2, calories_burned = $3, category = $4, updated_at = $5
		WHERE id = $6
	`, w.ExerciseName, w.Duration, w.CaloriesBurned, w.Category, w.UpdatedAt, w.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *WorkoutRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanWorkout(row pgx.Row, w *entity.Workout) error {
	return row.Scan(&w.ID, &w.UserID, &w.ExerciseName, &w.Duration, &w.CaloriesBurned,
		&w.Category, &w.Date, &w.CreatedAt, &w.UpdatedAt)
}

func collectWorkouts(rows pgx.Rows) ([]*entity.Workout, error) {
	out := make([]*entity.Workout, 0)
	for rows.Next() {
		w := &entity.Workout{}
		if err := scanWorkout(rows, w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func dateParam(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

var _ repository.WorkoutRepository = (*WorkoutRepository)(nil)
