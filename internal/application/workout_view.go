package application

import (
	"github.com/traklab/workout-tracker/internal/domain/entity"
)

// WorkoutView is the display shape handed to templates: string id, date
// formatted MM/DD/YYYY regardless of storage representation.
type WorkoutView struct {
	ID             string
	ExerciseName   string
	Duration       int
	CaloriesBurned int
	Category       string
	Date           string
}

const displayDateLayout = "01/02/2006"

func FormatWorkout(w *entity.Workout) WorkoutView {
	return WorkoutView{
		ID:             w.ID,
		ExerciseName:   w.ExerciseName,
		Duration:       w.Duration,
		CaloriesBurned: w.CaloriesBurned,
		Category:       w.Category,
		Date:           w.Date.Format(displayDateLayout),
	}
}

func FormatWorkouts(ws []*entity.Workout) []WorkoutView {
	out := make([]WorkoutView, 0, len(ws))
	for _, w := range ws {
		out = append(out, FormatWorkout(w))
	}
	return out
}
