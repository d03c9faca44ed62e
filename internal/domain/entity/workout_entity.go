package entity

import (
	"time"
)

// Workout is a single logged exercise session. UserID references the
// owning User and never changes after creation.
type Workout struct {
	ID             string
	UserID         string
	ExerciseName   string
	Duration       int // minutes
	CaloriesBurned int
	Category       string
	Date           time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
