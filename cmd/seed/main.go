package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/traklab/workout-tracker/config"
	"github.com/traklab/workout-tracker/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@example.com"
	password := "password123"
	username := "demoUser"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET username = EXCLUDED.username
		RETURNING id
	`, username, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", id, email, username, password)

	samples := []struct {
		name     string
		duration int
		calories int
		category string
	}{
		{"Squat", 30, 200, "Strength"},
		{"Running", 45, 420, "Cardio"},
		{"Bench Press", 25, 150, "Strength"},
	}
	for _, s := range samples {
		if _, err := db.Exec(`
			INSERT INTO workouts (user_id, exercise_name, duration_minutes, calories_burned, category)
			VALUES ($1, $2, $3, $4, $5)
		`, id, s.name, s.duration, s.calories, s.category); err != nil {
			log.Fatalf("failed to seed workout %q: %v", s.name, err)
		}
	}
	fmt.Printf("seeded %d workouts for %s\n", len(samples), username)
}
