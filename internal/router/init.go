package router

import (
	"github.com/traklab/workout-tracker/internal/application"
	"github.com/traklab/workout-tracker/internal/container"
	pginfra "github.com/traklab/workout-tracker/internal/infrastructure/postgres"
	handlers "github.com/traklab/workout-tracker/internal/interface/http"
	"github.com/traklab/workout-tracker/internal/router/modules"
)

// InitModules builds the services and handlers from the container
// singletons and registers every feature module with the registry.
// Called once during application startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	workoutRepo := pginfra.NewWorkoutRepository(container.GetPGPool())

	authSvc := application.NewAuthService(
		userRepo,
		container.GetSessions(),
		container.GetRedis(),
		logger,
		container.GetRabbitPub(),
		cfg.AppName,
		cfg.SessionTTL,
		cfg.MailSendEnabled,
	)
	github := application.NewGitHubAuthenticator(
		userRepo,
		container.GetRedis(),
		logger,
		cfg.GitHubClientID,
		cfg.GitHubClientSecret,
		cfg.GitHubCallbackURL,
	)
	workoutSvc := application.NewWorkoutService(
		workoutRepo,
		logger,
		container.GetES(),
		cfg.ESWorkoutsIndex,
	)

	authHandler := handlers.NewAuthHandler(authSvc, github, logger, cfg.CookieDomain, cfg.CookieSecure)
	workoutHandler := handlers.NewWorkoutHandler(workoutSvc, logger)

	r.Add(modules.NewUserModule(authHandler, authSvc))
	r.Add(modules.NewWorkoutModule(workoutHandler, authSvc))
}
