package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/traklab/workout-tracker/internal/application"
	handlers "github.com/traklab/workout-tracker/internal/interface/http"
	"github.com/traklab/workout-tracker/internal/interface/middleware"
)

// WorkoutModule wires the workout pages.
// The homepage resolves the session when present; every /workouts route
// requires one and redirects to the login page otherwise.
type WorkoutModule struct {
	Handler *handlers.WorkoutHandler
	Auth    *application.AuthService
}

func NewWorkoutModule(h *handlers.WorkoutHandler, auth *application.AuthService) *WorkoutModule {
	return &WorkoutModule{Handler: h, Auth: auth}
}

func (m *WorkoutModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", middleware.OptionalUser(m.Auth), m.Handler.Home)

	workouts := rg.Group("/workouts")
	workouts.Use(middleware.RequireUser(m.Auth))
	{
		workouts.GET("/view", m.Handler.View)
		workouts.GET("/search", m.Handler.Search)
		workouts.GET("/add", m.Handler.ShowAdd)
		workouts.POST("/add", m.Handler.Add)
		workouts.GET("/:id/edit", m.Handler.ShowEdit)
		workouts.POST("/:id/edit", m.Handler.Edit)
		workouts.POST("/:id/delete", m.Handler.Delete)
	}
}
