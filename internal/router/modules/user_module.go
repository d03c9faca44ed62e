package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/traklab/workout-tracker/internal/application"
	"github.com/traklab/workout-tracker/internal/container"
	handlers "github.com/traklab/workout-tracker/internal/interface/http"
	"github.com/traklab/workout-tracker/internal/interface/middleware"
)

// UserModule wires the account pages and the GitHub OAuth flow.
// Public: GET/POST /users/register, GET/POST /users/login,
// GET /users/github, GET /users/github/callback
// Protected: GET /users/logout
type UserModule struct {
	Handler *handlers.AuthHandler
	Auth    *application.AuthService
}

func NewUserModule(h *handlers.AuthHandler, auth *application.AuthService) *UserModule {
	return &UserModule{Handler: h, Auth: auth}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	users := rg.Group("/users")
	{
		users.GET("/register", m.Handler.ShowRegister)
		users.POST("/register", registerLimiter, m.Handler.Register)
		users.GET("/login", m.Handler.ShowLogin)
		users.POST("/login", loginLimiter, m.Handler.Login)
		users.GET("/github", m.Handler.GitHubLogin)
		users.GET("/github/callback", m.Handler.GitHubCallback)

		users.GET("/logout", middleware.RequireUser(m.Auth), m.Handler.Logout)
	}
}
