package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/traklab/workout-tracker/internal/application"
	"github.com/traklab/workout-tracker/pkg/helpers"
	"github.com/traklab/workout-tracker/pkg/render"
	"github.com/traklab/workout-tracker/pkg/validation"
)

// AuthHandler serves the register/login/logout pages and the GitHub
// OAuth redirect/callback pair.
type AuthHandler struct {
	Auth    *application.AuthService
	GitHub  *application.GitHubAuthenticator
	Cookies *helpers.CookieManager
	Logger  *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, github *application.GitHubAuthenticator, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		Auth:    auth,
		GitHub:  github,
		Cookies: helpers.NewCookie(cookieDomain, cookieSecure),
		Logger:  logger,
	}
}

type registerForm struct {
	Username string `form:"username" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,pwd"`
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// ShowRegister GET /users/register
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	render.HTML(c, http.StatusOK, "register.tmpl", gin.H{"Title": "Register"})
}

// Register POST /users/register
func (h *AuthHandler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		render.HTML(c, http.StatusOK, "register.tmpl", gin.H{
			"Title":    "Register",
			"Error":    validation.FirstMessage(err),
			"Username": c.PostForm("username"),
			"Email":    c.PostForm("email"),
		})
		return
	}

	_, err := h.Auth.Register(c.Request.Context(), form.Username, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			render.HTML(c, http.StatusOK, "register.tmpl", gin.H{
				"Title":    "Register",
				"Error":    "User with this email already exists!",
				"Username": form.Username,
				"Email":    form.Email,
			})
			return
		}
		h.Logger.WithError(err).WithField("email", form.Email).Error("registration failed")
		render.ErrorPage(c, http.StatusInternalServerError, "Register", "Something went wrong. Please try again later.")
		return
	}

	c.Redirect(http.StatusFound, "/users/login")
}

// ShowLogin GET /users/login
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	render.HTML(c, http.StatusOK, "login.tmpl", gin.H{"Title": "Login"})
}

// Login POST /users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		render.HTML(c, http.StatusOK, "login.tmpl", gin.H{
			"Title": "Login",
			"Error": "Invalid username or password",
		})
		return
	}

	u, err := h.Auth.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		render.HTML(c, http.StatusOK, "login.tmpl", gin.H{
			"Title": "Login",
			"Error": "Invalid username or password",
		})
		return
	}

	sess, err := h.Auth.IssueSession(c.Request.Context(), u)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("session issue failed")
		render.ErrorPage(c, http.StatusInternalServerError, "Login", "Something went wrong. Please try again later.")
		return
	}

	h.Cookies.SetSession(c, sess.Token, sess.Expiry)
	c.Redirect(http.StatusFound, "/")
}

// Logout GET /users/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if uid := c.GetString("userID"); uid != "" {
		h.Auth.Logout(c.Request.Context(), uid)
	}
	h.Cookies.Clear(c)
	c.Redirect(http.StatusFound, "/users/login")
}

// GitHubLogin GET /users/github
func (h *AuthHandler) GitHubLogin(c *gin.Context) {
	if h.GitHub == nil || !h.GitHub.Enabled() {
		c.Redirect(http.StatusFound, "/users/login")
		return
	}
	url, err := h.GitHub.AuthURL(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("github auth url failed")
		c.Redirect(http.StatusFound, "/users/login")
		return
	}
	c.Redirect(http.StatusFound, url)
}

// GitHubCallback GET /users/github/callback
// Any failure lands back on the login page with no session created.
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	if h.GitHub == nil || !h.GitHub.Enabled() {
		c.Redirect(http.StatusFound, "/users/login")
		return
	}
	u, err := h.GitHub.HandleCallback(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		c.Redirect(http.StatusFound, "/users/login")
		return
	}

	sess, err := h.Auth.IssueSession(c.Request.Context(), u)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("session issue failed")
		c.Redirect(http.StatusFound, "/users/login")
		return
	}

	h.Cookies.SetSession(c, sess.Token, sess.Expiry)
	c.Redirect(http.StatusFound, "/")
}
