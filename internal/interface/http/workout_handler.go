package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/traklab/workout-tracker/internal/application"
	"github.com/traklab/workout-tracker/internal/domain/entity"
	"github.com/traklab/workout-tracker/pkg/render"
	"github.com/traklab/workout-tracker/pkg/validation"
)

// WorkoutHandler serves the workout pages: listing, fuzzy search, and the
// add/edit/delete flows.
type WorkoutHandler struct {
	Svc    *application.WorkoutService
	Logger *logrus.Logger
}

func NewWorkoutHandler(svc *application.WorkoutService, logger *logrus.Logger) *WorkoutHandler {
	return &WorkoutHandler{Svc: svc, Logger: logger}
}

type workoutForm struct {
	ExerciseName   string `form:"exerciseName" binding:"required"`
	Duration       int    `form:"duration" binding:"required,gt=0"`
	CaloriesBurned int    `form:"caloriesBurned" binding:"required,gt=0"`
	Category       string `form:"category"`
}

func (f workoutForm) input() application.WorkoutInput {
	return application.WorkoutInput{
		ExerciseName:   f.ExerciseName,
		Duration:       f.Duration,
		CaloriesBurned: f.CaloriesBurned,
		Category:       f.Category,
	}
}

// Home GET /
// Lists the signed-in user's workouts, or everyone's when anonymous.
func (h *WorkoutHandler) Home(c *gin.Context) {
	uid := c.GetString("userID")

	var (
		ws  []*entity.Workout
		err error
	)
	if uid != "" {
		ws, err = h.Svc.List(c.Request.Context(), uid)
	} else {
		ws, err = h.Svc.ListAll(c.Request.Context())
	}
	if err != nil {
		h.Logger.WithError(err).Error("home listing failed")
		render.ErrorPage(c, http.StatusInternalServerError, "Workout Tracker", "Could not load workouts. Please try again later.")
		return
	}

	render.HTML(c, http.StatusOK, "index.tmpl", gin.H{
		"Title":    "Workout Tracker",
		"Workouts": application.FormatWorkouts(ws),
	})
}

// View GET /workouts/view
func (h *WorkoutHandler) View(c *gin.Context) {
	ws, err := h.Svc.List(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.Logger.WithError(err).Error("workout listing failed")
		render.ErrorPage(c, http.StatusInternalServerError, "Your Workouts", "Could not load your workouts. Please try again later.")
		return
	}
	render.HTML(c, http.StatusOK, "workouts_view.tmpl", gin.H{
		"Title":    "Your Workouts",
		"Workouts": application.FormatWorkouts(ws),
	})
}

// Search GET /workouts/search?query=
func (h *WorkoutHandler) Search(c *gin.Context) {
	query := c.Query("query")
	ws, err := h.Svc.Search(c.Request.Context(), c.GetString("userID"), query)
	if err != nil {
		h.Logger.WithError(err).WithField("query", query).Error("workout search failed")
		render.ErrorPage(c, http.StatusInternalServerError, "Your Workouts", "Could not load your workouts. Please try again later.")
		return
	}
	render.HTML(c, http.StatusOK, "workouts_view.tmpl", gin.H{
		"Title":    "Your Workouts",
		"Workouts": application.FormatWorkouts(ws),
		"Query":    query,
	})
}

// ShowAdd GET /workouts/add
func (h *WorkoutHandler) ShowAdd(c *gin.Context) {
	render.HTML(c, http.StatusOK, "workouts_add.tmpl", gin.H{"Title": "Add Workout"})
}

// Add POST /workouts/add
func (h *WorkoutHandler) Add(c *gin.Context) {
	var form workoutForm
	if err := c.ShouldBind(&form); err != nil {
		render.HTML(c, http.StatusOK, "workouts_add.tmpl", gin.H{
			"Title":   "Add Workout",
			"Error":   validation.FirstMessage(err),
			"Workout": formValues(c),
		})
		return
	}

	if _, err := h.Svc.Create(c.Request.Context(), c.GetString("userID"), form.input()); err != nil {
		h.Logger.WithError(err).Error("workout create failed")
		render.ErrorPage(c, http.StatusInternalServerError, "Add Workout", "Error saving workout!")
		return
	}
	c.Redirect(http.StatusFound, "/workouts/view")
}

// ShowEdit GET /workouts/:id/edit
func (h *WorkoutHandler) ShowEdit(c *gin.Context) {
	w, err := h.Svc.GetOwned(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		h.renderWorkoutError(c, "Edit Workout", err)
		return
	}
	render.HTML(c, http.StatusOK, "workouts_edit.tmpl", gin.H{
		"Title":   "Edit Workout",
		"Workout": application.FormatWorkout(w),
	})
}

// Edit POST /workouts/:id/edit
func (h *WorkoutHandler) Edit(c *gin.Context) {
	var form workoutForm
	if err := c.ShouldBind(&form); err != nil {
		render.HTML(c, http.StatusOK, "workouts_edit.tmpl", gin.H{
			"Title":   "Edit Workout",
			"Error":   validation.FirstMessage(err),
			"Workout": formValues(c),
		})
		return
	}

	if _, err := h.Svc.Update(c.Request.Context(), c.Param("id"), c.GetString("userID"), form.input()); err != nil {
		h.renderWorkoutError(c, "Edit Workout", err)
		return
	}
	c.Redirect(http.StatusFound, "/workouts/view")
}

// Delete POST /workouts/:id/delete
func (h *WorkoutHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		h.renderWorkoutError(c, "Delete Workout", err)
		return
	}
	c.Redirect(http.StatusFound, "/workouts/view")
}

func (h *WorkoutHandler) renderWorkoutError(c *gin.Context, title string, err error) {
	switch {
	case errors.Is(err, application.ErrWorkoutNotFound):
		render.ErrorPage(c, http.StatusNotFound, title, "Workout not found.")
	case errors.Is(err, application.ErrForbidden):
		render.ErrorPage(c, http.StatusForbidden, title, "You are not authorized to modify this workout.")
	default:
		h.Logger.WithError(err).WithField("workout_id", c.Param("id")).Error("workout mutation failed")
		render.ErrorPage(c, http.StatusInternalServerError, title, "Something went wrong. Please try again later.")
	}
}

// formValues echoes the submitted fields back into the form template after
// a validation failure.
func formValues(c *gin.Context) gin.H {
	return gin.H{
		"ID":             c.Param("id"),
		"ExerciseName":   c.PostForm("exerciseName"),
		"Duration":       c.PostForm("duration"),
		"CaloriesBurned": c.PostForm("caloriesBurned"),
		"Category":       c.PostForm("category"),
	}
}
