package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/service"
	"alcyxob/overload/internal/session"
)

// WorkoutHandler drives the workout in progress and its rest timer.
type WorkoutHandler struct {
	tracker service.TrackerService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(tracker service.TrackerService) *WorkoutHandler {
	return &WorkoutHandler{tracker: tracker}
}

// StartWorkoutRequest starts from a template when TemplateID is set,
// otherwise a blank session named Name (or after the time of day).
type StartWorkoutRequest struct {
	Name       string `json:"name"`
	TemplateID string `json:"templateId"`
}

type AddExerciseRequest struct {
	Name string `json:"name"`
}

type FinishWorkoutRequest struct {
	Abs    bool   `json:"abs"`
	Cardio bool   `json:"cardio"`
	Notes  string `json:"notes"`
}

// GetCurrent godoc
// @Summary Workout in progress with elapsed time and rest timer
// @Tags Workout
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.WorkoutState
// @Router /workout [get]
func (h *WorkoutHandler) GetCurrent(c *gin.Context) {
	st, err := h.tracker.Current(c.Request.Context(), getUserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Start godoc
// @Summary Start a blank workout or one seeded from a template
// @Tags Workout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StartWorkoutRequest false "Name or template"
// @Success 201 {object} service.WorkoutState
// @Failure 404 {object} gin.H "Unknown template"
// @Failure 409 {object} gin.H "A workout is already in progress"
// @Router /workout/start [post]
func (h *WorkoutHandler) Start(c *gin.Context) {
	var req StartWorkoutRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	uid := getUserIDFromContext(c)

	var (
		st  service.WorkoutState
		err error
	)
	if req.TemplateID != "" {
		st, err = h.tracker.StartFromTemplate(c.Request.Context(), uid, req.TemplateID)
	} else {
		st, err = h.tracker.StartBlank(c.Request.Context(), uid, req.Name)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

// AddExercise godoc
// @Summary Append an exercise; blank or repeated names are ignored
// @Tags Workout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddExerciseRequest true "Exercise name"
// @Success 200 {object} service.Mutation
// @Router /workout/exercises [post]
func (h *WorkoutHandler) AddExercise(c *gin.Context) {
	var req AddExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	m, err := h.tracker.AddExercise(c.Request.Context(), getUserIDFromContext(c), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// AddSet godoc
// @Summary Append a set carrying forward the previous set's values
// @Tags Workout
// @Produce json
// @Security BearerAuth
// @Param exIdx path int true "Exercise index"
// @Success 200 {object} service.Mutation
// @Router /workout/exercises/{exIdx}/sets [post]
func (h *WorkoutHandler) AddSet(c *gin.Context) {
	exIdx, ok := intParam(c, "exIdx")
	if !ok {
		return
	}
	m, err := h.tracker.AddSet(c.Request.Context(), getUserIDFromContext(c), exIdx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// UpdateSet godoc
// @Summary Patch weight, reps or completion of one set
// @Tags Workout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exIdx path int true "Exercise index"
// @Param setIdx path int true "Set index"
// @Param body body session.SetPatch true "Fields to change"
// @Success 200 {object} service.Mutation
// @Router /workout/exercises/{exIdx}/sets/{setIdx} [patch]
func (h *WorkoutHandler) UpdateSet(c *gin.Context) {
	exIdx, ok := intParam(c, "exIdx")
	if !ok {
		return
	}
	setIdx, ok := intParam(c, "setIdx")
	if !ok {
		return
	}
	var patch session.SetPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	m, err := h.tracker.UpdateSet(c.Request.Context(), getUserIDFromContext(c), exIdx, setIdx, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Finish godoc
// @Summary Finalize the workout, updating stats and the derived template
// @Tags Workout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body FinishWorkoutRequest false "Add-ons"
// @Success 200 {object} service.FinishResult
// @Failure 409 {object} gin.H "No workout in progress"
// @Router /workout/finish [post]
func (h *WorkoutHandler) Finish(c *gin.Context) {
	var req FinishWorkoutRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	res, err := h.tracker.Finish(c.Request.Context(), getUserIDFromContext(c), domain.Addons{
		Abs:    req.Abs,
		Cardio: req.Cardio,
		Notes:  req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Discard godoc
// @Summary Abandon the workout in progress without saving it
// @Tags Workout
// @Security BearerAuth
// @Success 204
// @Failure 409 {object} gin.H "No workout in progress"
// @Router /workout [delete]
func (h *WorkoutHandler) Discard(c *gin.Context) {
	discarded, err := h.tracker.Discard(c.Request.Context(), getUserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if !discarded {
		respondError(c, service.ErrNoActiveWorkout)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTimer godoc
// @Summary Rest countdown
// @Tags Workout
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.TimerState
// @Router /timer [get]
func (h *WorkoutHandler) GetTimer(c *gin.Context) {
	h.timer(c, h.tracker.Timer)
}

// ExtendTimer adds fifteen seconds to the running countdown.
func (h *WorkoutHandler) ExtendTimer(c *gin.Context) {
	h.timer(c, h.tracker.ExtendTimer)
}

func (h *WorkoutHandler) StopTimer(c *gin.Context) {
	h.timer(c, h.tracker.StopTimer)
}

func (h *WorkoutHandler) timer(c *gin.Context, fn func(ctx context.Context, userID string) (service.TimerState, error)) {
	st, err := fn(c.Request.Context(), getUserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// bindOptionalJSON binds the body when one was sent. An empty body leaves
// out untouched.
func bindOptionalJSON(c *gin.Context, out any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(out); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return v, true
}
