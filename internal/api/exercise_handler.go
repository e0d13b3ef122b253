package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"alcyxob/overload/internal/service"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// ListStats godoc
// @Summary Per-exercise history of the authenticated user
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.ExerciseStats
// @Router /exercises [get]
func (h *ExerciseHandler) ListStats(c *gin.Context) {
	list, err := h.exerciseService.ListStats(c.Request.Context(), getUserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// Suggestions godoc
// @Summary Exercises whose name contains the query
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param q query string false "Partial name"
// @Success 200 {array} domain.ExerciseStats
// @Router /exercises/suggestions [get]
func (h *ExerciseHandler) Suggestions(c *gin.Context) {
	list, err := h.exerciseService.Suggestions(c.Request.Context(), getUserIDFromContext(c), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// Ranking godoc
// @Summary Best lifts across all users for one exercise
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param name path string true "Exercise name, normalized server side"
// @Param limit query int false "Max rows, default 20"
// @Success 200 {array} domain.RankingRow
// @Router /rankings/{name} [get]
func (h *ExerciseHandler) Ranking(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			abortWithError(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	rows, err := h.exerciseService.Ranking(c.Request.Context(), c.Param("name"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(rows))
}
