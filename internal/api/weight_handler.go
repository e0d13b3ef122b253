package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/overload/internal/service"
)

// WeightHandler serves the body-weight log.
type WeightHandler struct {
	weightService service.WeightService
}

func NewWeightHandler(weightService service.WeightService) *WeightHandler {
	return &WeightHandler{weightService: weightService}
}

// AddWeightRequest records a weigh-in. An empty date means today.
type AddWeightRequest struct {
	Date     string  `json:"date"`
	WeightKg float64 `json:"weightKg" binding:"required,gt=0"`
	Note     string  `json:"note"`
}

func (h *WeightHandler) ListWeights(c *gin.Context) {
	list, err := h.weightService.List(c.Request.Context(), getUserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// AddWeight godoc
// @Summary Record a body-weight entry
// @Tags Weights
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddWeightRequest true "Entry"
// @Success 201 {object} domain.WeightEntry
// @Failure 400 {object} gin.H "Invalid date or weight"
// @Router /weights [post]
func (h *WeightHandler) AddWeight(c *gin.Context) {
	var req AddWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	e, err := h.weightService.Add(c.Request.Context(), getUserIDFromContext(c), req.Date, req.WeightKg, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *WeightHandler) DeleteWeight(c *gin.Context) {
	if err := h.weightService.Delete(c.Request.Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
