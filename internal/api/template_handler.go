package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/overload/internal/service"
	"alcyxob/overload/internal/templates"
)

// TemplateHandler serves the template browser and the manual builder.
type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// TemplateExerciseRequest leaves targets nil to take the builder defaults.
type TemplateExerciseRequest struct {
	Name        string `json:"name"`
	TargetSets  *int   `json:"targetSets"`
	TargetReps  *int   `json:"targetReps"`
	RestSeconds *int   `json:"restSeconds"`
}

type TemplateRequest struct {
	Name      string                    `json:"name" binding:"required"`
	Exercises []TemplateExerciseRequest `json:"exercises"`
}

func (r TemplateRequest) drafts() []templates.ExerciseDraft {
	out := make([]templates.ExerciseDraft, len(r.Exercises))
	for i, ex := range r.Exercises {
		out[i] = templates.ExerciseDraft{
			Name:        ex.Name,
			TargetSets:  ex.TargetSets,
			TargetReps:  ex.TargetReps,
			RestSeconds: ex.RestSeconds,
		}
	}
	return out
}

// ListTemplates godoc
// @Summary Templates, most recently updated first
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Param q query string false "Filter by template or exercise name"
// @Success 200 {array} domain.WorkoutTemplate
// @Router /templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	list, err := h.templateService.List(c.Request.Context(), getUserIDFromContext(c), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	tpl, err := h.templateService.Get(c.Request.Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// SaveTemplate godoc
// @Summary Create a template, replacing any with the same name
// @Tags Templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body TemplateRequest true "Template"
// @Success 201 {object} domain.WorkoutTemplate "Created"
// @Success 200 {object} domain.WorkoutTemplate "Replaced an existing template"
// @Failure 400 {object} gin.H "Invalid input"
// @Router /templates [post]
func (h *TemplateHandler) SaveTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	tpl, created, err := h.templateService.Save(c.Request.Context(), getUserIDFromContext(c), req.Name, req.drafts())
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, tpl)
}

// UpdateTemplate godoc
// @Summary Replace a template's name and exercises
// @Tags Templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Param body body TemplateRequest true "Template"
// @Success 200 {object} domain.WorkoutTemplate
// @Failure 404 {object} gin.H "Unknown template"
// @Failure 409 {object} gin.H "Name used by another template"
// @Router /templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	tpl, err := h.templateService.Update(c.Request.Context(), getUserIDFromContext(c), c.Param("id"), req.Name, req.drafts())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	if err := h.templateService.Delete(c.Request.Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
