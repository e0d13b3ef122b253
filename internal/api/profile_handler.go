package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/overload/internal/service"
)

// ProfileHandler serves the signed-in user's profile.
type ProfileHandler struct {
	profileService service.ProfileService
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type DisplayNameRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
}

// GetMe godoc
// @Summary Current user's profile, created on first access
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.Profile
// @Router /me [get]
func (h *ProfileHandler) GetMe(c *gin.Context) {
	p, err := h.profileService.GetOrCreate(c.Request.Context(), getUserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateDisplayName godoc
// @Summary Change the display name shown in rankings
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DisplayNameRequest true "New name"
// @Success 200 {object} domain.Profile
// @Failure 400 {object} gin.H "Blank name"
// @Router /me/display-name [put]
func (h *ProfileHandler) UpdateDisplayName(c *gin.Context) {
	var req DisplayNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	p, err := h.profileService.UpdateDisplayName(c.Request.Context(), getUserIDFromContext(c), req.DisplayName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
