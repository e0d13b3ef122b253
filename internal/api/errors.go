package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"alcyxob/overload/internal/service"
)

// respondError maps service errors to HTTP statuses. Anything unknown is
// logged and reported as a 500 without details.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidationFailed),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidMonth):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrWeightNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrWorkoutInProgress),
		errors.Is(err, service.ErrNoActiveWorkout),
		errors.Is(err, service.ErrTemplateNameTaken),
		errors.Is(err, service.ErrUserAlreadyExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrExportDisabled):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		log.WithField("path", c.FullPath()).Errorf("request failed: %v", err)
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
