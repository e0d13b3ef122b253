package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/overload/internal/service"
)

// ExportHandler hands out snapshots of the user's data.
type ExportHandler struct {
	exportService service.ExportService
}

func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// GetSnapshot returns the snapshot inline. It works without object storage.
func (h *ExportHandler) GetSnapshot(c *gin.Context) {
	snap, err := h.exportService.Snapshot(c.Request.Context(), getUserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Export godoc
// @Summary Upload a JSON snapshot and return a presigned download URL
// @Tags Export
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.ExportResult
// @Failure 503 {object} gin.H "Object storage disabled"
// @Router /export [post]
func (h *ExportHandler) Export(c *gin.Context) {
	res, err := h.exportService.Export(c.Request.Context(), getUserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
