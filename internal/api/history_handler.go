package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/overload/internal/service"
)

// HistoryHandler serves finished sessions, the calendar, the monthly recap
// and the state of background persistence.
type HistoryHandler struct {
	tracker service.TrackerService
	now     func() time.Time
	loc     *time.Location
}

func NewHistoryHandler(tracker service.TrackerService, now func() time.Time, loc *time.Location) *HistoryHandler {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &HistoryHandler{tracker: tracker, now: now, loc: loc}
}

// SyncStatusResponse lists writes that exhausted their retries.
type SyncStatusResponse struct {
	Failures []service.SyncFailure `json:"failures"`
}

type SyncRetryResponse struct {
	Resubmitted int `json:"resubmitted"`
}

// ListSessions godoc
// @Summary Finished sessions, newest first
// @Tags History
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Session
// @Router /sessions [get]
func (h *HistoryHandler) ListSessions(c *gin.Context) {
	list, err := h.tracker.ListSessions(c.Request.Context(), getUserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (h *HistoryHandler) GetSession(c *gin.Context) {
	s, err := h.tracker.GetSession(c.Request.Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// DeleteSession godoc
// @Summary Delete a finished session. Templates and stats are kept.
// @Tags History
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} gin.H "Unknown session"
// @Router /sessions/{id} [delete]
func (h *HistoryHandler) DeleteSession(c *gin.Context) {
	if err := h.tracker.DeleteSession(c.Request.Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMonth godoc
// @Summary Monday-first calendar grid with per-day session counts
// @Tags History
// @Produce json
// @Security BearerAuth
// @Param year path int true "Year"
// @Param month path int true "Month, 1-12"
// @Success 200 {object} service.MonthView
// @Failure 400 {object} gin.H "Invalid month"
// @Router /calendar/months/{year}/{month} [get]
func (h *HistoryHandler) GetMonth(c *gin.Context) {
	year, ok := intParam(c, "year")
	if !ok {
		return
	}
	month, ok := intParam(c, "month")
	if !ok {
		return
	}
	view, err := h.tracker.Month(c.Request.Context(), getUserIDFromContext(c), year, time.Month(month))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetDay godoc
// @Summary Sessions started on one local day
// @Tags History
// @Produce json
// @Security BearerAuth
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {array} domain.Session
// @Failure 400 {object} gin.H "Invalid date"
// @Router /calendar/days/{date} [get]
func (h *HistoryHandler) GetDay(c *gin.Context) {
	list, err := h.tracker.Day(c.Request.Context(), getUserIDFromContext(c), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// GetSummary godoc
// @Summary Monthly recap, the current month when year/month are omitted
// @Tags History
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year"
// @Param month query int false "Month, 1-12"
// @Success 200 {object} service.Summary
// @Router /summary [get]
func (h *HistoryHandler) GetSummary(c *gin.Context) {
	now := h.now().In(h.loc)
	year, month := now.Year(), int(now.Month())
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid year")
			return
		}
		year = n
	}
	if v := c.Query("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid month")
			return
		}
		month = n
	}
	sum, err := h.tracker.Summary(c.Request.Context(), getUserIDFromContext(c), year, time.Month(month))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *HistoryHandler) GetSync(c *gin.Context) {
	c.JSON(http.StatusOK, SyncStatusResponse{
		Failures: nonNil(h.tracker.SyncFailures(getUserIDFromContext(c))),
	})
}

// RetrySync re-queues every failed write of the user.
func (h *HistoryHandler) RetrySync(c *gin.Context) {
	c.JSON(http.StatusAccepted, SyncRetryResponse{
		Resubmitted: h.tracker.RetrySync(getUserIDFromContext(c)),
	})
}

// nonNil keeps empty lists serialized as [] rather than null.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
