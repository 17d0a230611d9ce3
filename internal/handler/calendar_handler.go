package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-assistant-api/internal/models"
	appErrors "github.com/noah-isme/school-assistant-api/pkg/errors"
	"github.com/noah-isme/school-assistant-api/pkg/response"
)

const dateLayout = "2006-01-02"

type calendarService interface {
	List(ctx context.Context, userID string, rng models.CalendarRange) ([]models.CalendarEvent, error)
	Create(ctx context.Context, userID string, req models.CalendarEventRequest) (*models.CalendarEvent, error)
	Update(ctx context.Context, userID, id string, req models.CalendarEventRequest) (*models.CalendarEvent, error)
	Delete(ctx context.Context, userID, id string) error
}

// CalendarHandler exposes the caller's local calendar.
type CalendarHandler struct {
	events calendarService
	loc    *time.Location
}

// NewCalendarHandler constructs CalendarHandler. Dates in queries are read in
// loc.
func NewCalendarHandler(events calendarService, loc *time.Location) *CalendarHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarHandler{events: events, loc: loc}
}

// parseRange reads start_date/end_date. A missing start is today and a
// missing end is 30 days after the start.
func parseRange(c *gin.Context, loc *time.Location) (models.CalendarRange, error) {
	now := time.Now().In(loc)
	rng := models.CalendarRange{From: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)}
	if raw := c.Query("start_date"); raw != "" {
		from, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			return rng, appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
		}
		rng.From = from
	}
	rng.To = rng.From.AddDate(0, 0, 30)
	if raw := c.Query("end_date"); raw != "" {
		to, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			return rng, appErrors.Clone(appErrors.ErrValidation, "end_date must be YYYY-MM-DD")
		}
		rng.To = to
	}
	if rng.To.Before(rng.From) {
		return rng, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}
	return rng, nil
}

// List godoc
// @Summary List calendar events
// @Tags Calendar
// @Produce json
// @Param start_date query string false "First day (YYYY-MM-DD)"
// @Param end_date query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /calendar/events [get]
func (h *CalendarHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rng, err := parseRange(c, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	events, err := h.events.List(c.Request.Context(), userID, rng)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Create godoc
// @Summary Create calendar event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body models.CalendarEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /calendar/events [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	event, err := h.events.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update calendar event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body models.CalendarEventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Router /calendar/events/{id} [put]
func (h *CalendarHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	event, err := h.events.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete calendar event
// @Tags Calendar
// @Param id path string true "Event ID"
// @Success 204
// @Router /calendar/events/{id} [delete]
func (h *CalendarHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.events.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
