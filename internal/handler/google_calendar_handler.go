package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-assistant-api/internal/models"
	"github.com/noah-isme/school-assistant-api/pkg/response"
)

type googleCalendarService interface {
	Calendars(ctx context.Context, userID string) ([]models.GoogleCalendar, error)
	Events(ctx context.Context, userID string, from, to time.Time) ([]models.GoogleEvent, error)
	CreateEvent(ctx context.Context, userID string, req models.GoogleEventRequest) (*models.GoogleEvent, error)
	UpdateEvent(ctx context.Context, userID, eventID string, req models.GoogleEventRequest) (*models.GoogleEvent, error)
	DeleteEvent(ctx context.Context, userID, eventID string) error
}

type googleLinkStatus interface {
	Status(ctx context.Context, userID string) (*models.GoogleCalendarStatus, error)
}

// GoogleCalendarHandler proxies the caller's primary Google calendar.
type GoogleCalendarHandler struct {
	calendar googleCalendarService
	links    googleLinkStatus
	loc      *time.Location
}

// NewGoogleCalendarHandler constructs GoogleCalendarHandler.
func NewGoogleCalendarHandler(calendar googleCalendarService, links googleLinkStatus, loc *time.Location) *GoogleCalendarHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &GoogleCalendarHandler{calendar: calendar, links: links, loc: loc}
}

// Status godoc
// @Summary Google link status
// @Tags Google Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar/google/status [get]
func (h *GoogleCalendarHandler) Status(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	status, err := h.links.Status(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Calendars godoc
// @Summary List Google calendars
// @Tags Google Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /calendar/google/calendars [get]
func (h *GoogleCalendarHandler) Calendars(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	calendars, err := h.calendar.Calendars(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, calendars, nil)
}

// Events godoc
// @Summary List Google Calendar events
// @Tags Google Calendar
// @Produce json
// @Param start_date query string false "First day (YYYY-MM-DD)"
// @Param end_date query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /calendar/google/events [get]
func (h *GoogleCalendarHandler) Events(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rng, err := parseRange(c, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	// Google treats timeMax as exclusive.
	events, err := h.calendar.Events(c.Request.Context(), userID, rng.From, rng.To.AddDate(0, 0, 1))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// CreateEvent godoc
// @Summary Create Google Calendar event
// @Tags Google Calendar
// @Accept json
// @Produce json
// @Param payload body models.GoogleEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /calendar/google/events [post]
func (h *GoogleCalendarHandler) CreateEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.GoogleEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	event, err := h.calendar.CreateEvent(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// UpdateEvent godoc
// @Summary Update Google Calendar event
// @Tags Google Calendar
// @Accept json
// @Produce json
// @Param id path string true "Google event ID"
// @Param payload body models.GoogleEventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Router /calendar/google/events/{id} [put]
func (h *GoogleCalendarHandler) UpdateEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.GoogleEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	event, err := h.calendar.UpdateEvent(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// DeleteEvent godoc
// @Summary Delete Google Calendar event
// @Tags Google Calendar
// @Param id path string true "Google event ID"
// @Success 204
// @Router /calendar/google/events/{id} [delete]
func (h *GoogleCalendarHandler) DeleteEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.calendar.DeleteEvent(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
