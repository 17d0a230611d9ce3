package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-assistant-api/internal/models"
	appErrors "github.com/noah-isme/school-assistant-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type calendarRepository interface {
	ListByUser(ctx context.Context, userID string, rng models.CalendarRange) ([]models.CalendarEvent, error)
	GetByID(ctx context.Context, id string) (*models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent) error
	Update(ctx context.Context, event *models.CalendarEvent) error
	Delete(ctx context.Context, userID, id string) error
}

// CalendarService manages the local per-user calendar.
type CalendarService struct {
	repo      calendarRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(repo calendarRepository, validate *validator.Validate, logger *zap.Logger) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{repo: repo, validator: validate, logger: logger}
}

// List returns the user's events in the inclusive range. A zero To defaults
// to From.
func (s *CalendarService) List(ctx context.Context, userID string, rng models.CalendarRange) ([]models.CalendarEvent, error) {
	if rng.To.IsZero() {
		rng.To = rng.From
	}
	if rng.To.Before(rng.From) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	events, err := s.repo.ListByUser(ctx, userID, rng)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, nil
}

// Create stores a new event owned by userID.
func (s *CalendarService) Create(ctx context.Context, userID string, req models.CalendarEventRequest) (*models.CalendarEvent, error) {
	event, err := s.build(req)
	if err != nil {
		return nil, err
	}
	event.UserID = userID
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	return event, nil
}

// Update replaces an event. Events owned by other users are reported as not
// found.
func (s *CalendarService) Update(ctx context.Context, userID, id string, req models.CalendarEventRequest) (*models.CalendarEvent, error) {
	existing, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	event, err := s.build(req)
	if err != nil {
		return nil, err
	}
	event.ID = existing.ID
	event.UserID = existing.UserID
	event.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, event); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	return event, nil
}

// Delete removes an event owned by userID.
func (s *CalendarService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	s.logger.Info("calendar event deleted", zap.String("user_id", userID), zap.String("event_id", id))
	return nil
}

func (s *CalendarService) owned(ctx context.Context, userID, id string) (*models.CalendarEvent, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return event, nil
}

func (s *CalendarService) build(req models.CalendarEventRequest) (*models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start_date")
	}
	end := start
	if req.EndDate != "" {
		if end, err = time.Parse(dateLayout, req.EndDate); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end_date")
		}
		if end.Before(start) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
		}
	}

	eventType := req.EventType
	if eventType == "" {
		eventType = models.EventTypePersonal
	}
	color := req.Color
	if color == "" {
		color = models.EventColor(eventType)
	}

	event := &models.CalendarEvent{
		Title:     strings.TrimSpace(req.Title),
		StartDate: start,
		EndDate:   end,
		EventType: eventType,
		Color:     color,
		IsAllDay:  req.IsAllDay || req.StartTime == "",
	}
	if !event.IsAllDay {
		event.StartTime = strPtr(req.StartTime)
		event.EndTime = strPtr(req.EndTime)
	}
	event.Description = strPtr(req.Description)
	event.Location = strPtr(req.Location)
	return event, nil
}
