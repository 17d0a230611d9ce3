package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/noah-isme/school-assistant-api/internal/models"
	appErrors "github.com/noah-isme/school-assistant-api/pkg/errors"
)

const (
	primaryCalendar = "primary"
	calendarZone    = "Asia/Seoul"
	localTimeLayout = "2006-01-02T15:04"
)

type googleTokenSourcer interface {
	TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error)
}

// GoogleCalendarService proxies the user's primary Google Calendar.
type GoogleCalendarService struct {
	tokens googleTokenSourcer
	loc    *time.Location
	opts   []option.ClientOption
	logger *zap.Logger
}

// NewGoogleCalendarService constructs the proxy. Extra client options are
// appended to every API client.
func NewGoogleCalendarService(tokens googleTokenSourcer, loc *time.Location, logger *zap.Logger, opts ...option.ClientOption) *GoogleCalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &GoogleCalendarService{tokens: tokens, loc: loc, opts: opts, logger: logger}
}

func (s *GoogleCalendarService) client(ctx context.Context, userID string) (*calendar.Service, error) {
	ts, err := s.tokens.TokenSource(ctx, userID)
	if err != nil {
		return nil, err
	}
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, s.opts...)
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create calendar client")
	}
	return svc, nil
}

// Calendars lists the calendars visible to the user.
func (s *GoogleCalendarService) Calendars(ctx context.Context, userID string) ([]models.GoogleCalendar, error) {
	svc, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}
	list, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, s.translate(err, "list calendars")
	}
	calendars := make([]models.GoogleCalendar, 0, len(list.Items))
	for _, item := range list.Items {
		calendars = append(calendars, models.GoogleCalendar{ID: item.Id, Summary: item.Summary, Primary: item.Primary, TimeZone: item.TimeZone})
	}
	return calendars, nil
}

// Events lists primary calendar events between from and to, expanding
// recurring events.
func (s *GoogleCalendarService) Events(ctx context.Context, userID string, from, to time.Time) ([]models.GoogleEvent, error) {
	svc, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}
	call := svc.Events.List(primaryCalendar).SingleEvents(true).OrderBy("startTime").MaxResults(250)
	if !from.IsZero() {
		call = call.TimeMin(from.Format(time.RFC3339))
	}
	if !to.IsZero() {
		call = call.TimeMax(to.Format(time.RFC3339))
	}
	result, err := call.Context(ctx).Do()
	if err != nil {
		return nil, s.translate(err, "list events")
	}
	events := make([]models.GoogleEvent, 0, len(result.Items))
	for _, item := range result.Items {
		events = append(events, toGoogleEvent(item))
	}
	return events, nil
}

// CreateEvent inserts an event on the primary calendar.
func (s *GoogleCalendarService) CreateEvent(ctx context.Context, userID string, req models.GoogleEventRequest) (*models.GoogleEvent, error) {
	event, err := s.buildEvent(req)
	if err != nil {
		return nil, err
	}
	svc, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}
	created, err := svc.Events.Insert(primaryCalendar, event).Context(ctx).Do()
	if err != nil {
		return nil, s.translate(err, "create event")
	}
	out := toGoogleEvent(created)
	return &out, nil
}

// UpdateEvent replaces an event on the primary calendar.
func (s *GoogleCalendarService) UpdateEvent(ctx context.Context, userID, eventID string, req models.GoogleEventRequest) (*models.GoogleEvent, error) {
	event, err := s.buildEvent(req)
	if err != nil {
		return nil, err
	}
	svc, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}
	updated, err := svc.Events.Update(primaryCalendar, eventID, event).Context(ctx).Do()
	if err != nil {
		return nil, s.translate(err, "update event")
	}
	out := toGoogleEvent(updated)
	return &out, nil
}

// DeleteEvent removes an event from the primary calendar.
func (s *GoogleCalendarService) DeleteEvent(ctx context.Context, userID, eventID string) error {
	svc, err := s.client(ctx, userID)
	if err != nil {
		return err
	}
	if err := svc.Events.Delete(primaryCalendar, eventID).Context(ctx).Do(); err != nil {
		return s.translate(err, "delete event")
	}
	return nil
}

func (s *GoogleCalendarService) buildEvent(req models.GoogleEventRequest) (*calendar.Event, error) {
	if req.Summary == "" || req.Start == "" || req.End == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "summary, start and end are required")
	}
	start, err := s.eventTime(req.Start, req.AllDay)
	if err != nil {
		return nil, err
	}
	end, err := s.eventTime(req.End, req.AllDay)
	if err != nil {
		return nil, err
	}
	return &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Location:    req.Location,
		Start:       start,
		End:         end,
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 30},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}, nil
}

// eventTime accepts a date for all-day events, otherwise RFC3339 or a local
// "2006-01-02T15:04" interpreted in the school time zone.
func (s *GoogleCalendarService) eventTime(value string, allDay bool) (*calendar.EventDateTime, error) {
	if allDay {
		if _, err := time.Parse(dateLayout, value); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "all-day events need YYYY-MM-DD dates")
		}
		return &calendar.EventDateTime{Date: value}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		if t, err = time.ParseInLocation(localTimeLayout, value, s.loc); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid event time")
		}
	}
	return &calendar.EventDateTime{DateTime: t.Format(time.RFC3339), TimeZone: calendarZone}, nil
}

func (s *GoogleCalendarService) translate(err error, op string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound, http.StatusGone:
			return appErrors.Clone(appErrors.ErrNotFound, "google calendar event not found")
		case http.StatusUnauthorized, http.StatusForbidden:
			return appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "google calendar access denied")
		}
	}
	s.logger.Warn("google calendar call failed", zap.String("op", op), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrBadGateway.Code, appErrors.ErrBadGateway.Status, "google calendar request failed")
}

func toGoogleEvent(e *calendar.Event) models.GoogleEvent {
	out := models.GoogleEvent{ID: e.Id, Summary: e.Summary, Description: e.Description, Location: e.Location, HTMLLink: e.HtmlLink}
	if e.Start != nil {
		if e.Start.Date != "" {
			out.Start, out.AllDay = e.Start.Date, true
		} else {
			out.Start = e.Start.DateTime
		}
	}
	if e.End != nil {
		if e.End.Date != "" {
			out.End = e.End.Date
		} else {
			out.End = e.End.DateTime
		}
	}
	return out
}
