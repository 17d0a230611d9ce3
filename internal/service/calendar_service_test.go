package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-assistant-api/internal/models"
	appErrors "github.com/noah-isme/school-assistant-api/pkg/errors"
)

type calendarRepoMock struct {
	events  map[string]*models.CalendarEvent
	created []*models.CalendarEvent
	updated []*models.CalendarEvent
}

func newCalendarRepoMock() *calendarRepoMock {
	return &calendarRepoMock{events: map[string]*models.CalendarEvent{}}
}

func (m *calendarRepoMock) ListByUser(ctx context.Context, userID string, rng models.CalendarRange) ([]models.CalendarEvent, error) {
	var out []models.CalendarEvent
	for _, e := range m.events {
		if e.UserID == userID && !e.StartDate.After(rng.To) && !e.EndDate.Before(rng.From) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *calendarRepoMock) GetByID(ctx context.Context, id string) (*models.CalendarEvent, error) {
	if e, ok := m.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *calendarRepoMock) Create(ctx context.Context, event *models.CalendarEvent) error {
	event.ID = "evt-" + event.Title
	m.events[event.ID] = event
	m.created = append(m.created, event)
	return nil
}

func (m *calendarRepoMock) Update(ctx context.Context, event *models.CalendarEvent) error {
	if _, ok := m.events[event.ID]; !ok {
		return sql.ErrNoRows
	}
	m.events[event.ID] = event
	m.updated = append(m.updated, event)
	return nil
}

func (m *calendarRepoMock) Delete(ctx context.Context, userID, id string) error {
	e, ok := m.events[id]
	if !ok || e.UserID != userID {
		return sql.ErrNoRows
	}
	delete(m.events, id)
	return nil
}

func TestCalendarServiceCreateDefaults(t *testing.T) {
	repo := newCalendarRepoMock()
	svc := NewCalendarService(repo, nil, nil)

	event, err := svc.Create(context.Background(), "u1", models.CalendarEventRequest{
		Title:     "중간고사",
		StartDate: "2025-04-21",
		StartTime: "09:00",
		EndTime:   "10:00",
		EventType: models.EventTypeExam,
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", event.UserID)
	assert.Equal(t, "#dc3545", event.Color)
	assert.False(t, event.IsAllDay)
	assert.Equal(t, event.StartDate, event.EndDate)
	require.NotNil(t, event.StartTime)
	assert.Equal(t, "09:00", *event.StartTime)
}

func TestCalendarServiceCreateAllDayWithoutTime(t *testing.T) {
	svc := NewCalendarService(newCalendarRepoMock(), nil, nil)
	event, err := svc.Create(context.Background(), "u1", models.CalendarEventRequest{Title: "개교기념일", StartDate: "2025-05-01"})
	require.NoError(t, err)
	assert.True(t, event.IsAllDay)
	assert.Nil(t, event.StartTime)
	assert.Equal(t, models.EventTypePersonal, event.EventType)
	assert.Equal(t, "#ffc107", event.Color)
}

func TestCalendarServiceCreateValidation(t *testing.T) {
	svc := NewCalendarService(newCalendarRepoMock(), nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", models.CalendarEventRequest{StartDate: "2025-05-01"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, "u1", models.CalendarEventRequest{Title: "x", StartDate: "2025-05-03", EndDate: "2025-05-01"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, "u1", models.CalendarEventRequest{Title: "x", StartDate: "2025-05-01", EventType: "회의"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestCalendarServiceUpdateChecksOwnership(t *testing.T) {
	repo := newCalendarRepoMock()
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	repo.events["e1"] = &models.CalendarEvent{ID: "e1", UserID: "owner", Title: "상담", StartDate: day, EndDate: day}
	svc := NewCalendarService(repo, nil, nil)
	req := models.CalendarEventRequest{Title: "학부모 상담", StartDate: "2025-05-02", EventType: models.EventTypeMeeting}

	_, err := svc.Update(context.Background(), "intruder", "e1", req)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	event, err := svc.Update(context.Background(), "owner", "e1", req)
	require.NoError(t, err)
	assert.Equal(t, "e1", event.ID)
	assert.Equal(t, "#6f42c1", event.Color)
	require.Len(t, repo.updated, 1)
}

func TestCalendarServiceDelete(t *testing.T) {
	repo := newCalendarRepoMock()
	repo.events["e1"] = &models.CalendarEvent{ID: "e1", UserID: "owner"}
	svc := NewCalendarService(repo, nil, nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), "other", "e1"), appErrors.ErrNotFound)
	require.NoError(t, svc.Delete(context.Background(), "owner", "e1"))
	assert.Empty(t, repo.events)
}

func TestCalendarServiceListRange(t *testing.T) {
	repo := newCalendarRepoMock()
	d1 := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 7)
	repo.events["a"] = &models.CalendarEvent{ID: "a", UserID: "u1", StartDate: d1, EndDate: d1}
	repo.events["b"] = &models.CalendarEvent{ID: "b", UserID: "u1", StartDate: d2, EndDate: d2}
	svc := NewCalendarService(repo, nil, nil)

	events, err := svc.List(context.Background(), "u1", models.CalendarRange{From: d1})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "a", events[0].ID)

	_, err = svc.List(context.Background(), "u1", models.CalendarRange{From: d2, To: d1})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
