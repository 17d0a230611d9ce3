package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/noah-isme/school-assistant-api/internal/models"
	appErrors "github.com/noah-isme/school-assistant-api/pkg/errors"
)

type staticTokens struct{ err error }

func (s staticTokens) TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error) {
	if s.err != nil {
		return nil, s.err
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok-" + userID}), nil
}

func newCalendarAPI(t *testing.T, handler http.HandlerFunc) *GoogleCalendarService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return NewGoogleCalendarService(staticTokens{}, loc, nil, option.WithEndpoint(srv.URL+"/"))
}

func TestGoogleCalendarCreateEventSendsReminders(t *testing.T) {
	var body map[string]interface{}
	svc := newCalendarAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/primary/events"))
		assert.Equal(t, "Bearer tok-u1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"g1","summary":"학부모 상담","start":{"dateTime":"2025-01-11T15:00:00+09:00"},"end":{"dateTime":"2025-01-11T16:00:00+09:00"}}`))
	})

	event, err := svc.CreateEvent(context.Background(), "u1", models.GoogleEventRequest{
		Summary: "학부모 상담",
		Start:   "2025-01-11T15:00",
		End:     "2025-01-11T16:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "g1", event.ID)
	assert.False(t, event.AllDay)

	start := body["start"].(map[string]interface{})
	assert.Equal(t, "2025-01-11T15:00:00+09:00", start["dateTime"])
	assert.Equal(t, "Asia/Seoul", start["timeZone"])
	reminders := body["reminders"].(map[string]interface{})
	assert.Equal(t, false, reminders["useDefault"])
	assert.Len(t, reminders["overrides"], 2)
}

func TestGoogleCalendarEventsMapsAllDay(t *testing.T) {
	svc := newCalendarAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"g2","summary":"체육대회","start":{"date":"2025-05-01"},"end":{"date":"2025-05-02"}}]}`))
	})

	events, err := svc.Events(context.Background(), "u1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].AllDay)
	assert.Equal(t, "2025-05-01", events[0].Start)
}

func TestGoogleCalendarDeleteNotFound(t *testing.T) {
	svc := newCalendarAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Not Found"}}`))
	})

	err := svc.DeleteEvent(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestGoogleCalendarUpstreamFailureIsBadGateway(t *testing.T) {
	svc := newCalendarAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := svc.Calendars(context.Background(), "u1")
	assert.ErrorIs(t, err, appErrors.ErrBadGateway)
}

func TestGoogleCalendarRequiresLink(t *testing.T) {
	svc := NewGoogleCalendarService(staticTokens{err: appErrors.Clone(appErrors.ErrForbidden, "google account is not linked")}, nil, nil)
	_, err := svc.Calendars(context.Background(), "u1")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestGoogleCalendarValidatesTimes(t *testing.T) {
	svc := NewGoogleCalendarService(staticTokens{}, nil, nil)
	_, err := svc.CreateEvent(context.Background(), "u1", models.GoogleEventRequest{Summary: "x", Start: "tomorrow", End: "later"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.CreateEvent(context.Background(), "u1", models.GoogleEventRequest{Summary: "x", Start: "2025-05-01T09:00", End: "2025-05-01T10:00", AllDay: true})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
