package models

import "time"

// Event types inferred from chat messages.
const (
	EventTypeClass    = "수업"
	EventTypeExam     = "시험"
	EventTypeMeeting  = "상담"
	EventTypeEvent    = "행사"
	EventTypePersonal = "개인일정"
)

var eventColors = map[string]string{
	EventTypeClass:    "#3788d8",
	EventTypeExam:     "#dc3545",
	EventTypeMeeting:  "#6f42c1",
	EventTypeEvent:    "#28a745",
	EventTypePersonal: "#ffc107",
}

// EventColor returns the display color for an event type. Unknown types use
// the personal color.
func EventColor(eventType string) string {
	if c, ok := eventColors[eventType]; ok {
		return c
	}
	return eventColors[EventTypePersonal]
}

// CalendarEvent is a local calendar entry owned by a user. StartTime and
// EndTime hold "HH:MM" and are nil for all-day events.
type CalendarEvent struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	StartTime   *string   `db:"start_time" json:"start_time,omitempty"`
	EndTime     *string   `db:"end_time" json:"end_time,omitempty"`
	EventType   string    `db:"event_type" json:"event_type"`
	Color       string    `db:"color" json:"color"`
	IsAllDay    bool      `db:"is_all_day" json:"is_all_day"`
	Location    *string   `db:"location" json:"location,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CalendarEventRequest creates or replaces a local event.
type CalendarEventRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	StartTime   string `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime     string `json:"end_time" validate:"omitempty,datetime=15:04"`
	EventType   string `json:"event_type" validate:"omitempty,oneof=수업 시험 상담 행사 개인일정"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	IsAllDay    bool   `json:"is_all_day"`
	Location    string `json:"location" validate:"max=200"`
}

// CalendarRange bounds an event query by inclusive dates.
type CalendarRange struct {
	From time.Time
	To   time.Time
}

// GoogleEventRequest creates or replaces an event on Google Calendar.
type GoogleEventRequest struct {
	Summary     string `json:"summary" validate:"required,max=200"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Start       string `json:"start" validate:"required"`
	End         string `json:"end" validate:"required"`
	AllDay      bool   `json:"all_day"`
}

// GoogleEvent is the projection of a Google Calendar event returned to clients.
type GoogleEvent struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	AllDay      bool   `json:"all_day"`
	HTMLLink    string `json:"html_link,omitempty"`
}

// GoogleCalendar is a calendar list entry.
type GoogleCalendar struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Primary  bool   `json:"primary"`
	TimeZone string `json:"time_zone,omitempty"`
}

// GoogleCalendarStatus reports whether the user has linked Google.
type GoogleCalendarStatus struct {
	Linked    bool       `json:"linked"`
	Email     string     `json:"email,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
