package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

const calendarColumns = `id, user_id, title, description, start_date, end_date, to_char(start_time, 'HH24:MI') AS start_time, to_char(end_time, 'HH24:MI') AS end_time, event_type, color, is_all_day, location, created_at, updated_at`

// CalendarRepository persists per-user calendar events.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs a calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// ListByUser returns a user's events overlapping the inclusive date range,
// ordered by start date then start time with all-day events first.
func (r *CalendarRepository) ListByUser(ctx context.Context, userID string, rng models.CalendarRange) ([]models.CalendarEvent, error) {
	query := fmt.Sprintf(`SELECT %s
FROM calendar_events
WHERE user_id = $1 AND start_date <= $3 AND end_date >= $2
ORDER BY start_date ASC, start_time ASC NULLS FIRST, created_at ASC`, calendarColumns)
	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, userID, rng.From, rng.To); err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	return events, nil
}

// GetByID fetches a calendar event.
func (r *CalendarRepository) GetByID(ctx context.Context, id string) (*models.CalendarEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM calendar_events WHERE id = $1`, calendarColumns)
	var event models.CalendarEvent
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get calendar event: %w", err)
	}
	return &event, nil
}

// Create inserts a calendar event.
func (r *CalendarRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	const query = `INSERT INTO calendar_events (id, user_id, title, description, start_date, end_date, start_time, end_time, event_type, color, is_all_day, location, created_at, updated_at)
VALUES (:id, :user_id, :title, :description, :start_date, :end_date, CAST(:start_time AS TIME), CAST(:end_time AS TIME), :event_type, :color, :is_all_day, :location, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of an event.
func (r *CalendarRepository) Update(ctx context.Context, event *models.CalendarEvent) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE calendar_events SET title = :title, description = :description, start_date = :start_date, end_date = :end_date,
start_time = CAST(:start_time AS TIME), end_time = CAST(:end_time AS TIME), event_type = :event_type, color = :color,
is_all_day = :is_all_day, location = :location, updated_at = :updated_at
WHERE id = :id AND user_id = :user_id`
	res, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update calendar event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update calendar event rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an event owned by the user.
func (r *CalendarRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM calendar_events WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete calendar event rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
