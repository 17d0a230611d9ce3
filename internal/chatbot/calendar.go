package chatbot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

// deleteWindow is how far apart in minutes a spoken time and an event's
// start may be for the event to count as the one meant.
const deleteWindow = 30

var weekdayNames = [...]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

func longDate(t time.Time) string {
	return fmt.Sprintf("%d년 %02d월 %02d일", t.Year(), int(t.Month()), t.Day())
}

func shortDate(t time.Time) string {
	return fmt.Sprintf("%02d월 %02d일", int(t.Month()), t.Day())
}

func (b *Bot) events(ctx context.Context, userID string, from, to time.Time) ([]models.CalendarEvent, error) {
	events, err := b.calendar.ListByUser(ctx, userID, models.CalendarRange{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (b *Bot) createEvent(ctx context.Context, req Request) (string, error) {
	draft, err := b.extract.ParseEvent(req.Message)
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			return replyBadDate, nil
		}
		return "", err
	}
	event := draft.Event(req.UserID)
	if err := b.calendar.Create(ctx, event); err != nil {
		return "", fmt.Errorf("create event: %w", err)
	}

	when := shortDate(draft.Date)
	if draft.Start != nil {
		when += " " + draft.Start.String() + " - " + draft.End.String()
	}
	return fmt.Sprintf("✅ 일정이 성공적으로 등록되었습니다!\n\n📅 %s\n📝 %s\n🏷️ %s", when, draft.Title, draft.EventType), nil
}

func (b *Bot) deleteEvent(ctx context.Context, req Request) (string, error) {
	date, err := b.extract.ExtractDate(req.Message)
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			return replyBadDate, nil
		}
		return "", err
	}
	spoken, hasTime := ExtractTime(req.Message)
	title := ExtractTitle(req.Message, ActionDelete)

	events, err := b.events(ctx, req.UserID, date, date)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return longDate(date) + "에는 삭제할 일정이 없습니다.", nil
	}

	var target *models.CalendarEvent
	for i := range events {
		if matchesDeletion(events[i], title, spoken, hasTime) {
			target = &events[i]
			break
		}
	}
	if target == nil {
		return fmt.Sprintf("%s에 '%s' 일정을 찾을 수 없습니다.", longDate(date), title), nil
	}
	if err := b.calendar.Delete(ctx, req.UserID, target.ID); err != nil {
		return "", fmt.Errorf("delete event: %w", err)
	}
	return fmt.Sprintf("✅ '%s' 일정이 성공적으로 삭제되었습니다.", target.Title), nil
}

// matchesDeletion decides whether event is a candidate. A title must be
// contained in the event title, and when both sides carry a time the starts
// must be within the window. Without a title the time alone decides.
func matchesDeletion(event models.CalendarEvent, title string, spoken Clock, hasTime bool) bool {
	var start Clock
	eventHasTime := false
	if event.StartTime != nil {
		start, eventHasTime = ParseClock(*event.StartTime)
	}
	near := func() bool {
		diff := start.Minutes() - spoken.Minutes()
		if diff < 0 {
			diff = -diff
		}
		return diff <= deleteWindow
	}

	if title == "" {
		return hasTime && eventHasTime && near()
	}
	if !strings.Contains(strings.ToLower(event.Title), strings.ToLower(title)) {
		return false
	}
	if hasTime && eventHasTime {
		return near()
	}
	return true
}

// dayScheduleAt lists the events offset days from today. A label renders the
// "오늘(...)" style heading; without one the plain date is used.
func (b *Bot) dayScheduleAt(offset int, label string) func(context.Context, Request) (string, error) {
	return func(ctx context.Context, req Request) (string, error) {
		return b.daySchedule(ctx, req.UserID, b.extract.Today().AddDate(0, 0, offset), label)
	}
}

func (b *Bot) dateSchedule(ctx context.Context, req Request) (string, error) {
	date, found, err := b.extract.ExtractAbsoluteDate(req.Message)
	switch {
	case err != nil:
		return replyBadDate, nil
	case !found:
		return replyAskDate, nil
	}
	return b.daySchedule(ctx, req.UserID, date, "")
}

func (b *Bot) daySchedule(ctx context.Context, userID string, date time.Time, label string) (string, error) {
	events, err := b.events(ctx, userID, date, date)
	if err != nil {
		return "", err
	}
	heading := longDate(date)
	if label != "" {
		heading = label + "(" + heading + ")"
	}
	if len(events) == 0 {
		return heading + "은 일정이 없습니다.", nil
	}

	var sb strings.Builder
	sb.WriteString("📅 " + heading + "의 일정입니다:\n\n")
	for i, e := range events {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, e.Title)
		if line := timeLine(e); line != "" {
			sb.WriteString("   " + line + "\n")
		}
		if e.Location != nil && *e.Location != "" {
			sb.WriteString("   📍 " + *e.Location + "\n")
		}
		if e.Description != nil && *e.Description != "" {
			sb.WriteString("   📝 " + *e.Description + "\n")
		}
		sb.WriteString("   🏷️ " + e.EventType + "\n\n")
	}
	return sb.String(), nil
}

func (b *Bot) weekSchedule(ctx context.Context, req Request) (string, error) {
	today := b.extract.Today()
	start := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	end := start.AddDate(0, 0, 6)
	span := shortDate(start) + " ~ " + shortDate(end)

	events, err := b.events(ctx, req.UserID, start, end)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return "이번 주(" + span + ")은 일정이 없습니다.", nil
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartDate.Before(events[j].StartDate)
	})

	var sb strings.Builder
	sb.WriteString("📅 이번 주(" + span + ") 일정입니다:\n\n")
	for i := 0; i < len(events); {
		day := events[i].StartDate
		fmt.Fprintf(&sb, "📆 %s (%s)\n", shortDate(day), weekdayNames[day.Weekday()])
		for ; i < len(events) && sameDay(events[i].StartDate, day); i++ {
			e := events[i]
			sb.WriteString("  • " + e.Title + "\n")
			if line := timeLine(e); line != "" {
				sb.WriteString("    " + line + "\n")
			}
			sb.WriteString("    🏷️ " + e.EventType + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func timeLine(e models.CalendarEvent) string {
	if e.IsAllDay {
		return "📅 종일 일정"
	}
	if e.StartTime == nil || e.EndTime == nil {
		return ""
	}
	start, ok1 := ParseClock(*e.StartTime)
	end, ok2 := ParseClock(*e.EndTime)
	if !ok1 || !ok2 {
		return ""
	}
	return "⏰ " + start.String() + " - " + end.String()
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
