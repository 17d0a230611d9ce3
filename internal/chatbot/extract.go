package chatbot

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

// ErrInvalidDate is returned when a month/day token names a day that does
// not exist, e.g. "13월 40일".
var ErrInvalidDate = errors.New("invalid calendar date")

var (
	// Tried in order; the first match wins.
	absoluteDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)월\s*(\d+)일`),
		regexp.MustCompile(`(\d+)/(\d+)`),
		regexp.MustCompile(`(\d+)\s+(\d+)`),
	}
	timePattern     = regexp.MustCompile(`(\d{1,2})시\s*(\d{0,2})분?`)
	classPattern    = regexp.MustCompile(`(\d+)학년\s*(\d+)반`)
	gradePattern    = regexp.MustCompile(`([1-3])학년`)
	countPattern    = regexp.MustCompile(`(\d+)\s*명`)
	relativeDayPats = regexp.MustCompile(`오늘|내일|모레|글피`)
	meridiemPattern = regexp.MustCompile(`오전|오후`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

var relativeDays = []struct {
	word   string
	offset int
}{
	{"오늘", 0},
	{"내일", 1},
	{"모레", 2},
	{"글피", 3},
}

// Action keywords removed from titles, longest first so "등록해줘" is not
// left as "해줘".
var (
	createWords = []string{"일정 등록", "일정 추가", "등록해줘", "추가해줘", "등록", "추가"}
	deleteWords = []string{"일정 삭제", "일정 취소", "삭제해줘", "취소해줘", "삭제", "취소"}
	fillerWords = map[string]bool{"일정": true, "일정을": true, "일정이": true, "일정은": true, "에": true, "좀": true, "해줘": true}
	// Trailing particles stripped from a title word, but only after a
	// known event noun so names such as "김지은" stay intact.
	particles = []string{"에서", "을", "를", "에", "이", "가", "은", "는"}
	// Nouns besides the event type keywords that commonly take a particle.
	titleNouns = []string{"회의", "모임", "약속", "점검", "회식", "출장", "연수", "방문"}
)

var eventTypeKeywords = []struct {
	eventType string
	keywords  []string
}{
	{models.EventTypeClass, []string{"수업", "강의", "교육"}},
	{models.EventTypeExam, []string{"시험", "고사", "평가", "검사"}},
	{models.EventTypeMeeting, []string{"상담", "면담", "미팅"}},
	{models.EventTypeEvent, []string{"행사", "축제", "대회", "식"}},
}

// Clock is a time of day.
type Clock struct {
	Hour   int
	Minute int
}

// String renders the clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// NextHour returns the clock one hour later, wrapping past midnight.
func (c Clock) NextHour() Clock {
	return Clock{Hour: (c.Hour + 1) % 24, Minute: c.Minute}
}

// ParseClock reads an "HH:MM" or "HH:MM:SS" string.
func ParseClock(s string) (Clock, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return Clock{}, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return Clock{}, false
	}
	return Clock{Hour: h, Minute: m}, true
}

// Extractor resolves dates relative to a clock and pins month/day dates to a
// configured year.
type Extractor struct {
	pinnedYear int
	loc        *time.Location
	now        func() time.Time
}

// NewExtractor constructs an extractor. A nil now uses time.Now.
func NewExtractor(pinnedYear int, loc *time.Location, now func() time.Time) *Extractor {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	if pinnedYear <= 0 {
		pinnedYear = now().In(loc).Year()
	}
	return &Extractor{pinnedYear: pinnedYear, loc: loc, now: now}
}

// Today returns midnight of the current day in the extractor's location.
func (e *Extractor) Today() time.Time {
	t := e.now().In(e.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, e.loc)
}

// PinnedYear returns the year used for month/day dates.
func (e *Extractor) PinnedYear() int {
	return e.pinnedYear
}

// ExtractDate resolves the date a message refers to. An absolute month/day
// overrides a relative keyword; neither means today.
func (e *Extractor) ExtractDate(msg string) (time.Time, error) {
	date, found, err := e.ExtractAbsoluteDate(msg)
	if err != nil {
		return time.Time{}, err
	}
	if found {
		return date, nil
	}
	today := e.Today()
	for _, rd := range relativeDays {
		if strings.Contains(msg, rd.word) {
			return today.AddDate(0, 0, rd.offset), nil
		}
	}
	return today, nil
}

// ExtractAbsoluteDate finds a month/day token. found is false when the
// message carries none.
func (e *Extractor) ExtractAbsoluteDate(msg string) (date time.Time, found bool, err error) {
	for _, pattern := range absoluteDatePatterns {
		m := pattern.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		date = time.Date(e.pinnedYear, time.Month(month), day, 0, 0, 0, 0, e.loc)
		if month < 1 || month > 12 || date.Month() != time.Month(month) || date.Day() != day {
			return time.Time{}, true, fmt.Errorf("%w: %d월 %d일", ErrInvalidDate, month, day)
		}
		return date, true, nil
	}
	return time.Time{}, false, nil
}

// ExtractTime finds an "N시 [M분]" token. 오후 moves 1..11 into the
// afternoon and 오전 12시 means midnight. Out of range values are ignored.
func ExtractTime(msg string) (Clock, bool) {
	m := timePattern.FindStringSubmatch(msg)
	if m == nil {
		return Clock{}, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	switch {
	case strings.Contains(msg, "오후") && hour >= 1 && hour <= 11:
		hour += 12
	case strings.Contains(msg, "오전") && hour == 12:
		hour = 0
	}
	if hour > 23 || minute > 59 {
		return Clock{}, false
	}
	return Clock{Hour: hour, Minute: minute}, true
}

// Action selects which keyword set ExtractTitle strips.
type Action int

// Title extraction modes.
const (
	ActionCreate Action = iota
	ActionDelete
)

// ExtractTitle strips date, time, action keywords and particles from a
// message and returns what is left.
func ExtractTitle(msg string, action Action) string {
	title := timePattern.ReplaceAllString(msg, " ")
	title = meridiemPattern.ReplaceAllString(title, " ")
	title = relativeDayPats.ReplaceAllString(title, " ")
	title = absoluteDatePatterns[0].ReplaceAllString(title, " ")
	title = absoluteDatePatterns[1].ReplaceAllString(title, " ")

	words := createWords
	if action == ActionDelete {
		words = deleteWords
	}
	for _, w := range words {
		title = strings.ReplaceAll(title, w, " ")
	}

	var kept []string
	for _, word := range strings.Fields(title) {
		if fillerWords[word] {
			continue
		}
		word = stripParticle(word)
		if word == "" || fillerWords[word] {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

func stripParticle(word string) string {
	for _, p := range particles {
		stem, ok := strings.CutSuffix(word, p)
		if ok && isEventNoun(stem) {
			return stem
		}
	}
	return word
}

// isEventNoun reports whether word ends in a known event noun, e.g.
// "학부모상담" or "시험".
func isEventNoun(word string) bool {
	if word == "" {
		return false
	}
	for _, n := range titleNouns {
		if strings.HasSuffix(word, n) {
			return true
		}
	}
	for _, bucket := range eventTypeKeywords {
		for _, kw := range bucket.keywords {
			if strings.HasSuffix(word, kw) {
				return true
			}
		}
	}
	return false
}

// InferEventType maps text onto an event type by keyword bucket. The first
// matching bucket wins; nothing matching is a personal event.
func InferEventType(text string) string {
	for _, bucket := range eventTypeKeywords {
		for _, kw := range bucket.keywords {
			if strings.Contains(text, kw) {
				return bucket.eventType
			}
		}
	}
	return models.EventTypePersonal
}

// EventDraft is an event parsed from a chat message.
type EventDraft struct {
	Date      time.Time
	Start     *Clock
	End       *Clock
	Title     string
	EventType string
}

// ParseEvent builds an event draft from a create message. The end time is
// one hour after the start and wraps at midnight on the same date.
func (e *Extractor) ParseEvent(msg string) (*EventDraft, error) {
	date, err := e.ExtractDate(msg)
	if err != nil {
		return nil, err
	}
	draft := &EventDraft{Date: date, Title: ExtractTitle(msg, ActionCreate)}
	if start, ok := ExtractTime(msg); ok {
		end := start.NextHour()
		draft.Start, draft.End = &start, &end
	}
	if draft.Title != "" {
		draft.EventType = InferEventType(draft.Title)
	} else {
		draft.EventType = InferEventType(msg)
		draft.Title = draft.EventType
	}
	return draft, nil
}

// Event converts the draft into a calendar event owned by userID.
func (d *EventDraft) Event(userID string) *models.CalendarEvent {
	desc := d.EventType + " 관련 일정입니다."
	location := "학교"
	event := &models.CalendarEvent{
		UserID:      userID,
		Title:       d.Title,
		Description: &desc,
		StartDate:   d.Date,
		EndDate:     d.Date,
		EventType:   d.EventType,
		Color:       models.EventColor(d.EventType),
		IsAllDay:    d.Start == nil,
		Location:    &location,
	}
	if d.Start != nil {
		start, end := d.Start.String(), d.End.String()
		event.StartTime, event.EndTime = &start, &end
	}
	return event
}

// ExtractStudentName returns the first known name contained in the message.
func ExtractStudentName(msg string, names []string) string {
	return firstContained(msg, names)
}

func firstContained(msg string, names []string) string {
	for _, name := range names {
		if name != "" && strings.Contains(msg, name) {
			return name
		}
	}
	return ""
}

// ExtractClass finds a "{grade}학년 {class}반" token.
func ExtractClass(msg string) (grade, classNum int, ok bool) {
	m := classPattern.FindStringSubmatch(msg)
	if m == nil {
		return 0, 0, false
	}
	grade, _ = strconv.Atoi(m[1])
	classNum, _ = strconv.Atoi(m[2])
	return grade, classNum, true
}

// ExtractGrade finds the first "{1-3}학년" token.
func ExtractGrade(msg string) (int, bool) {
	m := gradePattern.FindStringSubmatch(msg)
	if m == nil {
		return 0, false
	}
	g, _ := strconv.Atoi(m[1])
	return g, true
}

// ExtractCount finds an "N명" token.
func ExtractCount(msg string) (int, bool) {
	m := countPattern.FindStringSubmatch(msg)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// containsAny reports whether s contains any of the keywords.
func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// squash removes whitespace.
func squash(s string) string {
	return spacePattern.ReplaceAllString(s, "")
}
