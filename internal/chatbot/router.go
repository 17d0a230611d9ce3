// Package chatbot answers free-text chat messages by dispatching them to
// canned calendar, attendance and grade queries, falling back to a language
// model when nothing matches.
package chatbot

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-assistant-api/internal/ai"
	"github.com/noah-isme/school-assistant-api/internal/models"
	"github.com/noah-isme/school-assistant-api/internal/service"
	appErrors "github.com/noah-isme/school-assistant-api/pkg/errors"
)

// Replies shared by several handlers.
const (
	replyHandlerFailed = "죄송합니다. 메시지 처리 중 오류가 발생했습니다."
	replyAIFailed      = "죄송합니다. AI 응답 생성 중 오류가 발생했습니다."
	replyModelUnknown  = "현재 사용 중인 AI 모델을 확인할 수 없습니다."
	replyNeedLogin     = "일정 기능을 사용하려면 로그인이 필요합니다."
	replyAskDate       = "어떤 날짜의 일정을 알고 싶으신가요? '8월 6일' 또는 '8/6' 형식으로 입력해주세요."
	replyBadDate       = "날짜 형식이 올바르지 않습니다. '8월 6일' 또는 '8/6' 형식으로 입력해주세요."
)

// Intent names reported with each reply and counted in metrics.
const (
	IntentModelInfo      = "model_info"
	IntentCalendarCreate = "calendar_create"
	IntentCalendarDelete = "calendar_delete"
	IntentScheduleToday  = "schedule_today"
	IntentScheduleTmrw   = "schedule_tomorrow"
	IntentScheduleDay2   = "schedule_day_after"
	IntentScheduleDay3   = "schedule_three_days"
	IntentScheduleWeek   = "schedule_week"
	IntentScheduleDate   = "schedule_date"
	IntentAttendance     = "attendance"
	IntentGrades         = "grades"
	IntentAIFallback     = "ai_fallback"
)

var (
	modelInfoWords = []string{"현재 연동", "연동된 모델", "어떤 모델", "ai 모델", "모델 정보"}
	addWords       = []string{"등록해줘", "등록", "추가해줘", "추가", "일정 등록", "일정 추가"}
	removeWords    = []string{"삭제해줘", "삭제", "취소해줘", "취소", "일정 삭제", "일정 취소"}
	todayWords     = []string{"오늘 일정", "오늘의 일정", "오늘 스케줄", "오늘 일정이", "오늘 일정은"}
	tomorrowWords  = []string{"내일 일정", "내일의 일정", "내일 스케줄", "내일 일정이", "내일 일정은"}
	dayAfterWords  = []string{"모레 일정", "모레의 일정", "모레 스케줄"}
	threeDayWords  = []string{"글피 일정", "글피의 일정", "글피 스케줄"}
	weekWords      = []string{"이번 주 일정", "이번주 일정", "주간 일정", "이번 주 스케줄"}
)

// CalendarStore persists the chat user's local calendar events.
type CalendarStore interface {
	ListByUser(ctx context.Context, userID string, rng models.CalendarRange) ([]models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent) error
	Delete(ctx context.Context, userID, id string) error
}

// GradeQueries answers grade questions.
type GradeQueries interface {
	AcademicYear() int
	Rankings(ctx context.Context, filter models.RankingFilter) ([]models.StudentAverage, error)
	SubjectAnalysis(ctx context.Context, name string) (*models.SubjectAnalysis, error)
	ClassAnalysis(ctx context.Context, grade, classNum int) (*models.ClassGradeSummary, error)
	ExamAnalysis(ctx context.Context, q models.ExamQuery) (*models.ExamAnalysis, error)
	History(ctx context.Context, name string) (*models.GradeHistory, error)
	StudentGradesByName(ctx context.Context, name string) (*models.StudentGradeReport, error)
	SubjectNames(ctx context.Context) ([]string, error)
	ExamNames(ctx context.Context) ([]string, error)
}

// AttendanceQueries answers attendance questions.
type AttendanceQueries interface {
	StudentAttendanceByName(ctx context.Context, name string) (*models.StudentAttendance, error)
	GradeBreakdown(ctx context.Context, name string) ([]models.YearAttendance, error)
	Ranking(ctx context.Context, limit int, ascending bool) ([]models.AttendanceRanking, error)
}

// Request is one chat message. UserID owns calendar changes.
type Request struct {
	Message string
	UserID  string
}

// Reply is the routed answer.
type Reply struct {
	Intent string
	Text   string
}

type route struct {
	name   string
	match  func(msg, lower string) bool
	handle func(ctx context.Context, req Request) (string, error)
}

// Options wires a Bot.
type Options struct {
	Calendar   CalendarStore
	Grades     GradeQueries
	Attendance AttendanceQueries
	Directory  Directory
	Provider   ai.Provider
	Extractor  *Extractor
	Metrics    *service.MetricsService
	Logger     *zap.Logger

	// AcademicYear scopes roster lookups and empty-state replies.
	AcademicYear int
	// ContextStudentLimit caps the student names sent to the model.
	ContextStudentLimit int
}

// Bot routes chat messages. The route table is evaluated in order and the
// first match handles the message.
type Bot struct {
	calendar   CalendarStore
	grades     GradeQueries
	attendance AttendanceQueries
	directory  Directory
	provider   ai.Provider
	extract    *Extractor
	metrics    *service.MetricsService
	studentCap int
	year       int
	logger     *zap.Logger
	routes     []route
}

// New constructs a Bot.
func New(opts Options) *Bot {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Extractor == nil {
		opts.Extractor = NewExtractor(0, nil, nil)
	}
	if opts.AcademicYear <= 0 && opts.Grades != nil {
		opts.AcademicYear = opts.Grades.AcademicYear()
	}
	if opts.ContextStudentLimit <= 0 {
		opts.ContextStudentLimit = 10
	}
	b := &Bot{
		calendar:   opts.Calendar,
		grades:     opts.Grades,
		attendance: opts.Attendance,
		directory:  opts.Directory,
		provider:   opts.Provider,
		extract:    opts.Extractor,
		metrics:    opts.Metrics,
		studentCap: opts.ContextStudentLimit,
		year:       opts.AcademicYear,
		logger:     opts.Logger,
	}
	b.routes = b.table()
	return b
}

func (b *Bot) table() []route {
	has := func(words ...string) func(string, string) bool {
		return func(msg, _ string) bool { return containsAny(msg, words...) }
	}
	return []route{
		{IntentModelInfo, func(_, lower string) bool { return containsAny(lower, modelInfoWords...) }, b.modelInfo},
		{IntentCalendarCreate, has(addWords...), b.withUser(b.createEvent)},
		{IntentCalendarDelete, has(removeWords...), b.withUser(b.deleteEvent)},
		{IntentScheduleToday, has(todayWords...), b.withUser(b.dayScheduleAt(0, "오늘"))},
		{IntentScheduleTmrw, has(tomorrowWords...), b.withUser(b.dayScheduleAt(1, "내일"))},
		{IntentScheduleDay2, has(dayAfterWords...), b.withUser(b.dayScheduleAt(2, ""))},
		{IntentScheduleDay3, has(threeDayWords...), b.withUser(b.dayScheduleAt(3, ""))},
		{IntentScheduleWeek, has(weekWords...), b.withUser(b.weekSchedule)},
		{IntentScheduleDate, isDateScheduleQuery, b.withUser(b.dateSchedule)},
		{IntentAttendance, has("출결", "출석"), b.attendanceQuery},
		{IntentGrades, has("성적", "점수"), b.gradeQuery},
		{IntentAIFallback, func(string, string) bool { return true }, b.fallback},
	}
}

func isDateScheduleQuery(msg, _ string) bool {
	return containsAny(msg, "일정", "스케줄") &&
		containsAny(msg, "월", "/") &&
		!containsAny(msg, "등록", "추가", "삭제", "취소")
}

// Route picks the handler for a message, runs it and converts handler errors
// into a fixed apology.
func (b *Bot) Route(ctx context.Context, req Request) Reply {
	msg := strings.TrimSpace(req.Message)
	lower := strings.ToLower(msg)
	req.Message = msg

	for _, r := range b.routes {
		if !r.match(msg, lower) {
			continue
		}
		b.metrics.RecordChatIntent(r.name)
		text, err := r.handle(ctx, req)
		if err != nil {
			b.logger.Error("chat handler failed",
				zap.String("intent", r.name),
				zap.String("user_id", req.UserID),
				zap.Error(err),
			)
			text = replyHandlerFailed
		}
		return Reply{Intent: r.name, Text: text}
	}
	return Reply{Intent: IntentAIFallback, Text: replyHandlerFailed}
}

// Info reports the configured model provider.
func (b *Bot) Info() models.AIStatus {
	if b.provider == nil {
		return models.AIStatus{}
	}
	info := b.provider.Info()
	return models.AIStatus{Configured: true, Provider: info.Provider, Model: info.Model}
}

func (b *Bot) modelInfo(context.Context, Request) (string, error) {
	if b.provider == nil {
		return replyModelUnknown, nil
	}
	info := b.provider.Info()
	return "현재 " + info.Provider + "의 " + info.Model + " 모델을 사용하고 있습니다.", nil
}

// withUser guards calendar handlers that need an owner.
func (b *Bot) withUser(next func(context.Context, Request) (string, error)) func(context.Context, Request) (string, error) {
	return func(ctx context.Context, req Request) (string, error) {
		if req.UserID == "" {
			return replyNeedLogin, nil
		}
		return next(ctx, req)
	}
}

func notFound(err error) bool {
	return errors.Is(err, appErrors.ErrNotFound)
}

func (b *Bot) generate(ctx context.Context, system, user string) (string, error) {
	if b.provider == nil {
		return "", ai.ErrNotConfigured
	}
	start := time.Now()
	text, err := b.provider.Generate(ctx, system, user)
	b.metrics.ObserveAIRequest(b.provider.Info().Provider, err, time.Since(start))
	return text, err
}
