package chatbot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

func seedEvent(h *harness, title string, date time.Time, start, end string) {
	e := &models.CalendarEvent{
		UserID:    "user-1",
		Title:     title,
		StartDate: date,
		EndDate:   date,
		EventType: InferEventType(title),
		IsAllDay:  start == "",
	}
	if start != "" {
		e.StartTime, e.EndTime = strptr(start), strptr(end)
	}
	_ = h.calendar.Create(context.Background(), e)
}

func TestRouteModelInfo(t *testing.T) {
	h := newHarness()
	reply := h.ask("지금 어떤 모델 써?")
	assert.Equal(t, IntentModelInfo, reply.Intent)
	assert.Equal(t, "현재 OpenAI의 gpt-4o-mini 모델을 사용하고 있습니다.", reply.Text)

	bot := New(Options{Extractor: newTestExtractor()})
	reply = bot.Route(context.Background(), Request{Message: "AI 모델 정보 알려줘"})
	assert.Equal(t, replyModelUnknown, reply.Text)
}

func TestRouteAddBeatsDelete(t *testing.T) {
	h := newHarness()
	reply := h.ask("내일 회의 취소 일정 등록")
	assert.Equal(t, IntentCalendarCreate, reply.Intent)
	assert.Len(t, h.calendar.events, 1)
}

func TestRouteOrder(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"오늘 일정 알려줘", IntentScheduleToday},
		{"내일 일정은?", IntentScheduleTmrw},
		{"모레 일정", IntentScheduleDay2},
		{"글피 스케줄", IntentScheduleDay3},
		{"이번주 일정 보여줘", IntentScheduleWeek},
		{"8월 6일 일정 알려줘", IntentScheduleDate},
		{"김철수 출석 알려줘", IntentAttendance},
		{"김철수 출석 성적", IntentAttendance},
		{"김철수 성적 알려줘", IntentGrades},
		{"점심 메뉴 추천해줘", IntentAIFallback},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			h := newHarness()
			assert.Equal(t, tt.want, h.ask(tt.msg).Intent)
		})
	}
}

func TestCreateFromNaturalLanguage(t *testing.T) {
	h := newHarness()
	reply := h.ask("내일 오후 3시에 학부모 상담을 등록해줘")

	assert.Equal(t, "✅ 일정이 성공적으로 등록되었습니다!\n\n📅 01월 11일 15:00 - 16:00\n📝 학부모 상담\n🏷️ 상담", reply.Text)

	events, err := h.calendar.ListByUser(context.Background(), "user-1", models.CalendarRange{From: day(time.January, 11), To: day(time.January, 11)})
	require.NoError(t, err)
	require.Len(t, events, 1)
	e := events[0]
	assert.Contains(t, e.Title, "학부모")
	assert.Equal(t, models.EventTypeMeeting, e.EventType)
	assert.Equal(t, "15:00", *e.StartTime)
	assert.Equal(t, "16:00", *e.EndTime)
	assert.Equal(t, "#6f42c1", e.Color)
	assert.False(t, e.IsAllDay)
}

func TestCreateKeepsNameEndings(t *testing.T) {
	h := newHarness()

	h.ask("내일 오후 3시 김지은 학부모 상담 등록해줘")

	require.Len(t, h.calendar.events, 1)
	assert.Equal(t, "김지은 학부모 상담", h.calendar.events[0].Title)
	assert.Equal(t, models.EventTypeMeeting, h.calendar.events[0].EventType)
}

func TestCreateAllDayAndInvalidDate(t *testing.T) {
	h := newHarness()
	reply := h.ask("8월 6일 체육대회 추가")
	assert.Equal(t, "✅ 일정이 성공적으로 등록되었습니다!\n\n📅 08월 06일\n📝 체육대회\n🏷️ 행사", reply.Text)
	require.Len(t, h.calendar.events, 1)
	assert.True(t, h.calendar.events[0].IsAllDay)

	reply = h.ask("13월 40일 회의 등록")
	assert.Equal(t, replyBadDate, reply.Text)
	assert.Len(t, h.calendar.events, 1)
}

func TestCalendarRequiresUser(t *testing.T) {
	h := newHarness()
	reply := h.bot.Route(context.Background(), Request{Message: "오늘 일정 알려줘"})
	assert.Equal(t, replyNeedLogin, reply.Text)
}

func TestDeleteUntitledByTime(t *testing.T) {
	h := newHarness()
	seedEvent(h, "회의", day(time.January, 11), "15:00", "16:00")

	reply := h.ask("내일 오후 3시 20분 일정 삭제")
	assert.Equal(t, "✅ '회의' 일정이 성공적으로 삭제되었습니다.", reply.Text)
	assert.Empty(t, h.calendar.events)
}

func TestDeleteUntitledOutsideWindow(t *testing.T) {
	h := newHarness()
	seedEvent(h, "회의", day(time.January, 11), "15:00", "16:00")

	reply := h.ask("내일 오후 4시 일정 삭제")
	assert.Equal(t, "2025년 01월 11일에 '' 일정을 찾을 수 없습니다.", reply.Text)
	assert.Len(t, h.calendar.events, 1)
}

func TestDeleteByTitle(t *testing.T) {
	h := newHarness()
	seedEvent(h, "교무 회의", day(time.January, 10), "09:00", "10:00")
	seedEvent(h, "학부모 상담", day(time.January, 10), "15:00", "16:00")

	reply := h.ask("오늘 상담 취소해줘")
	assert.Equal(t, "✅ '학부모 상담' 일정이 성공적으로 삭제되었습니다.", reply.Text)
	require.Len(t, h.calendar.events, 1)
	assert.Equal(t, "교무 회의", h.calendar.events[0].Title)

	reply = h.ask("모레 회의 삭제")
	assert.Equal(t, "2025년 01월 12일에는 삭제할 일정이 없습니다.", reply.Text)
}

func TestTodaySchedule(t *testing.T) {
	h := newHarness()
	assert.Equal(t, "오늘(2025년 01월 10일)은 일정이 없습니다.", h.ask("오늘 일정 알려줘").Text)

	h.ask("오늘 오후 2시 수학 수업 등록")
	reply := h.ask("오늘 일정 알려줘")
	want := "📅 오늘(2025년 01월 10일)의 일정입니다:\n\n" +
		"1. 수학 수업\n" +
		"   ⏰ 14:00 - 15:00\n" +
		"   📍 학교\n" +
		"   📝 수업 관련 일정입니다.\n" +
		"   🏷️ 수업\n\n"
	assert.Equal(t, want, reply.Text)
}

func TestDayAfterUsesPlainDate(t *testing.T) {
	h := newHarness()
	assert.Equal(t, "2025년 01월 12일은 일정이 없습니다.", h.ask("모레 일정").Text)
}

func TestWeekSchedule(t *testing.T) {
	h := newHarness()
	assert.Equal(t, "이번 주(01월 06일 ~ 01월 12일)은 일정이 없습니다.", h.ask("이번 주 일정").Text)

	seedEvent(h, "학부모 상담", day(time.January, 8), "15:00", "16:00")
	seedEvent(h, "체육대회", day(time.January, 6), "", "")
	seedEvent(h, "다음주 시험", day(time.January, 13), "", "")

	want := "📅 이번 주(01월 06일 ~ 01월 12일) 일정입니다:\n\n" +
		"📆 01월 06일 (월요일)\n" +
		"  • 체육대회\n" +
		"    📅 종일 일정\n" +
		"    🏷️ 행사\n" +
		"\n" +
		"📆 01월 08일 (수요일)\n" +
		"  • 학부모 상담\n" +
		"    ⏰ 15:00 - 16:00\n" +
		"    🏷️ 상담\n" +
		"\n"
	assert.Equal(t, want, h.ask("주간 일정").Text)
}

func TestDateSchedule(t *testing.T) {
	h := newHarness()
	seedEvent(h, "졸업식", day(time.August, 6), "", "")

	reply := h.ask("8/6 일정 알려줘")
	assert.Equal(t, IntentScheduleDate, reply.Intent)
	assert.True(t, strings.HasPrefix(reply.Text, "📅 2025년 08월 06일의 일정입니다:\n\n1. 졸업식\n   📅 종일 일정\n"))

	assert.Equal(t, replyAskDate, h.ask("월요일 일정 알려줘").Text)
	assert.Equal(t, replyBadDate, h.ask("13월 1일 일정").Text)
}

func TestHandlerErrorBecomesApology(t *testing.T) {
	h := newHarness()
	h.calendar.err = errors.New("db down")
	reply := h.ask("오늘 일정 알려줘")
	assert.Equal(t, IntentScheduleToday, reply.Intent)
	assert.Equal(t, replyHandlerFailed, reply.Text)
}

func TestAttendanceStudent(t *testing.T) {
	h := newHarness()
	h.attendance.student = &models.StudentAttendance{
		Name:         "이영희",
		AcademicYear: 2025,
		Stats:        models.AttendanceStats{TotalDays: 20, PresentDays: 18, AbsentDays: 1, LateDays: 1, AttendanceRate: 90},
		Recent: []models.AttendanceRecord{
			{Date: day(time.January, 9), TypeName: "지각"},
			{Date: day(time.January, 8), TypeName: "출석"},
		},
	}

	want := "📊 이영희 학생의 출석 정보입니다:\n\n" +
		"📅 총 수업일: 20일\n✅ 출석: 18일\n❌ 결석: 1일\n⏰ 지각: 1일\n🏃 조퇴: 0일\n📈 출석률: 90.0%\n\n" +
		"📋 최근 출석 기록:\n  01월 09일: ⏰ 지각\n  01월 08일: ✅ 출석\n"
	assert.Equal(t, want, h.ask("이영희 출석 알려줘").Text)

	assert.Equal(t, "김철수 학생을 찾을 수 없습니다.", h.ask("김철수 출결").Text)

	h.attendance.student = &models.StudentAttendance{Name: "이영희", AcademicYear: 2025}
	assert.Equal(t, "이영희 학생의 2025년도 출석 정보가 없습니다.", h.ask("이영희 출석").Text)
}

func TestAttendanceByGrade(t *testing.T) {
	h := newHarness()
	h.attendance.breakdown = []models.YearAttendance{
		{AcademicYear: 2024, Grade: 1, AttendanceStats: models.AttendanceStats{TotalDays: 10, PresentDays: 9, AbsentDays: 1, AttendanceRate: 90}},
	}
	reply := h.ask("김철수 학년별 출석률 보여줘")
	assert.True(t, strings.HasPrefix(reply.Text, "📊 김철수 학생의 학년별 출석률입니다:\n\n🎓 1학년 (2024년)\n  📅 총 수업일: 10일\n"))
	assert.Contains(t, reply.Text, "  📈 출석률: 90.0%\n\n")
}

func TestAttendanceRanking(t *testing.T) {
	h := newHarness()
	h.attendance.ranking = []models.AttendanceRanking{
		{Name: "박민수", AttendanceStats: models.AttendanceStats{TotalDays: 10, PresentDays: 6, AbsentDays: 2, LateDays: 2, AttendanceRate: 60}},
	}

	reply := h.ask("출석률 가장 낮은 학생 3명")
	require.NotNil(t, h.attendance.asc)
	assert.True(t, *h.attendance.asc)
	assert.Equal(t, 3, h.attendance.limit)
	want := "📊 출석률이 가장 낮은 학생들 (상위 1명):\n\n1. 박민수\n   📅 총 수업일: 10일\n   ✅ 출석: 6일\n   ❌ 결석: 4일\n   📈 출석률: 60.0%\n\n"
	assert.Equal(t, want, reply.Text)

	h.ask("출석 제일 좋은 학생")
	assert.False(t, *h.attendance.asc)
	assert.Equal(t, 0, h.attendance.limit)

	h.attendance.ranking = nil
	assert.Equal(t, "2025년도 출석 데이터가 없습니다.", h.ask("출석 최악인 학생").Text)
	assert.Equal(t, replyAskAttendanceStudent, h.ask("출석 알려줘").Text)
}

func rankRows() []models.StudentAverage {
	return []models.StudentAverage{
		{Name: "김철수", Grade: 2, ClassNum: 1, Average: 95.26},
		{Name: "이영희", Grade: 1, ClassNum: 2, Average: 91},
		{Name: "박민수", Grade: 2, ClassNum: 2, Average: 88.4},
	}
}

func TestTopStudentsOnlyFirst(t *testing.T) {
	h := newHarness()
	h.grades.rankings = rankRows()

	reply := h.ask("전체 성적 1등은 누구야?")
	assert.Equal(t, "**전체 1등: 김철수 (2학년 1반) - 평균 95.3점**", reply.Text)
	assert.Equal(t, 1, h.grades.filters[0].Limit)
	assert.False(t, h.grades.filters[0].Ascending)

	reply = h.ask("2학년 성적 1등만 알려줘")
	assert.Equal(t, "**2학년 1등: 김철수 (2학년 1반) - 평균 95.3점**", reply.Text)
	assert.Equal(t, models.RankingFilter{Grade: 2, Limit: 1}, h.grades.filters[1])
}

func TestTopAndBottomLists(t *testing.T) {
	h := newHarness()
	h.grades.rankings = rankRows()

	reply := h.ask("성적 상위 학생 알려줘")
	assert.Equal(t, "**전체 성적 상위 3명 학생:**\n\n1위: 김철수 (2학년 1반) - 평균 95.3점\n2위: 이영희 (1학년 2반) - 평균 91.0점\n3위: 박민수 (2학년 2반) - 평균 88.4점", reply.Text)
	assert.Equal(t, defaultGradeRankLimit, h.grades.filters[0].Limit)

	h.ask("성적 꼴등 1명만")
	last := h.grades.filters[len(h.grades.filters)-1]
	assert.True(t, last.Ascending)
	assert.Equal(t, 1, last.Limit)

	reply = h.ask("3학년 성적 하위 학생")
	assert.Equal(t, "3학년 성적 하위 학생 정보를 찾을 수 없습니다.", reply.Text)
}

func TestClassAndSubjectAnalysis(t *testing.T) {
	h := newHarness()
	h.grades.class = &models.ClassGradeSummary{
		Class:    models.Class{Grade: 1, ClassNum: 2},
		Students: []models.StudentAverage{{Name: "이영희", Average: 91}, {Name: "최지원", Average: 80.5}},
	}
	h.grades.subject = &models.SubjectAnalysis{
		Subject: "수학",
		Overall: models.ScoreStats{Average: 78.3, Min: 40, Max: 100, Count: 120},
		ByGrade: []models.GradeLevelAverage{{Grade: 1, Average: 75}, {Grade: 2, Average: 81.6}},
	}

	assert.Equal(t, "**1학년 2반 성적 분석:**\n\n1위: 이영희 - 평균 91.0점\n2위: 최지원 - 평균 80.5점", h.ask("1학년 2반 성적 분석해줘").Text)
	assert.Equal(t, "해당 반의 성적 정보를 찾을 수 없습니다.", h.ask("3학년 1반 성적 분석").Text)

	want := "**수학 과목 분석:**\n\n**전체 통계:**\n- 평균: 78.3점\n- 최저: 40.0점\n- 최고: 100.0점\n- 총 성적 수: 120개\n\n**학년별 평균:**\n- 1학년: 평균 75.0점\n- 2학년: 평균 81.6점"
	assert.Equal(t, want, h.ask("수학 과목 분석 성적").Text)
	assert.Equal(t, "해당 과목의 성적 정보를 찾을 수 없습니다.", h.ask("체육 과목 분석 성적").Text)
}

func TestExamAnalysis(t *testing.T) {
	h := newHarness()
	h.grades.exam = &models.ExamAnalysis{
		Cells: []models.ExamCell{
			{Grade: 1, ClassNum: 1, Subject: "국어", ScoreStats: models.ScoreStats{Average: 80, Min: 60, Max: 95, Count: 10}},
			{Grade: 1, ClassNum: 1, Subject: "수학", ScoreStats: models.ScoreStats{Average: 70, Min: 50, Max: 90, Count: 10}},
			{Grade: 1, ClassNum: 2, Subject: "국어", ScoreStats: models.ScoreStats{Average: 90, Min: 85, Max: 99, Count: 5}},
		},
		StudentCount: 10,
	}

	reply := h.ask("1학기 중간고사 성적")
	assert.Equal(t, "1학기중간고사", h.grades.examQ.Exam)
	want := "**1학기중간고사 전체 반별 성적 분석:**\n\n" +
		"**1학년 1반:**\n**평균: 75.0점**\n  - 국어: 평균 80.0점\n  - 수학: 평균 70.0점\n\n" +
		"**1학년 2반:**\n**평균: 90.0점**\n  - 국어: 평균 90.0점"
	assert.Equal(t, want, reply.Text)

	reply = h.ask("1학기 기말고사 1학년 1반 수학 점수")
	assert.Equal(t, models.ExamQuery{Exam: "1학기기말고사", Subject: "수학", Grade: 1, ClassNum: 1}, h.grades.examQ)
	assert.True(t, strings.HasPrefix(reply.Text, "**1학기기말고사 수학 (1학년 1반) 성적 분석:**"))

	assert.Equal(t, replyUnknownExam, h.ask("3학기 중간고사 성적").Text)

	h.grades.exam = nil
	assert.Equal(t, "해당 시험의 영어 성적 정보를 찾을 수 없습니다.", h.ask("1학기 중간고사 영어 성적").Text)
}

func TestGradeHistoryAndStudentGrades(t *testing.T) {
	h := newHarness()
	h.grades.history = &models.GradeHistory{
		Name: "김철수",
		Years: []models.YearGrades{
			{AcademicYear: 2024, Grade: 1, ClassNum: 1, Average: 70, BySubject: map[string]float64{"국어": 70}, Subjects: []string{"국어"}},
			{AcademicYear: 2025, Grade: 2, ClassNum: 1, Average: 80, BySubject: map[string]float64{"국어": 80}, Subjects: []string{"국어"}},
		},
		Progress:           []models.SubjectProgress{{Subject: "국어", First: 70, Last: 80, Improvement: 10, Trend: "상승"}},
		Strengths:          []string{"국어"},
		OverallImprovement: 10,
		OverallTrend:       "상승",
	}
	h.grades.report = &models.StudentGradeReport{
		Student: models.StudentDetail{Student: models.Student{Name: "이영희"}, Grade: 1, ClassNum: 2},
		Grades:  []models.GradeRecord{{Subject: "국어", Exam: "1학기중간고사", Score: 88}},
	}

	reply := h.ask("김철수 1학년 2학년 3학년 성적")
	assert.Contains(t, reply.Text, "**김철수 학생의 학년별 성적 이력:**\n")
	assert.Contains(t, reply.Text, "**2024년도 (1학년 1반):**\n• 전체 평균: 70.0점\n• 과목별 평균: 국어: 70.0점")
	assert.Contains(t, reply.Text, "• 전체 성적 변화: +10.0점 (상승)")
	assert.Contains(t, reply.Text, "• 강점 과목: 국어")
	assert.Contains(t, reply.Text, "• 국어: +10.0점 (상승)")

	assert.Equal(t, "**이영희 (1학년 2반) 성적:**\n\n- 국어 1학기중간고사: 88.0점", h.ask("이영희 성적 알려줘").Text)
	assert.Equal(t, "박민수 학생의 성적 정보를 찾을 수 없습니다.", h.ask("박민수 점수").Text)
	assert.Equal(t, replyAskStudent, h.ask("성적 알려줘").Text)
}

func TestFallbackBuildsContext(t *testing.T) {
	h := newHarness()
	h.directory.classes = []models.Class{{Grade: 1, ClassNum: 1}, {Grade: 1, ClassNum: 2}}

	reply := h.ask("학교 소개해줘")
	assert.Equal(t, IntentAIFallback, reply.Intent)
	assert.Equal(t, "안녕하세요", reply.Text)
	assert.Equal(t, "학교 소개해줘", h.provider.user)
	assert.Contains(t, h.provider.system, "- 전체 학생 수: 3명")
	assert.Contains(t, h.provider.system, "- 전체 반 수: 2개")
	assert.Contains(t, h.provider.system, "선생님 명단: 김선생")
	assert.Contains(t, h.provider.system, "- 1학년 2반\n")
	assert.Contains(t, h.provider.system, "학생 명단 (일부): 김철수, 이영희, 박민수")
	assert.Contains(t, h.directory.limits, 10)
}

func TestFallbackFailures(t *testing.T) {
	h := newHarness()
	h.provider.err = errors.New("timeout")
	assert.Equal(t, replyAIFailed, h.ask("날씨 어때?").Text)

	h.provider.err = nil
	h.directory.err = errors.New("db down")
	reply := h.ask("날씨 어때?")
	assert.Equal(t, "안녕하세요", reply.Text)
	assert.Contains(t, h.provider.system, "- 전체 학생 수: 0명")

	bot := New(Options{Extractor: newTestExtractor(), Directory: h.directory})
	assert.Equal(t, replyAIFailed, bot.Route(context.Background(), Request{Message: "안녕"}).Text)
}

func TestInfo(t *testing.T) {
	h := newHarness()
	assert.Equal(t, models.AIStatus{Configured: true, Provider: "OpenAI", Model: "gpt-4o-mini"}, h.bot.Info())
	assert.False(t, New(Options{}).Info().Configured)
}
