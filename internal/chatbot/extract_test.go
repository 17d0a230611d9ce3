package chatbot

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

var kst = time.FixedZone("KST", 9*60*60)

// 2025-01-10 is a Friday.
func fixedNow() time.Time {
	return time.Date(2025, 1, 10, 10, 0, 0, 0, kst)
}

func newTestExtractor() *Extractor {
	return NewExtractor(2025, kst, fixedNow)
}

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, kst)
}

func TestExtractDate(t *testing.T) {
	e := newTestExtractor()
	tests := []struct {
		msg  string
		want time.Time
	}{
		{"오늘 회의", day(time.January, 10)},
		{"내일", day(time.January, 11)},
		{"모레 수업", day(time.January, 12)},
		{"글피 시험", day(time.January, 13)},
		{"회의 있어", day(time.January, 10)},
		{"8월 6일", day(time.August, 6)},
		{"8월6일 회의", day(time.August, 6)},
		{"8/6", day(time.August, 6)},
		{"8 6 회의", day(time.August, 6)},
		{"내일 말고 3월 2일", day(time.March, 2)},
		{"12월 31일", day(time.December, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got, err := e.ExtractDate(tt.msg)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractDate(%q) mismatch (-want +got):\n%s", tt.msg, diff)
			}
		})
	}
}

func TestExtractDateRejectsImpossibleDays(t *testing.T) {
	e := newTestExtractor()
	for _, msg := range []string{"13월 40일", "2월 30일", "0/5"} {
		_, err := e.ExtractDate(msg)
		assert.True(t, errors.Is(err, ErrInvalidDate), msg)
	}
}

func TestExtractDateUsesPinnedYear(t *testing.T) {
	e := NewExtractor(2024, kst, fixedNow)
	got, err := e.ExtractDate("2/29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, kst), got)
}

func TestExtractTime(t *testing.T) {
	tests := []struct {
		msg  string
		want Clock
		ok   bool
	}{
		{"3시", Clock{3, 0}, true},
		{"오후 3시", Clock{15, 0}, true},
		{"오후 3시 30분", Clock{15, 30}, true},
		{"오후 12시", Clock{12, 0}, true},
		{"오전 12시", Clock{0, 0}, true},
		{"오전 9시5분", Clock{9, 5}, true},
		{"23시30분", Clock{23, 30}, true},
		{"25시", Clock{}, false},
		{"회의", Clock{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got, ok := ExtractTime(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClockNextHourWrapsMidnight(t *testing.T) {
	assert.Equal(t, "00:30", Clock{23, 30}.NextHour().String())
	assert.Equal(t, "16:00", Clock{15, 0}.NextHour().String())
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		msg    string
		action Action
		want   string
	}{
		{"내일 오후 3시에 학부모 상담을 등록해줘", ActionCreate, "학부모 상담"},
		{"8월 6일 체육대회 일정 추가", ActionCreate, "체육대회"},
		{"오늘 3시 일정 등록", ActionCreate, ""},
		{"내일 3시 회의 삭제해줘", ActionDelete, "회의"},
		{"내일 3시 일정을 취소해줘", ActionDelete, ""},
		{"모레 수학 시험이 취소", ActionDelete, "수학 시험"},
		{"내일 오후 3시 김지은 학부모 상담 등록해줘", ActionCreate, "김지은 학부모 상담"},
		{"오늘 어린이 안전교육 등록", ActionCreate, "어린이 안전교육"},
		{"내일 박민이 상담 취소", ActionDelete, "박민이 상담"},
		{"금요일 회의를 추가", ActionCreate, "금요일 회의"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTitle(tt.msg, tt.action))
		})
	}
}

func TestInferEventType(t *testing.T) {
	tests := map[string]string{
		"수학 수업":     models.EventTypeClass,
		"기말고사":      models.EventTypeExam,
		"학부모 상담":    models.EventTypeMeeting,
		"졸업식":       models.EventTypeEvent,
		"치과":        models.EventTypePersonal,
		"수업 시간 상담":  models.EventTypeClass,
		"교육청 시험 평가": models.EventTypeClass,
	}
	for text, want := range tests {
		assert.Equal(t, want, InferEventType(text), text)
	}
}

func TestParseEvent(t *testing.T) {
	e := newTestExtractor()
	start, end := Clock{15, 0}, Clock{16, 0}
	lateStart, lateEnd := Clock{23, 30}, Clock{0, 30}

	tests := []struct {
		msg  string
		want *EventDraft
	}{
		{
			msg: "내일 오후 3시에 학부모 상담을 등록해줘",
			want: &EventDraft{
				Date: day(time.January, 11), Start: &start, End: &end,
				Title: "학부모 상담", EventType: models.EventTypeMeeting,
			},
		},
		{
			msg: "23시30분 야간 점검 등록",
			want: &EventDraft{
				Date: day(time.January, 10), Start: &lateStart, End: &lateEnd,
				Title: "야간 점검", EventType: models.EventTypePersonal,
			},
		},
		{
			msg: "8월 6일 시험 등록",
			want: &EventDraft{
				Date: day(time.August, 6), Title: "시험", EventType: models.EventTypeExam,
			},
		},
		{
			msg: "내일 일정 등록",
			want: &EventDraft{
				Date: day(time.January, 11), Title: models.EventTypePersonal, EventType: models.EventTypePersonal,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got, err := e.ParseEvent(tt.msg)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseEvent(%q) mismatch (-want +got):\n%s", tt.msg, diff)
			}
		})
	}
}

func TestEventDraftEvent(t *testing.T) {
	start, end := Clock{15, 0}, Clock{16, 0}
	draft := &EventDraft{Date: day(time.January, 11), Start: &start, End: &end, Title: "학부모 상담", EventType: models.EventTypeMeeting}

	event := draft.Event("user-1")
	assert.Equal(t, "user-1", event.UserID)
	assert.Equal(t, "#6f42c1", event.Color)
	assert.False(t, event.IsAllDay)
	require.NotNil(t, event.StartTime)
	assert.Equal(t, "15:00", *event.StartTime)
	assert.Equal(t, "16:00", *event.EndTime)
	assert.Equal(t, "상담 관련 일정입니다.", *event.Description)
	assert.Equal(t, "학교", *event.Location)

	allDay := (&EventDraft{Date: day(time.January, 11), Title: "행사", EventType: models.EventTypeEvent}).Event("user-1")
	assert.True(t, allDay.IsAllDay)
	assert.Nil(t, allDay.StartTime)
}

func TestExtractClassGradeAndCount(t *testing.T) {
	g, c, ok := ExtractClass("2학년 3반 성적 분석")
	assert.True(t, ok)
	assert.Equal(t, 2, g)
	assert.Equal(t, 3, c)

	_, _, ok = ExtractClass("2학년 성적")
	assert.False(t, ok)

	g, ok = ExtractGrade("3학년 상위")
	assert.True(t, ok)
	assert.Equal(t, 3, g)

	n, ok := ExtractCount("상위 5명")
	assert.True(t, ok)
	assert.Equal(t, 5, n)
}

func TestExtractStudentName(t *testing.T) {
	names := []string{"김철수", "이영희"}
	assert.Equal(t, "이영희", ExtractStudentName("이영희 학생 출석 알려줘", names))
	assert.Equal(t, "", ExtractStudentName("박민수 출석", names))
}
