package chatbot

import (
	"context"
	"fmt"
	"strings"
)

var (
	attendanceLowWords   = []string{"가장 안좋은", "제일 안좋은", "낮은", "최악"}
	attendanceHighWords  = []string{"가장 좋은", "제일 좋은", "높은", "최고"}
	attendanceYearsWords = []string{"1학년2학년3학년", "1학년 2학년 3학년", "학년별 출석률", "학년별 출결률"}
)

var attendanceEmoji = map[string]string{
	"출석": "✅",
	"결석": "❌",
	"지각": "⏰",
	"조퇴": "🏃",
}

const replyAskAttendanceStudent = "어떤 학생의 출석 정보를 알고 싶으신가요? 학생 이름을 말씀해주세요."

func (b *Bot) attendanceQuery(ctx context.Context, req Request) (string, error) {
	names, err := b.directory.StudentNames(ctx, b.year, 0)
	if err != nil {
		return "", fmt.Errorf("list student names: %w", err)
	}
	name := ExtractStudentName(req.Message, names)

	switch {
	case name != "" && containsAny(req.Message, attendanceYearsWords...):
		return b.attendanceByGrade(ctx, name)
	case name != "":
		return b.studentAttendance(ctx, name)
	case containsAny(req.Message, attendanceLowWords...):
		return b.attendanceRanking(ctx, req.Message, true)
	case containsAny(req.Message, attendanceHighWords...):
		return b.attendanceRanking(ctx, req.Message, false)
	default:
		return replyAskAttendanceStudent, nil
	}
}

func (b *Bot) studentAttendance(ctx context.Context, name string) (string, error) {
	info, err := b.attendance.StudentAttendanceByName(ctx, name)
	if err != nil {
		if notFound(err) {
			return name + " 학생을 찾을 수 없습니다.", nil
		}
		return "", err
	}
	if info.Stats.TotalDays == 0 {
		return fmt.Sprintf("%s 학생의 %d년도 출석 정보가 없습니다.", name, info.AcademicYear), nil
	}

	st := info.Stats
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s 학생의 출석 정보입니다:\n\n", name)
	fmt.Fprintf(&sb, "📅 총 수업일: %d일\n", st.TotalDays)
	fmt.Fprintf(&sb, "✅ 출석: %d일\n", st.PresentDays)
	fmt.Fprintf(&sb, "❌ 결석: %d일\n", st.AbsentDays)
	fmt.Fprintf(&sb, "⏰ 지각: %d일\n", st.LateDays)
	fmt.Fprintf(&sb, "🏃 조퇴: %d일\n", st.EarlyLeaveDays)
	fmt.Fprintf(&sb, "📈 출석률: %.1f%%\n\n", st.AttendanceRate)
	sb.WriteString("📋 최근 출석 기록:\n")
	for _, rec := range info.Recent {
		emoji, ok := attendanceEmoji[rec.TypeName]
		if !ok {
			emoji = "❓"
		}
		fmt.Fprintf(&sb, "  %s: %s %s\n", shortDate(rec.Date), emoji, rec.TypeName)
	}
	return sb.String(), nil
}

func (b *Bot) attendanceByGrade(ctx context.Context, name string) (string, error) {
	years, err := b.attendance.GradeBreakdown(ctx, name)
	if err != nil {
		if notFound(err) {
			return name + " 학생의 출석 정보가 없습니다.", nil
		}
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s 학생의 학년별 출석률입니다:\n\n", name)
	for _, y := range years {
		fmt.Fprintf(&sb, "🎓 %d학년 (%d년)\n", y.Grade, y.AcademicYear)
		fmt.Fprintf(&sb, "  📅 총 수업일: %d일\n", y.TotalDays)
		fmt.Fprintf(&sb, "  ✅ 출석: %d일\n", y.PresentDays)
		fmt.Fprintf(&sb, "  ❌ 결석: %d일\n", y.AbsentDays)
		fmt.Fprintf(&sb, "  ⏰ 지각: %d일\n", y.LateDays)
		fmt.Fprintf(&sb, "  🏃 조퇴: %d일\n", y.EarlyLeaveDays)
		fmt.Fprintf(&sb, "  📈 출석률: %.1f%%\n\n", y.AttendanceRate)
	}
	return sb.String(), nil
}

func (b *Bot) attendanceRanking(ctx context.Context, msg string, lowest bool) (string, error) {
	limit, _ := ExtractCount(msg)
	rows, err := b.attendance.Ranking(ctx, limit, lowest)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return fmt.Sprintf("%d년도 출석 데이터가 없습니다.", b.year), nil
	}

	direction := "높은"
	if lowest {
		direction = "낮은"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 출석률이 가장 %s 학생들 (상위 %d명):\n\n", direction, len(rows))
	for i, r := range rows {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r.Name)
		fmt.Fprintf(&sb, "   📅 총 수업일: %d일\n", r.TotalDays)
		fmt.Fprintf(&sb, "   ✅ 출석: %d일\n", r.PresentDays)
		// Everything that is not a present mark counts as missed here.
		fmt.Fprintf(&sb, "   ❌ 결석: %d일\n", r.TotalDays-r.PresentDays)
		fmt.Fprintf(&sb, "   📈 출석률: %.1f%%\n\n", r.AttendanceRate)
	}
	return sb.String(), nil
}
