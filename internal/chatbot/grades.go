package chatbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

const (
	defaultGradeRankLimit = 10
	examTopCount          = 5
)

var (
	topWords        = []string{"상위", "성적 좋은 학생", "1등"}
	bottomWords     = []string{"꼴등", "꼴찌", "하위", "성적 안좋은 학생"}
	onlyFirstWords  = []string{"1등만", "1위만", "첫째만", "1등은누구야", "1등이누구야", "1등은?", "1등이?", "누가1등", "1등누구"}
	onlyLastWords   = []string{"꼴등만", "꼴찌만", "마지막만", "꼴등은누구야", "꼴등이누구야", "꼴등은?", "꼴등이?", "누가꼴등", "꼴등누구", "1명만"}
	gradeYearsWords = []string{"1학년2학년3학년", "1학년 2학년 3학년", "학년별 성적", "3년간 성적", "성적 이력", "성적 변화"}
)

const (
	replyAskStudent  = "어떤 학생의 성적을 알고 싶으신가요? 학생 이름을 말씀해주세요."
	replyUnknownExam = "시험명을 인식할 수 없습니다. '1학기 중간고사', '1학기 기말고사', '2학기 중간고사', '2학기 기말고사' 중 하나를 입력해주세요."
)

func (b *Bot) gradeQuery(ctx context.Context, req Request) (string, error) {
	msg := req.Message
	if strings.Contains(msg, "성적 분석") {
		if grade, classNum, ok := ExtractClass(msg); ok {
			return b.classAnalysis(ctx, grade, classNum)
		}
	}
	switch {
	case strings.Contains(msg, "과목 분석"):
		return b.subjectAnalysis(ctx, msg)
	case containsAny(msg, "중간고사", "기말고사"):
		return b.examAnalysis(ctx, msg)
	case containsAny(msg, topWords...):
		return b.ranking(ctx, msg, false)
	case containsAny(msg, bottomWords...):
		return b.ranking(ctx, msg, true)
	}

	names, err := b.directory.StudentNames(ctx, b.year, 0)
	if err != nil {
		return "", fmt.Errorf("list student names: %w", err)
	}
	name := ExtractStudentName(msg, names)
	switch {
	case name == "":
		return replyAskStudent, nil
	case containsAny(msg, gradeYearsWords...):
		return b.gradeHistory(ctx, name)
	default:
		return b.studentGrades(ctx, name)
	}
}

func (b *Bot) classAnalysis(ctx context.Context, grade, classNum int) (string, error) {
	summary, err := b.grades.ClassAnalysis(ctx, grade, classNum)
	if err != nil {
		if notFound(err) {
			return "해당 반의 성적 정보를 찾을 수 없습니다.", nil
		}
		return "", err
	}
	lines := make([]string, 0, len(summary.Students))
	for i, s := range summary.Students {
		lines = append(lines, fmt.Sprintf("%d위: %s - 평균 %.1f점", i+1, s.Name, s.Average))
	}
	return fmt.Sprintf("**%s 성적 분석:**\n\n%s", summary.Class.Label(), strings.Join(lines, "\n")), nil
}

func (b *Bot) subjectAnalysis(ctx context.Context, msg string) (string, error) {
	subjects, err := b.grades.SubjectNames(ctx)
	if err != nil {
		return "", err
	}
	subject := firstContained(msg, subjects)
	if subject == "" {
		return "해당 과목의 성적 정보를 찾을 수 없습니다.", nil
	}
	analysis, err := b.grades.SubjectAnalysis(ctx, subject)
	if err != nil {
		if notFound(err) {
			return "해당 과목의 성적 정보를 찾을 수 없습니다.", nil
		}
		return "", err
	}

	var sb strings.Builder
	o := analysis.Overall
	fmt.Fprintf(&sb, "**%s 과목 분석:**\n\n**전체 통계:**\n", analysis.Subject)
	fmt.Fprintf(&sb, "- 평균: %.1f점\n- 최저: %.1f점\n- 최고: %.1f점\n- 총 성적 수: %d개\n\n", o.Average, o.Min, o.Max, o.Count)
	sb.WriteString("**학년별 평균:**")
	for _, g := range analysis.ByGrade {
		fmt.Fprintf(&sb, "\n- %d학년: 평균 %.1f점", g.Grade, g.Average)
	}
	return sb.String(), nil
}

func (b *Bot) ranking(ctx context.Context, msg string, bottom bool) (string, error) {
	only := containsAny(squash(msg), onlyFirstWords...)
	place, listTitle := "1등", "상위"
	if bottom {
		only = containsAny(squash(msg), onlyLastWords...)
		place, listTitle = "꼴등", "하위"
	}

	filter := models.RankingFilter{Limit: defaultGradeRankLimit, Ascending: bottom}
	if n, ok := ExtractCount(msg); ok {
		filter.Limit = n
	}
	if only {
		filter.Limit = 1
	}
	scope := "전체"
	if g, ok := ExtractGrade(msg); ok {
		filter.Grade = g
		scope = fmt.Sprintf("%d학년", g)
	}

	rows, err := b.grades.Rankings(ctx, filter)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		if filter.Grade > 0 {
			return fmt.Sprintf("%d학년 성적 %s 학생 정보를 찾을 수 없습니다.", filter.Grade, listTitle), nil
		}
		return fmt.Sprintf("성적 %s 학생 정보를 찾을 수 없습니다.", listTitle), nil
	}
	if only {
		s := rows[0]
		return fmt.Sprintf("**%s %s: %s (%s) - 평균 %.1f점**", scope, place, s.Name, s.ClassLabel(), s.Average), nil
	}

	lines := make([]string, 0, len(rows))
	for i, s := range rows {
		lines = append(lines, fmt.Sprintf("%d위: %s (%s) - 평균 %.1f점", i+1, s.Name, s.ClassLabel(), s.Average))
	}
	return fmt.Sprintf("**%s 성적 %s %d명 학생:**\n\n%s", scope, listTitle, len(rows), strings.Join(lines, "\n")), nil
}

func (b *Bot) examAnalysis(ctx context.Context, msg string) (string, error) {
	exams, err := b.grades.ExamNames(ctx)
	if err != nil {
		return "", err
	}
	compacted := squash(msg)
	q := models.ExamQuery{}
	for _, name := range exams {
		if name != "" && strings.Contains(compacted, squash(name)) {
			q.Exam = name
			break
		}
	}
	if q.Exam == "" {
		return replyUnknownExam, nil
	}
	subjects, err := b.grades.SubjectNames(ctx)
	if err != nil {
		return "", err
	}
	q.Subject = firstContained(msg, subjects)
	q.Grade, q.ClassNum, _ = ExtractClass(msg)

	analysis, err := b.grades.ExamAnalysis(ctx, q)
	if err != nil {
		if notFound(err) {
			if q.Subject != "" {
				return fmt.Sprintf("해당 시험의 %s 성적 정보를 찾을 수 없습니다.", q.Subject), nil
			}
			return "해당 시험의 성적 정보를 찾을 수 없습니다.", nil
		}
		return "", err
	}

	switch {
	case analysis.Subject != "" && analysis.SingleClass():
		return formatSubjectClassExam(analysis), nil
	case analysis.Subject != "":
		return formatSubjectExam(analysis), nil
	case analysis.SingleClass():
		return formatClassExam(analysis), nil
	default:
		return formatExam(analysis), nil
	}
}

func formatSubjectClassExam(a *models.ExamAnalysis) string {
	o := a.Overall()
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s %s (%s) 성적 분석:**\n\n", a.Exam, a.Subject, models.ClassLabel(a.Grade, a.ClassNum))
	fmt.Fprintf(&sb, "**평균: %.1f점**\n**최저: %.1f점**\n**최고: %.1f점**\n**참여 학생: %d명**\n\n", o.Average, o.Min, o.Max, a.StudentCount)
	fmt.Fprintf(&sb, "**상위 %d명:**", examTopCount)
	for i, s := range a.TopScores {
		fmt.Fprintf(&sb, "\n%d위: %s - %.1f점", i+1, s.Name, s.Score)
	}
	return sb.String()
}

func formatSubjectExam(a *models.ExamAnalysis) string {
	parts := make([]string, 0, len(a.Cells))
	for _, c := range a.Cells {
		parts = append(parts, fmt.Sprintf("**%s:** 평균 %.1f점 (최저 %.1f점, 최고 %.1f점)", models.ClassLabel(c.Grade, c.ClassNum), c.Average, c.Min, c.Max))
	}
	return fmt.Sprintf("**%s %s 전체 반별 성적 분석:**\n\n%s", a.Exam, a.Subject, strings.Join(parts, "\n\n"))
}

func formatClassExam(a *models.ExamAnalysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s (%s) 성적 분석:**\n\n", a.Exam, models.ClassLabel(a.Grade, a.ClassNum))
	fmt.Fprintf(&sb, "**전체 평균: %.1f점**\n**참여 학생: %d명**\n\n**과목별 분석:**", a.Overall().Average, a.StudentCount)
	for _, c := range a.Cells {
		fmt.Fprintf(&sb, "\n- %s: 평균 %.1f점 (최저 %.1f점, 최고 %.1f점)", c.Subject, c.Average, c.Min, c.Max)
	}
	return sb.String()
}

func formatExam(a *models.ExamAnalysis) string {
	var parts []string
	for _, group := range cellsByClass(a.Cells) {
		first := group[0]
		lines := []string{
			fmt.Sprintf("**%s:**", models.ClassLabel(first.Grade, first.ClassNum)),
			fmt.Sprintf("**평균: %.1f점**", models.ExamAnalysis{Cells: group}.Overall().Average),
		}
		for _, c := range group {
			lines = append(lines, fmt.Sprintf("  - %s: 평균 %.1f점", c.Subject, c.Average))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return fmt.Sprintf("**%s 전체 반별 성적 분석:**\n\n%s", a.Exam, strings.Join(parts, "\n\n"))
}

// cellsByClass groups consecutive cells of the same class.
func cellsByClass(cells []models.ExamCell) [][]models.ExamCell {
	var groups [][]models.ExamCell
	for _, c := range cells {
		n := len(groups)
		if n > 0 && groups[n-1][0].Grade == c.Grade && groups[n-1][0].ClassNum == c.ClassNum {
			groups[n-1] = append(groups[n-1], c)
			continue
		}
		groups = append(groups, []models.ExamCell{c})
	}
	return groups
}

func (b *Bot) gradeHistory(ctx context.Context, name string) (string, error) {
	history, err := b.grades.History(ctx, name)
	if err != nil {
		if notFound(err) {
			return name + " 학생의 성적 정보가 없습니다.", nil
		}
		return "", err
	}

	parts := []string{fmt.Sprintf("**%s 학생의 학년별 성적 이력:**\n", name)}
	for _, y := range history.Years {
		parts = append(parts, fmt.Sprintf("\n**%d년도 (%s):**", y.AcademicYear, models.ClassLabel(y.Grade, y.ClassNum)))
		parts = append(parts, fmt.Sprintf("• 전체 평균: %.1f점", y.Average))
		avgs := make([]string, 0, len(y.Subjects))
		for _, subject := range y.Subjects {
			avgs = append(avgs, fmt.Sprintf("%s: %.1f점", subject, y.BySubject[subject]))
		}
		parts = append(parts, "• 과목별 평균: "+strings.Join(avgs, ", "))
	}

	if history.HasProgress() {
		parts = append(parts, "\n**📊 성적 변화 분석:**")
		parts = append(parts, fmt.Sprintf("• 전체 성적 변화: %+.1f점 (%s)", history.OverallImprovement, history.OverallTrend))
		if len(history.Strengths) > 0 {
			parts = append(parts, "• 강점 과목: "+strings.Join(history.Strengths, ", "))
		}
		if len(history.Weaknesses) > 0 {
			parts = append(parts, "• 개선 필요 과목: "+strings.Join(history.Weaknesses, ", "))
		}
		parts = append(parts, "\n**과목별 변화:**")
		for _, p := range history.Progress {
			parts = append(parts, fmt.Sprintf("• %s: %+.1f점 (%s)", p.Subject, p.Improvement, p.Trend))
		}
	}
	return strings.Join(parts, "\n"), nil
}

func (b *Bot) studentGrades(ctx context.Context, name string) (string, error) {
	report, err := b.grades.StudentGradesByName(ctx, name)
	if err != nil {
		if notFound(err) {
			return name + " 학생의 성적 정보를 찾을 수 없습니다.", nil
		}
		return "", err
	}
	lines := make([]string, 0, len(report.Grades))
	for _, g := range report.Grades {
		lines = append(lines, fmt.Sprintf("- %s %s: %.1f점", g.Subject, g.Exam, g.Score))
	}
	class := models.ClassLabel(report.Student.Grade, report.Student.ClassNum)
	return fmt.Sprintf("**%s (%s) 성적:**\n\n%s", name, class, strings.Join(lines, "\n")), nil
}
