package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-assistant-api/internal/models"
	"github.com/noah-isme/school-assistant-api/internal/repository"
	appErrors "github.com/noah-isme/school-assistant-api/pkg/errors"
	"github.com/noah-isme/school-assistant-api/pkg/export"
)

const (
	rankingCachePrefix = "grades:rank:"
	defaultRankLimit   = 10
	examTopLimit       = 5
	progressThreshold  = 5.0
)

// Progress trends.
const (
	TrendUp   = "상승"
	TrendDown = "하락"
	TrendFlat = "유지"
)

type gradeRepository interface {
	Create(ctx context.Context, grade *models.Grade) error
	ListByStudent(ctx context.Context, studentID string, year int) ([]models.GradeRecord, error)
	Rankings(ctx context.Context, filter models.RankingFilter) ([]models.StudentAverage, error)
	ClassAverages(ctx context.Context, classID string) ([]models.StudentAverage, error)
	SubjectStats(ctx context.Context, subjectID string) (*models.ScoreStats, error)
	SubjectGradeAverages(ctx context.Context, subjectID string) ([]models.GradeLevelAverage, error)
	ExamBreakdown(ctx context.Context, filter models.ExamFilter) ([]models.ExamCell, error)
	ExamStudentCount(ctx context.Context, filter models.ExamFilter) (int, error)
	ExamTopScores(ctx context.Context, filter models.ExamFilter, limit int) ([]models.ScoreEntry, error)
	HistoryByName(ctx context.Context, name string) ([]models.HistoryRow, error)
}

type catalogReader interface {
	Subjects(ctx context.Context) ([]models.Subject, error)
	Exams(ctx context.Context) ([]models.Exam, error)
	SubjectByName(ctx context.Context, name string) (*models.Subject, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	FindByName(ctx context.Context, name string, year int) (*models.StudentDetail, error)
}

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	FindByNumber(ctx context.Context, year, grade, classNum int) (*models.Class, error)
}

type rankingCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// GradeService records scores and answers ranking and analysis queries.
type GradeService struct {
	grades    gradeRepository
	catalog   catalogReader
	students  studentReader
	classes   classReader
	cache     rankingCache
	exports   *ExportService
	validator *validator.Validate
	logger    *zap.Logger
	year      int
}

// NewGradeService constructs a GradeService. academicYear is the current
// school year used when a caller does not name one.
func NewGradeService(grades gradeRepository, catalog catalogReader, students studentReader, classes classReader, cache rankingCache, exports *ExportService, academicYear int, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if exports == nil {
		exports = NewExportService(nil, nil, logger)
	}
	return &GradeService{
		grades:    grades,
		catalog:   catalog,
		students:  students,
		classes:   classes,
		cache:     cache,
		exports:   exports,
		validator: validate,
		logger:    logger,
		year:      academicYear,
	}
}

// AcademicYear returns the configured current school year.
func (s *GradeService) AcademicYear() int {
	return s.year
}

// Record stores a score. A second score for the same student, subject, exam
// and year is a conflict.
func (s *GradeService) Record(ctx context.Context, req models.CreateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	grade := &models.Grade{
		StudentID:    req.StudentID,
		SubjectID:    req.SubjectID,
		ExamID:       req.ExamID,
		AcademicYear: req.AcademicYear,
		Score:        *req.Score,
	}
	if req.ExamDate != "" {
		date, err := time.Parse(dateLayout, req.ExamDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid exam_date")
		}
		grade.ExamDate = &date
	}

	if err := s.grades.Create(ctx, grade); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "grade already recorded for this exam")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, rankingCachePrefix+"*")
	}
	return grade, nil
}

// Rankings returns students ordered by average score. Ascending filters give
// the lowest averages first.
func (s *GradeService) Rankings(ctx context.Context, filter models.RankingFilter) ([]models.StudentAverage, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultRankLimit
	}
	key := fmt.Sprintf("%s%d:%d:%d:%t", rankingCachePrefix, filter.AcademicYear, filter.Grade, filter.Limit, filter.Ascending)
	var cached []models.StudentAverage
	if s.cache != nil {
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached, nil
		}
	}

	rows, err := s.grades.Rankings(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank students")
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, rows, 0)
	}
	return rows, nil
}

// SubjectAnalysis summarises every score recorded for a subject.
func (s *GradeService) SubjectAnalysis(ctx context.Context, name string) (*models.SubjectAnalysis, error) {
	subject, err := s.catalog.SubjectByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	stats, err := s.grades.SubjectStats(ctx, subject.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no scores recorded for subject")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to analyse subject")
	}
	byGrade, err := s.grades.SubjectGradeAverages(ctx, subject.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to analyse subject")
	}
	return &models.SubjectAnalysis{Subject: subject.Name, Overall: *stats, ByGrade: byGrade}, nil
}

// ClassSummary ranks the students of a class by average.
func (s *GradeService) ClassSummary(ctx context.Context, classID string) (*models.ClassGradeSummary, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return s.classSummary(ctx, class)
}

// ClassAnalysis is ClassSummary addressed by grade and class number in the
// current year. A class without scores is reported as not found.
func (s *GradeService) ClassAnalysis(ctx context.Context, grade, classNum int) (*models.ClassGradeSummary, error) {
	class, err := s.classes.FindByNumber(ctx, s.year, grade, classNum)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	summary, err := s.classSummary(ctx, class)
	if err != nil {
		return nil, err
	}
	if len(summary.Students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no scores recorded for class")
	}
	return summary, nil
}

func (s *GradeService) classSummary(ctx context.Context, class *models.Class) (*models.ClassGradeSummary, error) {
	rows, err := s.grades.ClassAverages(ctx, class.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise class")
	}
	return &models.ClassGradeSummary{Class: *class, Students: rows}, nil
}

// StudentGrades lists a student's scores. year 0 uses the student row's year.
func (s *GradeService) StudentGrades(ctx context.Context, studentID string, year int) (*models.StudentGradeReport, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if year == 0 {
		year = student.AcademicYear
	}
	return s.report(ctx, student, year)
}

// StudentGradesByName lists the current-year scores of a student by name.
// A student without scores is reported as not found.
func (s *GradeService) StudentGradesByName(ctx context.Context, name string) (*models.StudentGradeReport, error) {
	student, err := s.students.FindByName(ctx, name, s.year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	report, err := s.report(ctx, student, s.year)
	if err != nil {
		return nil, err
	}
	if len(report.Grades) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no scores recorded for student")
	}
	return report, nil
}

func (s *GradeService) report(ctx context.Context, student *models.StudentDetail, year int) (*models.StudentGradeReport, error) {
	records, err := s.grades.ListByStudent(ctx, student.ID, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	report := &models.StudentGradeReport{Student: *student, AcademicYear: year, Grades: records}
	if len(records) > 0 {
		var sum float64
		for _, r := range records {
			sum += r.Score
		}
		report.Average = round1(sum / float64(len(records)))
	}
	return report, nil
}

// ExportStudentGrades renders a student's grade report.
func (s *GradeService) ExportStudentGrades(ctx context.Context, studentID string, year int, format models.ReportFormat) (*ExportFile, error) {
	report, err := s.StudentGrades(ctx, studentID, year)
	if err != nil {
		return nil, err
	}
	data := export.Dataset{Headers: []string{"학년도", "시험", "과목", "점수"}}
	for _, g := range report.Grades {
		data.Rows = append(data.Rows, map[string]string{
			"학년도": fmt.Sprintf("%d", g.AcademicYear),
			"시험":  g.Exam,
			"과목":  g.Subject,
			"점수":  formatScore(g.Score),
		})
	}
	title := fmt.Sprintf("%s (%s) %d학년도 성적표", report.Student.Name, models.ClassLabel(report.Student.Grade, report.Student.ClassNum), report.AcademicYear)
	return s.exports.Render(format, "grades_"+report.Student.ID, title, data)
}

// SubjectNames returns the subject catalog names.
func (s *GradeService) SubjectNames(ctx context.Context) ([]string, error) {
	subjects, err := s.catalog.Subjects(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	names := make([]string, 0, len(subjects))
	for _, sub := range subjects {
		names = append(names, sub.Name)
	}
	return names, nil
}

// ExamNames returns exam names in exam order.
func (s *GradeService) ExamNames(ctx context.Context) ([]string, error) {
	exams, err := s.catalog.Exams(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	names := make([]string, 0, len(exams))
	for _, e := range exams {
		names = append(names, e.Name)
	}
	return names, nil
}

// ExamAnalysis breaks an exam down by class and subject. Exam names match
// with spaces ignored.
func (s *GradeService) ExamAnalysis(ctx context.Context, q models.ExamQuery) (*models.ExamAnalysis, error) {
	exams, err := s.catalog.Exams(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	var exam *models.Exam
	for i := range exams {
		if compact(exams[i].Name) == compact(q.Exam) {
			exam = &exams[i]
			break
		}
	}
	if exam == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
	}

	filter := models.ExamFilter{ExamID: exam.ID, Grade: q.Grade, ClassNum: q.ClassNum}
	analysis := &models.ExamAnalysis{Exam: q.Exam, Grade: q.Grade, ClassNum: q.ClassNum}
	if q.Subject != "" {
		subject, err := s.catalog.SubjectByName(ctx, q.Subject)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
		}
		filter.SubjectID = subject.ID
		analysis.Subject = subject.Name
	}

	analysis.Cells, err = s.grades.ExamBreakdown(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to analyse exam")
	}
	if len(analysis.Cells) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no scores recorded for exam")
	}
	if !analysis.SingleClass() {
		return analysis, nil
	}

	if analysis.StudentCount, err = s.grades.ExamStudentCount(ctx, filter); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to analyse exam")
	}
	if filter.SubjectID != "" {
		if analysis.TopScores, err = s.grades.ExamTopScores(ctx, filter, examTopLimit); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to analyse exam")
		}
	}
	return analysis, nil
}

// History returns a student's grades across every academic year with the
// change between the first and last year.
func (s *GradeService) History(ctx context.Context, name string) (*models.GradeHistory, error) {
	rows, err := s.grades.HistoryByName(ctx, name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade history")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no grade history for student")
	}
	return BuildGradeHistory(name, rows), nil
}

// BuildGradeHistory folds per-year subject averages into a history. Rows must
// be ordered by academic year. A subject missing from a year counts as 0
// when computing its change.
func BuildGradeHistory(name string, rows []models.HistoryRow) *models.GradeHistory {
	history := &models.GradeHistory{Name: name}
	var subjects []string
	seen := map[string]bool{}
	var weighted []float64
	var counts []int

	for _, row := range rows {
		n := len(history.Years)
		if n == 0 || history.Years[n-1].AcademicYear != row.AcademicYear {
			history.Years = append(history.Years, models.YearGrades{
				AcademicYear: row.AcademicYear,
				Grade:        row.Grade,
				ClassNum:     row.ClassNum,
				BySubject:    map[string]float64{},
			})
			weighted = append(weighted, 0)
			counts = append(counts, 0)
			n++
		}
		year := &history.Years[n-1]
		year.BySubject[row.Subject] = round1(row.Average)
		year.Subjects = append(year.Subjects, row.Subject)
		weighted[n-1] += row.Average * float64(row.Count)
		counts[n-1] += row.Count
		if !seen[row.Subject] {
			seen[row.Subject] = true
			subjects = append(subjects, row.Subject)
		}
	}
	for i := range history.Years {
		if counts[i] > 0 {
			history.Years[i].Average = round1(weighted[i] / float64(counts[i]))
		}
	}

	if !history.HasProgress() {
		history.OverallTrend = TrendFlat
		return history
	}

	first, last := history.Years[0], history.Years[len(history.Years)-1]
	history.OverallImprovement = round1(last.Average - first.Average)
	history.OverallTrend = trend(history.OverallImprovement)
	for _, subject := range subjects {
		p := models.SubjectProgress{Subject: subject, First: first.BySubject[subject], Last: last.BySubject[subject]}
		p.Improvement = round1(p.Last - p.First)
		p.Trend = trend(p.Improvement)
		history.Progress = append(history.Progress, p)
		switch {
		case p.Improvement > progressThreshold:
			history.Strengths = append(history.Strengths, subject)
		case p.Improvement < -progressThreshold:
			history.Weaknesses = append(history.Weaknesses, subject)
		}
	}
	return history
}

func trend(delta float64) string {
	switch {
	case delta > 0:
		return TrendUp
	case delta < 0:
		return TrendDown
	default:
		return TrendFlat
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
