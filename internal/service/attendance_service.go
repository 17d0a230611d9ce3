package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-assistant-api/internal/models"
	appErrors "github.com/noah-isme/school-assistant-api/pkg/errors"
	"github.com/noah-isme/school-assistant-api/pkg/export"
)

const (
	recentAttendanceLimit = 10
	defaultAttendanceRank = 5
)

type attendanceRepository interface {
	Upsert(ctx context.Context, att *models.Attendance) error
	StudentStats(ctx context.Context, studentID string, year int) (*models.AttendanceStats, error)
	Recent(ctx context.Context, studentID string, year, limit int) ([]models.AttendanceRecord, error)
	YearlyByName(ctx context.Context, name string) ([]models.YearAttendance, error)
	Ranking(ctx context.Context, year, limit int, ascending bool) ([]models.AttendanceRanking, error)
	ClassSummary(ctx context.Context, classID string) ([]models.ClassAttendanceRow, error)
	RecomputeRollups(ctx context.Context, year int, calculatedAt time.Time) (*models.RollupResult, error)
}

// AttendanceService records daily marks and reports attendance statistics.
type AttendanceService struct {
	repo      attendanceRepository
	students  studentReader
	classes   classReader
	exports   *ExportService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	year      int
	now       func() time.Time
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, students studentReader, classes classReader, exports *ExportService, metrics *MetricsService, academicYear int, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if exports == nil {
		exports = NewExportService(nil, nil, logger)
	}
	return &AttendanceService{
		repo:      repo,
		students:  students,
		classes:   classes,
		exports:   exports,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		year:      academicYear,
		now:       time.Now,
	}
}

// Record upserts a student's mark for a date in the student's academic year.
func (s *AttendanceService) Record(ctx context.Context, req models.RecordAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date")
	}
	student, err := s.student(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	att := &models.Attendance{
		StudentID:    student.ID,
		Date:         date,
		TypeID:       req.TypeID,
		ReasonID:     req.ReasonID,
		Note:         strPtr(strings.TrimSpace(req.Note)),
		AcademicYear: student.AcademicYear,
	}
	if err := s.repo.Upsert(ctx, att); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return att, nil
}

// StudentAttendance returns a student's stats and latest marks for the
// student row's academic year.
func (s *AttendanceService) StudentAttendance(ctx context.Context, studentID string) (*models.StudentAttendance, error) {
	student, err := s.student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.summary(ctx, student)
}

// StudentAttendanceByName is StudentAttendance for a current-year student
// looked up by name.
func (s *AttendanceService) StudentAttendanceByName(ctx context.Context, name string) (*models.StudentAttendance, error) {
	student, err := s.students.FindByName(ctx, name, s.year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return s.summary(ctx, student)
}

func (s *AttendanceService) summary(ctx context.Context, student *models.StudentDetail) (*models.StudentAttendance, error) {
	stats, err := s.repo.StudentStats(ctx, student.ID, student.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	recent, err := s.repo.Recent(ctx, student.ID, student.AcademicYear, recentAttendanceLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return &models.StudentAttendance{
		StudentID:    student.ID,
		Name:         student.Name,
		AcademicYear: student.AcademicYear,
		Stats:        *stats,
		Recent:       recent,
	}, nil
}

// GradeBreakdown returns attendance per academic year for every student row
// sharing the name.
func (s *AttendanceService) GradeBreakdown(ctx context.Context, name string) ([]models.YearAttendance, error) {
	rows, err := s.repo.YearlyByName(ctx, name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no attendance history for student")
	}
	return rows, nil
}

// Ranking orders current-year students by attendance rate.
func (s *AttendanceService) Ranking(ctx context.Context, limit int, ascending bool) ([]models.AttendanceRanking, error) {
	if limit <= 0 {
		limit = defaultAttendanceRank
	}
	rows, err := s.repo.Ranking(ctx, s.year, limit, ascending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank attendance")
	}
	return rows, nil
}

// ClassSummary returns attendance for each student of a class.
func (s *AttendanceService) ClassSummary(ctx context.Context, classID string) (*models.ClassAttendanceSummary, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	rows, err := s.repo.ClassSummary(ctx, class.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise attendance")
	}
	return &models.ClassAttendanceSummary{Class: *class, Students: rows}, nil
}

// ExportClassAttendance renders a class attendance report.
func (s *AttendanceService) ExportClassAttendance(ctx context.Context, classID string, format models.ReportFormat) (*ExportFile, error) {
	summary, err := s.ClassSummary(ctx, classID)
	if err != nil {
		return nil, err
	}
	data := export.Dataset{Headers: []string{"이름", "총일수", "출석", "결석", "지각", "조퇴", "출석률"}}
	for _, row := range summary.Students {
		data.Rows = append(data.Rows, map[string]string{
			"이름":  row.Name,
			"총일수": fmt.Sprintf("%d", row.TotalDays),
			"출석":  fmt.Sprintf("%d", row.PresentDays),
			"결석":  fmt.Sprintf("%d", row.AbsentDays),
			"지각":  fmt.Sprintf("%d", row.LateDays),
			"조퇴":  fmt.Sprintf("%d", row.EarlyLeaveDays),
			"출석률": formatScore(row.AttendanceRate) + "%",
		})
	}
	title := fmt.Sprintf("%d학년도 %s 출결 현황", summary.Class.AcademicYear, summary.Class.Label())
	return s.exports.Render(format, "attendance_"+summary.Class.ID, title, data)
}

// RecomputeRollups rebuilds the monthly and yearly rollups of a year. year 0
// uses the current academic year.
func (s *AttendanceService) RecomputeRollups(ctx context.Context, year int) (*models.RollupResult, error) {
	if year == 0 {
		year = s.year
	}
	start := s.now()
	result, err := s.repo.RecomputeRollups(ctx, year, start.UTC())
	s.metrics.ObserveDBQuery("attendance_rollup", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to recompute attendance rollups")
	}
	s.logger.Info("attendance rollups recomputed",
		zap.Int("academic_year", year),
		zap.Int64("monthly_rows", result.MonthlyRows),
		zap.Int64("yearly_rows", result.YearlyRows),
	)
	return result, nil
}

func (s *AttendanceService) student(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}
