package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

// statsColumns aggregates attendance rows joined as a (attendances) and at
// (attendance_types).
const statsColumns = `COUNT(a.id) AS total_days,
COUNT(a.id) FILTER (WHERE at.name = '출석') AS present_days,
COUNT(a.id) FILTER (WHERE at.name = '결석') AS absent_days,
COUNT(a.id) FILTER (WHERE at.name = '지각') AS late_days,
COUNT(a.id) FILTER (WHERE at.name = '조퇴') AS early_leave_days,
COALESCE(ROUND(COUNT(a.id) FILTER (WHERE at.name = '출석') * 100.0 / NULLIF(COUNT(a.id), 0), 1), 0) AS attendance_rate`

// AttendanceRepository persists daily marks and computes attendance
// statistics and rollups.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert records the mark for a student and date, replacing any earlier one.
func (r *AttendanceRepository) Upsert(ctx context.Context, att *models.Attendance) error {
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	if att.CreatedAt.IsZero() {
		att.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendances (id, student_id, date, type_id, reason_id, note, academic_year, created_at)
VALUES (:id, :student_id, :date, :type_id, :reason_id, :note, :academic_year, :created_at)
ON CONFLICT (student_id, date) DO UPDATE
SET type_id = EXCLUDED.type_id, reason_id = EXCLUDED.reason_id, note = EXCLUDED.note, academic_year = EXCLUDED.academic_year`
	if _, err := r.db.NamedExecContext(ctx, query, att); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// StudentStats aggregates a student's marks for an academic year.
func (r *AttendanceRepository) StudentStats(ctx context.Context, studentID string, year int) (*models.AttendanceStats, error) {
	query := `SELECT ` + statsColumns + `
FROM attendances a
JOIN attendance_types at ON at.id = a.type_id
WHERE a.student_id = $1 AND a.academic_year = $2`
	var stats models.AttendanceStats
	if err := r.db.GetContext(ctx, &stats, query, studentID, year); err != nil {
		return nil, fmt.Errorf("student attendance stats: %w", err)
	}
	return &stats, nil
}

// Recent returns a student's latest marks for an academic year.
func (r *AttendanceRepository) Recent(ctx context.Context, studentID string, year, limit int) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT a.date, at.name AS type_name, ar.name AS reason, a.note
FROM attendances a
JOIN attendance_types at ON at.id = a.type_id
LEFT JOIN attendance_reasons ar ON ar.id = a.reason_id
WHERE a.student_id = $1 AND a.academic_year = $2
ORDER BY a.date DESC
LIMIT %d`, limit)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID, year); err != nil {
		return nil, fmt.Errorf("recent attendance: %w", err)
	}
	return records, nil
}

// YearlyByName aggregates attendance per academic year for every student
// row sharing a name, tagged with that year's grade level.
func (r *AttendanceRepository) YearlyByName(ctx context.Context, name string) ([]models.YearAttendance, error) {
	query := `SELECT a.academic_year, c.grade, ` + statsColumns + `
FROM students s
JOIN classes c ON c.id = s.class_id
JOIN attendances a ON a.student_id = s.id AND a.academic_year = s.academic_year
JOIN attendance_types at ON at.id = a.type_id
WHERE s.name = $1
GROUP BY a.academic_year, c.grade
ORDER BY a.academic_year`
	var rows []models.YearAttendance
	if err := r.db.SelectContext(ctx, &rows, query, name); err != nil {
		return nil, fmt.Errorf("yearly attendance by name: %w", err)
	}
	return rows, nil
}

// Ranking orders students of an academic year by attendance rate. Students
// without marks are excluded.
func (r *AttendanceRepository) Ranking(ctx context.Context, year, limit int, ascending bool) ([]models.AttendanceRanking, error) {
	order := "DESC"
	if ascending {
		order = "ASC"
	}
	query := fmt.Sprintf(`SELECT s.id AS student_id, s.name, c.grade, c.class_num, %s
FROM students s
JOIN classes c ON c.id = s.class_id
LEFT JOIN attendances a ON a.student_id = s.id AND a.academic_year = $1
LEFT JOIN attendance_types at ON at.id = a.type_id
WHERE s.academic_year = $1
GROUP BY s.id, s.name, c.grade, c.class_num
HAVING COUNT(a.id) > 0
ORDER BY attendance_rate %s
LIMIT %d`, statsColumns, order, limit)
	var rows []models.AttendanceRanking
	if err := r.db.SelectContext(ctx, &rows, query, year); err != nil {
		return nil, fmt.Errorf("attendance ranking: %w", err)
	}
	return rows, nil
}

// ClassSummary returns per-student attendance for a class, best rate first.
func (r *AttendanceRepository) ClassSummary(ctx context.Context, classID string) ([]models.ClassAttendanceRow, error) {
	query := `SELECT s.id AS student_id, s.name, ` + statsColumns + `
FROM students s
LEFT JOIN attendances a ON a.student_id = s.id AND a.academic_year = s.academic_year
LEFT JOIN attendance_types at ON at.id = a.type_id
WHERE s.class_id = $1
GROUP BY s.id, s.name
ORDER BY attendance_rate DESC, s.name`
	var rows []models.ClassAttendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, classID); err != nil {
		return nil, fmt.Errorf("class attendance summary: %w", err)
	}
	return rows, nil
}

// RecomputeRollups rebuilds the monthly and yearly rollups of an academic
// year inside one transaction.
func (r *AttendanceRepository) RecomputeRollups(ctx context.Context, year int, calculatedAt time.Time) (*models.RollupResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin rollup: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	monthly := `INSERT INTO monthly_attendances (student_id, year, month, total_days, present_days, absent_days, late_days, early_leave_days, attendance_rate, calculated_at)
SELECT a.student_id, EXTRACT(YEAR FROM a.date)::int, EXTRACT(MONTH FROM a.date)::int, ` + statsColumns + `, $2
FROM attendances a
JOIN attendance_types at ON at.id = a.type_id
WHERE a.academic_year = $1
GROUP BY a.student_id, EXTRACT(YEAR FROM a.date), EXTRACT(MONTH FROM a.date)
ON CONFLICT (student_id, year, month) DO UPDATE
SET total_days = EXCLUDED.total_days, present_days = EXCLUDED.present_days, absent_days = EXCLUDED.absent_days,
    late_days = EXCLUDED.late_days, early_leave_days = EXCLUDED.early_leave_days,
    attendance_rate = EXCLUDED.attendance_rate, calculated_at = EXCLUDED.calculated_at`
	res, err := tx.ExecContext(ctx, monthly, year, calculatedAt)
	if err != nil {
		return nil, fmt.Errorf("rollup monthly attendance: %w", err)
	}
	monthlyRows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rollup monthly rows: %w", err)
	}

	yearly := `INSERT INTO yearly_attendances (student_id, year, total_days, present_days, absent_days, late_days, early_leave_days, attendance_rate, calculated_at)
SELECT a.student_id, a.academic_year, ` + statsColumns + `, $2
FROM attendances a
JOIN attendance_types at ON at.id = a.type_id
WHERE a.academic_year = $1
GROUP BY a.student_id, a.academic_year
ON CONFLICT (student_id, year) DO UPDATE
SET total_days = EXCLUDED.total_days, present_days = EXCLUDED.present_days, absent_days = EXCLUDED.absent_days,
    late_days = EXCLUDED.late_days, early_leave_days = EXCLUDED.early_leave_days,
    attendance_rate = EXCLUDED.attendance_rate, calculated_at = EXCLUDED.calculated_at`
	res, err = tx.ExecContext(ctx, yearly, year, calculatedAt)
	if err != nil {
		return nil, fmt.Errorf("rollup yearly attendance: %w", err)
	}
	yearlyRows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rollup yearly rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit rollup: %w", err)
	}
	commit = true
	return &models.RollupResult{AcademicYear: year, MonthlyRows: monthlyRows, YearlyRows: yearlyRows, CalculatedAt: calculatedAt}, nil
}
