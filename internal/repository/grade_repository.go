package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

// GradeRepository persists exam scores and runs the aggregate queries used
// by rankings and analyses.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Create inserts a grade. ErrDuplicate is returned when the student already
// has a score for the subject, exam and year.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO grades (id, student_id, subject_id, exam_id, academic_year, score, exam_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT ON CONSTRAINT grades_student_subject_exam_year_key DO NOTHING RETURNING id`
	var inserted string
	err := r.db.QueryRowxContext(ctx, query, grade.ID, grade.StudentID, grade.SubjectID, grade.ExamID, grade.AcademicYear, grade.Score, grade.ExamDate, grade.CreatedAt).Scan(&inserted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDuplicate
		}
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// ListByStudent returns a student's scores for an academic year.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string, year int) ([]models.GradeRecord, error) {
	const query = `SELECT g.academic_year, sub.name AS subject, e.name AS exam, e.exam_order, g.score, g.exam_date
FROM grades g
JOIN subjects sub ON sub.id = g.subject_id
JOIN exams e ON e.id = g.exam_id
WHERE g.student_id = $1 AND g.academic_year = $2
ORDER BY e.exam_order, sub.name`
	var records []models.GradeRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID, year); err != nil {
		return nil, fmt.Errorf("list student grades: %w", err)
	}
	return records, nil
}

// Rankings returns students ordered by average score. Ties keep database
// order.
func (r *GradeRepository) Rankings(ctx context.Context, filter models.RankingFilter) ([]models.StudentAverage, error) {
	var conditions []string
	var args []interface{}
	if filter.Grade > 0 {
		conditions = append(conditions, fmt.Sprintf("c.grade = $%d", len(args)+1))
		args = append(args, filter.Grade)
	}
	if filter.AcademicYear > 0 {
		conditions = append(conditions, fmt.Sprintf("g.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}

	query := `SELECT s.id AS student_id, s.name, c.grade, c.class_num, ROUND(AVG(g.score), 1) AS average, COUNT(g.id) AS grade_count
FROM students s
JOIN classes c ON c.id = s.class_id
JOIN grades g ON g.student_id = s.id`
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	order := "DESC"
	if filter.Ascending {
		order = "ASC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	query += fmt.Sprintf("\nGROUP BY s.id, s.name, c.grade, c.class_num\nORDER BY AVG(g.score) %s\nLIMIT %d", order, limit)

	var rows []models.StudentAverage
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("rank students: %w", err)
	}
	return rows, nil
}

// ClassAverages returns per-student averages within a class, best first.
func (r *GradeRepository) ClassAverages(ctx context.Context, classID string) ([]models.StudentAverage, error) {
	const query = `SELECT s.id AS student_id, s.name, c.grade, c.class_num, ROUND(AVG(g.score), 1) AS average, COUNT(g.id) AS grade_count
FROM students s
JOIN classes c ON c.id = s.class_id
JOIN grades g ON g.student_id = s.id
WHERE s.class_id = $1
GROUP BY s.id, s.name, c.grade, c.class_num
ORDER BY AVG(g.score) DESC`
	var rows []models.StudentAverage
	if err := r.db.SelectContext(ctx, &rows, query, classID); err != nil {
		return nil, fmt.Errorf("class averages: %w", err)
	}
	return rows, nil
}

// SubjectStats returns overall statistics for a subject across all years.
// A subject without scores yields sql.ErrNoRows.
func (r *GradeRepository) SubjectStats(ctx context.Context, subjectID string) (*models.ScoreStats, error) {
	const query = `SELECT ROUND(AVG(score), 1) AS average, MIN(score) AS min_score, MAX(score) AS max_score, COUNT(id) AS total
FROM grades WHERE subject_id = $1 HAVING COUNT(id) > 0`
	var stats models.ScoreStats
	if err := r.db.GetContext(ctx, &stats, query, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("subject stats: %w", err)
	}
	return &stats, nil
}

// SubjectGradeAverages returns a subject's average per grade level.
func (r *GradeRepository) SubjectGradeAverages(ctx context.Context, subjectID string) ([]models.GradeLevelAverage, error) {
	const query = `SELECT c.grade, ROUND(AVG(g.score), 1) AS average
FROM classes c
JOIN students s ON s.class_id = c.id
JOIN grades g ON g.student_id = s.id
WHERE g.subject_id = $1
GROUP BY c.grade
ORDER BY c.grade`
	var rows []models.GradeLevelAverage
	if err := r.db.SelectContext(ctx, &rows, query, subjectID); err != nil {
		return nil, fmt.Errorf("subject grade averages: %w", err)
	}
	return rows, nil
}

func examConditions(filter models.ExamFilter) (string, []interface{}) {
	conditions := []string{"g.exam_id = $1"}
	args := []interface{}{filter.ExamID}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("g.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.Grade > 0 {
		conditions = append(conditions, fmt.Sprintf("c.grade = $%d", len(args)+1))
		args = append(args, filter.Grade)
	}
	if filter.ClassNum > 0 {
		conditions = append(conditions, fmt.Sprintf("c.class_num = $%d", len(args)+1))
		args = append(args, filter.ClassNum)
	}
	return strings.Join(conditions, " AND "), args
}

// ExamBreakdown returns score statistics per class and subject for an exam.
func (r *GradeRepository) ExamBreakdown(ctx context.Context, filter models.ExamFilter) ([]models.ExamCell, error) {
	where, args := examConditions(filter)
	query := `SELECT c.grade, c.class_num, sub.name AS subject, ROUND(AVG(g.score), 1) AS average, MIN(g.score) AS min_score, MAX(g.score) AS max_score, COUNT(g.id) AS total
FROM grades g
JOIN students s ON s.id = g.student_id
JOIN classes c ON c.id = s.class_id
JOIN subjects sub ON sub.id = g.subject_id
WHERE ` + where + `
GROUP BY c.grade, c.class_num, sub.name
ORDER BY c.grade, c.class_num, sub.name`
	var cells []models.ExamCell
	if err := r.db.SelectContext(ctx, &cells, query, args...); err != nil {
		return nil, fmt.Errorf("exam breakdown: %w", err)
	}
	return cells, nil
}

// ExamStudentCount returns how many distinct students sat the exam.
func (r *GradeRepository) ExamStudentCount(ctx context.Context, filter models.ExamFilter) (int, error) {
	where, args := examConditions(filter)
	query := `SELECT COUNT(DISTINCT g.student_id)
FROM grades g
JOIN students s ON s.id = g.student_id
JOIN classes c ON c.id = s.class_id
WHERE ` + where
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("exam student count: %w", err)
	}
	return total, nil
}

// ExamTopScores returns the highest individual scores for an exam.
func (r *GradeRepository) ExamTopScores(ctx context.Context, filter models.ExamFilter, limit int) ([]models.ScoreEntry, error) {
	where, args := examConditions(filter)
	query := fmt.Sprintf(`SELECT s.name, g.score
FROM grades g
JOIN students s ON s.id = g.student_id
JOIN classes c ON c.id = s.class_id
WHERE %s
ORDER BY g.score DESC
LIMIT %d`, where, limit)
	var entries []models.ScoreEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("exam top scores: %w", err)
	}
	return entries, nil
}

// HistoryByName returns per-year, per-subject averages for every student
// row sharing a name.
func (r *GradeRepository) HistoryByName(ctx context.Context, name string) ([]models.HistoryRow, error) {
	const query = `SELECT s.academic_year, c.grade, c.class_num, sub.name AS subject, AVG(g.score) AS average, COUNT(g.id) AS grade_count
FROM students s
JOIN classes c ON c.id = s.class_id
JOIN grades g ON g.student_id = s.id AND g.academic_year = s.academic_year
JOIN subjects sub ON sub.id = g.subject_id
WHERE s.name = $1
GROUP BY s.academic_year, c.grade, c.class_num, sub.name
ORDER BY s.academic_year, sub.name`
	var rows []models.HistoryRow
	if err := r.db.SelectContext(ctx, &rows, query, name); err != nil {
		return nil, fmt.Errorf("grade history: %w", err)
	}
	return rows, nil
}
