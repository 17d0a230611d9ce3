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

const studentDetailColumns = `s.id, s.name, s.class_id, s.academic_year, s.created_at, c.grade, c.class_num`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	base := "FROM students s JOIN classes c ON c.id = s.class_id"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("s.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.AcademicYear > 0 {
		conditions = append(conditions, fmt.Sprintf("s.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("s.name LIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY c.grade, c.class_num, s.name LIMIT %d OFFSET %d", studentDetailColumns, base, size, offset)
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID returns a student with class information.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM students s JOIN classes c ON c.id = s.class_id WHERE s.id = $1", studentDetailColumns)
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &student, nil
}

// FindByName returns the student row for a name in an academic year.
func (r *StudentRepository) FindByName(ctx context.Context, name string, year int) (*models.StudentDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM students s JOIN classes c ON c.id = s.class_id WHERE s.name = $1 AND s.academic_year = $2 LIMIT 1", studentDetailColumns)
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, name, year); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get student by name: %w", err)
	}
	return &student, nil
}

// Create inserts a student row.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO students (id, name, class_id, academic_year, created_at) VALUES (:id, :name, :class_id, :academic_year, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Names returns student names for an academic year in roster order. A
// non-positive limit returns every name.
func (r *StudentRepository) Names(ctx context.Context, year, limit int) ([]string, error) {
	query := `SELECT s.name FROM students s JOIN classes c ON c.id = s.class_id WHERE s.academic_year = $1 ORDER BY c.grade, c.class_num, s.name`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var names []string
	if err := r.db.SelectContext(ctx, &names, query, year); err != nil {
		return nil, fmt.Errorf("list student names: %w", err)
	}
	return names, nil
}

// Count returns the number of students in an academic year.
func (r *StudentRepository) Count(ctx context.Context, year int) (int, error) {
	const query = `SELECT COUNT(*) FROM students WHERE academic_year = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, year); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}
