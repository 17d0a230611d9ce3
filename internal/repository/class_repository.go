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

// ClassRepository handles persistence for homerooms.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes ordered by year, grade and number.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, error) {
	var conditions []string
	var args []interface{}
	if filter.AcademicYear > 0 {
		conditions = append(conditions, fmt.Sprintf("c.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Grade > 0 {
		conditions = append(conditions, fmt.Sprintf("c.grade = $%d", len(args)+1))
		args = append(args, filter.Grade)
	}

	query := "SELECT c.id, c.academic_year, c.grade, c.class_num, c.teacher_id, u.name AS teacher_name, c.created_at FROM classes c LEFT JOIN users u ON u.id = c.teacher_id"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY c.academic_year DESC, c.grade, c.class_num"

	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID returns a class by identifier.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT c.id, c.academic_year, c.grade, c.class_num, c.teacher_id, u.name AS teacher_name, c.created_at FROM classes c LEFT JOIN users u ON u.id = c.teacher_id WHERE c.id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	return &class, nil
}

// FindByNumber returns a class by its year, grade and number.
func (r *ClassRepository) FindByNumber(ctx context.Context, year, grade, classNum int) (*models.Class, error) {
	const query = `SELECT id, academic_year, grade, class_num, teacher_id, created_at FROM classes WHERE academic_year = $1 AND grade = $2 AND class_num = $3`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, year, grade, classNum); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get class by number: %w", err)
	}
	return &class, nil
}

// Create inserts a class. ErrDuplicate is returned when the (year, grade,
// number) triple already exists.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO classes (id, academic_year, grade, class_num, teacher_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT ON CONSTRAINT classes_year_grade_num_key DO NOTHING RETURNING id`
	var inserted string
	if err := r.db.QueryRowxContext(ctx, query, class.ID, class.AcademicYear, class.Grade, class.ClassNum, class.TeacherID, class.CreatedAt).Scan(&inserted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDuplicate
		}
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Count returns the number of classes in an academic year.
func (r *ClassRepository) Count(ctx context.Context, year int) (int, error) {
	const query = `SELECT COUNT(*) FROM classes WHERE academic_year = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, year); err != nil {
		return 0, fmt.Errorf("count classes: %w", err)
	}
	return total, nil
}
