package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

// CatalogRepository reads and seeds the subject and exam catalogs.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs a CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Subjects lists all subjects by name.
func (r *CatalogRepository) Subjects(ctx context.Context) ([]models.Subject, error) {
	const query = `SELECT id, name FROM subjects ORDER BY name`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// Exams lists all exams in calendar order.
func (r *CatalogRepository) Exams(ctx context.Context) ([]models.Exam, error) {
	const query = `SELECT id, name, exam_order FROM exams ORDER BY exam_order, name`
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// SubjectByName returns a subject by exact name.
func (r *CatalogRepository) SubjectByName(ctx context.Context, name string) (*models.Subject, error) {
	const query = `SELECT id, name FROM subjects WHERE name = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get subject: %w", err)
	}
	return &subject, nil
}

// EnsureSubjects inserts any missing subject names.
func (r *CatalogRepository) EnsureSubjects(ctx context.Context, names []string) error {
	const query = `INSERT INTO subjects (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`
	for _, name := range names {
		if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), name); err != nil {
			return fmt.Errorf("seed subject %s: %w", name, err)
		}
	}
	return nil
}

// EnsureExams inserts any missing exams, keeping slice order as exam_order.
func (r *CatalogRepository) EnsureExams(ctx context.Context, names []string) error {
	const query = `INSERT INTO exams (id, name, exam_order) VALUES ($1, $2, $3) ON CONFLICT (name) DO UPDATE SET exam_order = EXCLUDED.exam_order`
	for i, name := range names {
		if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), name, i+1); err != nil {
			return fmt.Errorf("seed exam %s: %w", name, err)
		}
	}
	return nil
}
