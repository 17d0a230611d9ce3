package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

func TestStudentListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "class_id", "academic_year", "created_at", "grade", "class_num"}).
		AddRow("s1", "김철수", "c1", 2025, now, 1, 1)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND s.academic_year = $1 AND s.name LIKE $2 ORDER BY c.grade, c.class_num, s.name LIMIT 50 OFFSET 0")).
		WithArgs(2025, "%철수%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students s JOIN classes c ON c.id = s.class_id WHERE 1=1")).
		WithArgs(2025, "%철수%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{AcademicYear: 2025, Search: "철수"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, students, 1)
	assert.Equal(t, "김철수", students[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentNamesHonoursLimit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY c.grade, c.class_num, s.name LIMIT 10")).
		WithArgs(2025).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("김철수").AddRow("이영희"))

	names, err := repo.Names(context.Background(), 2025, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"김철수", "이영희"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}
