package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

var statColumns = []string{"total_days", "present_days", "absent_days", "late_days", "early_leave_days", "attendance_rate"}

func TestAttendanceUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (student_id, date) DO UPDATE")).WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.Attendance{StudentID: "s1", Date: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), TypeID: models.AttendanceLate, AcademicYear: 2025})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceStudentStats(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.student_id = $1 AND a.academic_year = $2")).
		WithArgs("s1", 2025).
		WillReturnRows(sqlmock.NewRows(statColumns).AddRow(20, 17, 1, 1, 1, 85.0))

	stats, err := repo.StudentStats(context.Background(), "s1", 2025)
	require.NoError(t, err)
	assert.Equal(t, 20, stats.TotalDays)
	assert.Equal(t, 85.0, stats.AttendanceRate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRankingAscending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	cols := append([]string{"student_id", "name", "grade", "class_num"}, statColumns...)
	mock.ExpectQuery(regexp.QuoteMeta("HAVING COUNT(a.id) > 0\nORDER BY attendance_rate ASC\nLIMIT 3")).
		WithArgs(2025).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("s1", "김철수", 1, 1, 10, 5, 5, 0, 0, 50.0))

	rows, err := repo.Ranking(context.Background(), 2025, 3, true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 50.0, rows[0].AttendanceRate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecomputeRollupsCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	at := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO monthly_attendances")).WithArgs(2025, at).WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO yearly_attendances")).WithArgs(2025, at).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	res, err := repo.RecomputeRollups(context.Background(), 2025, at)
	require.NoError(t, err)
	assert.EqualValues(t, 12, res.MonthlyRows)
	assert.EqualValues(t, 3, res.YearlyRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecomputeRollupsRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO monthly_attendances")).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := repo.RecomputeRollups(context.Background(), 2025, time.Now())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
