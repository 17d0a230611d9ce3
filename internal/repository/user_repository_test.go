package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var userRowColumns = []string{"id", "login_id", "email", "password_hash", "name", "picture", "google_id", "google_access_token", "google_refresh_token", "google_token_expires_at", "role", "is_active", "last_login", "created_at", "updated_at"}

func TestFindByLoginID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("u1", "teacher01", "t@school.kr", "hash", "김선생", nil, nil, nil, nil, nil, string(models.RoleTeacher), true, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE login_id = $1 LIMIT 1")).
		WithArgs("teacher01").
		WillReturnRows(rows)

	user, err := repo.FindByLoginID(context.Background(), "teacher01")
	require.NoError(t, err)
	assert.Equal(t, "김선생", user.Name)
	assert.Equal(t, "t@school.kr", user.EmailValue())
	assert.False(t, user.HasGoogleLink())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByGoogleIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE google_id = $1")).
		WithArgs("g-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByGoogleID(context.Background(), "g-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureAdminReportsConflict(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (login_id) DO NOTHING")).WillReturnResult(sqlmock.NewResult(0, 0))

	login := "admin"
	created, err := repo.EnsureAdmin(context.Background(), &models.User{LoginID: &login, PasswordHash: "hash", Name: "관리자"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkGoogleKeepsRefreshTokenWhenBlank(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	expiry := time.Now().Add(time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("google_refresh_token = COALESCE(NULLIF($5, ''), google_refresh_token)")).
		WithArgs("u1", "g-1", "", "access", "", expiry, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.LinkGoogle(context.Background(), "u1", models.GoogleProfile{GoogleID: "g-1"}, models.GoogleTokens{AccessToken: "access", Expiry: expiry})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherNamesAndCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT name FROM users WHERE role = $1 AND is_active = TRUE ORDER BY name")).
		WithArgs(models.RoleTeacher).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("김선생").AddRow("이선생"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE role = $1 AND is_active = TRUE")).
		WithArgs(models.RoleTeacher).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	names, err := repo.TeacherNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"김선생", "이선생"}, names)

	total, err := repo.CountTeachers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
