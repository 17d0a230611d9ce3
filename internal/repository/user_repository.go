package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

const userColumns = `id, login_id, email, password_hash, name, picture, google_id, google_access_token, google_refresh_token, google_token_expires_at, role, is_active, last_login, created_at, updated_at`

// UserRepository provides database access for teachers and administrators.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) findOne(ctx context.Context, op, column, value string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE %s = $1 LIMIT 1", userColumns, column)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// FindByLoginID returns a user by login identifier.
func (r *UserRepository) FindByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	return r.findOne(ctx, "find user by login id", "login_id", loginID)
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "find user by email", "email", email)
}

// FindByGoogleID returns a user by Google subject identifier.
func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.findOne(ctx, "find user by google id", "google_id", googleID)
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "find user by id", "id", id)
}

// UpdateLastLogin updates the last_login timestamp for a user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE users SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleTeacher
	}

	const query = `INSERT INTO users (id, login_id, email, password_hash, name, picture, google_id, google_access_token, google_refresh_token, google_token_expires_at, role, is_active, created_at, updated_at) VALUES (:id, :login_id, :email, :password_hash, :name, :picture, :google_id, :google_access_token, :google_refresh_token, :google_token_expires_at, :role, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// EnsureAdmin inserts an administrator account unless the login id exists.
// It reports whether a row was written.
func (r *UserRepository) EnsureAdmin(ctx context.Context, user *models.User) (bool, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	user.Role = models.RoleAdmin
	user.Active = true

	const query = `INSERT INTO users (id, login_id, email, password_hash, name, role, is_active, created_at, updated_at) VALUES (:id, :login_id, :email, :password_hash, :name, :role, :is_active, :created_at, :updated_at) ON CONFLICT (login_id) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ensure admin rows: %w", err)
	}
	return affected > 0, nil
}

// LinkGoogle attaches a Google identity and fresh tokens to an existing user.
// A blank refresh token keeps the stored one; Google only sends it on consent.
func (r *UserRepository) LinkGoogle(ctx context.Context, id string, profile models.GoogleProfile, tokens models.GoogleTokens) error {
	const query = `UPDATE users SET google_id = $2, picture = NULLIF($3, ''), google_access_token = $4, google_refresh_token = COALESCE(NULLIF($5, ''), google_refresh_token), google_token_expires_at = $6, updated_at = $7 WHERE id = $1`
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, id, profile.GoogleID, profile.Picture, tokens.AccessToken, tokens.RefreshToken, tokens.Expiry, now); err != nil {
		return fmt.Errorf("link google account: %w", err)
	}
	return nil
}

// UpdateGoogleTokens stores refreshed OAuth tokens.
func (r *UserRepository) UpdateGoogleTokens(ctx context.Context, id string, tokens models.GoogleTokens) error {
	const query = `UPDATE users SET google_access_token = $2, google_refresh_token = COALESCE(NULLIF($3, ''), google_refresh_token), google_token_expires_at = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, tokens.AccessToken, tokens.RefreshToken, tokens.Expiry, time.Now().UTC()); err != nil {
		return fmt.Errorf("update google tokens: %w", err)
	}
	return nil
}

// ListTeachers returns active teachers ordered by name.
func (r *UserRepository) ListTeachers(ctx context.Context) ([]models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE role = $1 AND is_active = TRUE ORDER BY name", userColumns)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, models.RoleTeacher); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return users, nil
}

// TeacherNames returns the names of active teachers.
func (r *UserRepository) TeacherNames(ctx context.Context) ([]string, error) {
	const query = `SELECT name FROM users WHERE role = $1 AND is_active = TRUE ORDER BY name`
	var names []string
	if err := r.db.SelectContext(ctx, &names, query, models.RoleTeacher); err != nil {
		return nil, fmt.Errorf("list teacher names: %w", err)
	}
	return names, nil
}

// CountTeachers returns the number of active teachers.
func (r *UserRepository) CountTeachers(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE role = $1 AND is_active = TRUE`
	var total int
	if err := r.db.GetContext(ctx, &total, query, models.RoleTeacher); err != nil {
		return 0, fmt.Errorf("count teachers: %w", err)
	}
	return total, nil
}
