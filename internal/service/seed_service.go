package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

// DefaultSubjects and DefaultExams make up the reference catalog.
var (
	DefaultSubjects = []string{"국어", "수학", "사회", "과학", "영어"}
	DefaultExams    = []string{"1학기중간고사", "1학기기말고사", "2학기중간고사", "2학기기말고사"}
)

type catalogSeeder interface {
	EnsureSubjects(ctx context.Context, names []string) error
	EnsureExams(ctx context.Context, names []string) error
}

type adminSeeder interface {
	EnsureAdmin(ctx context.Context, user *models.User) (bool, error)
}

// SeedAdmin describes the bootstrap administrator.
type SeedAdmin struct {
	LoginID  string
	Password string
	Name     string
	Email    string
}

// SeedService loads reference data. Attendance types and reasons are part of
// the schema migrations.
type SeedService struct {
	catalog catalogSeeder
	users   adminSeeder
	logger  *zap.Logger
}

// NewSeedService constructs a SeedService.
func NewSeedService(catalog catalogSeeder, users adminSeeder, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{catalog: catalog, users: users, logger: logger}
}

// Run seeds the catalog and, when a password is given, the admin account.
// It is safe to run repeatedly.
func (s *SeedService) Run(ctx context.Context, admin SeedAdmin) error {
	if err := s.catalog.EnsureSubjects(ctx, DefaultSubjects); err != nil {
		return fmt.Errorf("seed subjects: %w", err)
	}
	if err := s.catalog.EnsureExams(ctx, DefaultExams); err != nil {
		return fmt.Errorf("seed exams: %w", err)
	}
	s.logger.Info("catalog seeded", zap.Int("subjects", len(DefaultSubjects)), zap.Int("exams", len(DefaultExams)))

	if admin.Password == "" {
		s.logger.Info("admin password not set, skipping admin account")
		return nil
	}
	if admin.LoginID == "" {
		admin.LoginID = "admin"
	}
	if admin.Name == "" {
		admin.Name = "관리자"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user := &models.User{
		LoginID:      strPtr(admin.LoginID),
		Email:        strPtr(admin.Email),
		PasswordHash: string(hash),
		Name:         admin.Name,
		Role:         models.RoleAdmin,
		Active:       true,
	}
	created, err := s.users.EnsureAdmin(ctx, user)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.logger.Info("admin account checked", zap.String("login_id", admin.LoginID), zap.Bool("created", created))
	return nil
}
