package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

type catalogSeederMock struct {
	subjects []string
	exams    []string
}

func (m *catalogSeederMock) EnsureSubjects(ctx context.Context, names []string) error {
	m.subjects = names
	return nil
}

func (m *catalogSeederMock) EnsureExams(ctx context.Context, names []string) error {
	m.exams = names
	return nil
}

type adminSeederMock struct{ users []*models.User }

func (m *adminSeederMock) EnsureAdmin(ctx context.Context, user *models.User) (bool, error) {
	m.users = append(m.users, user)
	return len(m.users) == 1, nil
}

func TestSeedServiceRun(t *testing.T) {
	catalog := &catalogSeederMock{}
	users := &adminSeederMock{}
	svc := NewSeedService(catalog, users, nil)

	require.NoError(t, svc.Run(context.Background(), SeedAdmin{Password: "changeme"}))
	assert.Equal(t, DefaultSubjects, catalog.subjects)
	assert.Equal(t, DefaultExams, catalog.exams)
	require.Len(t, users.users, 1)

	admin := users.users[0]
	assert.Equal(t, "admin", *admin.LoginID)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("changeme")))
}

func TestSeedServiceSkipsAdminWithoutPassword(t *testing.T) {
	users := &adminSeederMock{}
	svc := NewSeedService(&catalogSeederMock{}, users, nil)
	require.NoError(t, svc.Run(context.Background(), SeedAdmin{}))
	assert.Empty(t, users.users)
}
