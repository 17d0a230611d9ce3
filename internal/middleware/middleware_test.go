package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-assistant-api/internal/models"
	appErrors "github.com/noah-isme/school-assistant-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		user := "anonymous"
		if v, ok := c.Get(ContextUserKey); ok {
			user = v.(*models.JWTClaims).UserID
		}
		c.String(http.StatusOK, user)
	})
	r.GET("/", handlers...)
	return r
}

func do(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWT(t *testing.T) {
	v := stubValidator{claims: &models.JWTClaims{UserID: "user-1", Role: models.RoleTeacher}}
	r := newRouter(JWT(v))

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer bad").Code)

	w := do(r, "bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestOptionalJWT(t *testing.T) {
	v := stubValidator{claims: &models.JWTClaims{UserID: "user-1"}}
	r := newRouter(OptionalJWT(v))

	assert.Equal(t, "anonymous", do(r, "").Body.String())
	assert.Equal(t, "anonymous", do(r, "Bearer bad").Body.String())
	assert.Equal(t, "user-1", do(r, "Bearer good").Body.String())
}

func TestRequireRoles(t *testing.T) {
	teacher := newRouter(JWT(stubValidator{claims: &models.JWTClaims{UserID: "t", Role: models.RoleTeacher}}), RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, do(teacher, "Bearer good").Code)

	admin := newRouter(JWT(stubValidator{claims: &models.JWTClaims{UserID: "a", Role: models.RoleAdmin}}), RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusOK, do(admin, "Bearer good").Code)

	anonymous := newRouter(RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, do(anonymous, "").Code)
}
