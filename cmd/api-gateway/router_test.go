package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/school-assistant-api/internal/handler"
	"github.com/noah-isme/school-assistant-api/internal/models"
	"github.com/noah-isme/school-assistant-api/internal/service"
	"github.com/noah-isme/school-assistant-api/pkg/config"
	appErrors "github.com/noah-isme/school-assistant-api/pkg/errors"
)

type rejectAll struct{}

func (rejectAll) ValidateToken(string) (*models.JWTClaims, error) {
	return nil, appErrors.ErrUnauthorized
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api"}
	h := &handlers{
		auth:       handler.NewAuthHandler(nil, nil, ""),
		chat:       handler.NewChatHandler(nil),
		calendar:   handler.NewCalendarHandler(nil, nil),
		google:     handler.NewGoogleCalendarHandler(nil, nil, nil),
		teachers:   handler.NewTeacherHandler(nil),
		classes:    handler.NewClassHandler(nil),
		students:   handler.NewStudentHandler(nil),
		grades:     handler.NewGradeHandler(nil),
		attendance: handler.NewAttendanceHandler(nil),
		ops:        handler.NewMetricsHandler(service.NewMetricsService(), nil),
	}
	return newRouter(cfg, zap.NewNop(), service.NewMetricsService(), rejectAll{}, h)
}

func TestRouterRegistersSurface(t *testing.T) {
	r := testRouter()
	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"GET /metrics",
		"POST /api/login",
		"GET /api/auth/google/callback",
		"POST /api/chat",
		"GET /api/calendar/events",
		"DELETE /api/calendar/google/events/:id",
		"GET /api/students/:id/grades",
		"GET /api/subjects/:name/analysis",
		"POST /api/attendance/rollups",
	} {
		assert.True(t, registered[want], want)
	}
	assert.False(t, registered["GET /docs/*any"], "docs are hidden in production")
}

func TestRouterGuardsSecuredRoutes(t *testing.T) {
	r := testRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/teachers", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/attendance/rollups", nil)
	req.Header.Set("Authorization", "Bearer nope")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
