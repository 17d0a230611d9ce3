package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-assistant-api/internal/middleware"
	"github.com/noah-isme/school-assistant-api/internal/models"
	appErrors "github.com/noah-isme/school-assistant-api/pkg/errors"
)

type authServiceMock struct {
	loginErr error
}

func (m *authServiceMock) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &models.LoginResponse{AccessToken: "jwt", TokenType: "Bearer", User: models.UserInfo{Name: req.LoginID}}, nil
}

func (m *authServiceMock) Me(_ context.Context, userID string) (*models.UserInfo, error) {
	return &models.UserInfo{ID: userID, Name: "김선생", Role: models.RoleTeacher}, nil
}

type googleLoginMock struct {
	callbackErr error
	code, state string
}

func (m *googleLoginMock) AuthURL(context.Context) (string, error) {
	return "https://accounts.google.com/o/oauth2/auth?state=abc", nil
}

func (m *googleLoginMock) Callback(_ context.Context, code, state string) (*models.LoginResponse, error) {
	m.code, m.state = code, state
	if m.callbackErr != nil {
		return nil, m.callbackErr
	}
	return &models.LoginResponse{AccessToken: "jwt-google"}, nil
}

func (m *googleLoginMock) LoginWithIDToken(context.Context, string) (*models.LoginResponse, error) {
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid google id token")
}

func TestAuthHandlerLogin(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{}, &googleLoginMock{}, "")
	w, c := postJSON(t, "/login", models.LoginRequest{LoginID: "admin", Password: "secret"})
	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"jwt"`)

	handler = NewAuthHandler(&authServiceMock{loginErr: appErrors.ErrInvalidCredentials}, &googleLoginMock{}, "")
	w, c = postJSON(t, "/login", models.LoginRequest{LoginID: "admin", Password: "wrong"})
	handler.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestAuthHandlerMe(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{}, &googleLoginMock{}, "")

	w, c := getRequest("/auth/me", nil)
	handler.Me(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, c = getRequest("/auth/me", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1"})
	handler.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"user-1"`)
}

func TestGoogleCallbackJSON(t *testing.T) {
	google := &googleLoginMock{}
	handler := NewAuthHandler(&authServiceMock{}, google, "")

	w, c := getRequest("/auth/google/callback?code=c0de&state=s1", nil)
	handler.GoogleCallback(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c0de", google.code)
	assert.Equal(t, "s1", google.state)
	assert.Contains(t, w.Body.String(), "jwt-google")
}

func TestGoogleCallbackRedirects(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{}, &googleLoginMock{}, "https://app.example.com/")
	w, c := getRequest("/auth/google/callback?code=c0de&state=s1", nil)
	handler.GoogleCallback(c)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://app.example.com/auth/callback?token=jwt-google", w.Header().Get("Location"))

	failing := NewAuthHandler(&authServiceMock{}, &googleLoginMock{callbackErr: appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired oauth state")}, "https://app.example.com")
	w, c = getRequest("/auth/google/callback?code=c0de&state=old", nil)
	failing.GoogleCallback(c)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://app.example.com/login?error=UNAUTHORIZED", w.Header().Get("Location"))
}

func TestGoogleCallbackCancelled(t *testing.T) {
	google := &googleLoginMock{}
	handler := NewAuthHandler(&authServiceMock{}, google, "")
	w, c := getRequest("/auth/google/callback?error=access_denied", nil)
	handler.GoogleCallback(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, google.code)
}
