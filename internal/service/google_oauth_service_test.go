package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/noah-isme/school-assistant-api/internal/models"
	appErrors "github.com/noah-isme/school-assistant-api/pkg/errors"
)

type mockGoogleUsers struct {
	byID     map[string]*models.User
	created  []*models.User
	linked   map[string]models.GoogleTokens
	refreshd []models.GoogleTokens
}

func newMockGoogleUsers() *mockGoogleUsers {
	return &mockGoogleUsers{byID: map[string]*models.User{}, linked: map[string]models.GoogleTokens{}}
}

func (m *mockGoogleUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGoogleUsers) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	for _, u := range m.byID {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockGoogleUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.byID {
		if u.EmailValue() == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockGoogleUsers) Create(ctx context.Context, user *models.User) error {
	user.ID = "new-user"
	m.byID[user.ID] = user
	m.created = append(m.created, user)
	return nil
}

func (m *mockGoogleUsers) LinkGoogle(ctx context.Context, id string, profile models.GoogleProfile, tokens models.GoogleTokens) error {
	m.linked[id] = tokens
	return nil
}

func (m *mockGoogleUsers) UpdateGoogleTokens(ctx context.Context, id string, tokens models.GoogleTokens) error {
	m.refreshd = append(m.refreshd, tokens)
	return nil
}

type stubIssuer struct{ issued []string }

func (s *stubIssuer) IssueToken(ctx context.Context, user *models.User) (*models.LoginResponse, error) {
	s.issued = append(s.issued, user.ID)
	return &models.LoginResponse{AccessToken: "jwt-" + user.ID, User: models.NewUserInfo(user)}, nil
}

type stubProfiles struct {
	profile *models.GoogleProfile
	err     error
}

func (s stubProfiles) Profile(ctx context.Context, token *oauth2.Token) (*models.GoogleProfile, error) {
	return s.profile, s.err
}

type stubVerifier struct {
	profile *models.GoogleProfile
	err     error
	aud     string
}

func (s *stubVerifier) Verify(idToken, audience string) (*models.GoogleProfile, error) {
	s.aud = audience
	return s.profile, s.err
}

func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") == "bad" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		if r.Form.Get("grant_type") == "authorization_code" {
			assert.NotEmpty(t, r.Form.Get("code_verifier"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-1","token_type":"Bearer","refresh_token":"refresh-1","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newOAuthFixture(t *testing.T, users *mockGoogleUsers, profiles GoogleProfileFetcher) (*GoogleOAuthService, *stubIssuer, *httptest.Server) {
	srv := newTokenServer(t)
	cfg := &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8000/api/auth/google/callback",
		Scopes:       GoogleScopes,
		Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
	}
	issuer := &stubIssuer{}
	svc := NewGoogleOAuthService(cfg, users, issuer, NewMemoryStateStore(), profiles, &stubVerifier{}, time.Minute, nil)
	return svc, issuer, srv
}

func stateFrom(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	return q.Get("state")
}

func TestGoogleCallbackCreatesUser(t *testing.T) {
	users := newMockGoogleUsers()
	profile := &models.GoogleProfile{GoogleID: "g-1", Email: "new@school.kr", Name: "박선생"}
	svc, issuer, _ := newOAuthFixture(t, users, stubProfiles{profile: profile})
	ctx := context.Background()

	authURL, err := svc.AuthURL(ctx)
	require.NoError(t, err)
	state := stateFrom(t, authURL)

	resp, err := svc.Callback(ctx, "good", state)
	require.NoError(t, err)
	assert.Equal(t, "jwt-new-user", resp.AccessToken)
	require.Len(t, users.created, 1)
	assert.Equal(t, "refresh-1", *users.created[0].GoogleRefreshToken)
	assert.Equal(t, []string{"new-user"}, issuer.issued)

	_, err = svc.Callback(ctx, "good", state)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized, "state must be single use")
}

func TestGoogleCallbackLinksExistingEmail(t *testing.T) {
	users := newMockGoogleUsers()
	email := "kim@school.kr"
	users.byID["u1"] = &models.User{ID: "u1", Email: &email, Name: "김선생", Role: models.RoleTeacher, Active: true}
	svc, _, _ := newOAuthFixture(t, users, stubProfiles{profile: &models.GoogleProfile{GoogleID: "g-2", Email: email}})
	ctx := context.Background()

	authURL, err := svc.AuthURL(ctx)
	require.NoError(t, err)

	resp, err := svc.Callback(ctx, "good", stateFrom(t, authURL))
	require.NoError(t, err)
	assert.Equal(t, "jwt-u1", resp.AccessToken)
	assert.Empty(t, users.created)
	assert.Equal(t, "access-1", users.linked["u1"].AccessToken)
}

func TestGoogleCallbackExchangeFailureIsBadGateway(t *testing.T) {
	svc, _, _ := newOAuthFixture(t, newMockGoogleUsers(), stubProfiles{})
	ctx := context.Background()
	authURL, err := svc.AuthURL(ctx)
	require.NoError(t, err)

	_, err = svc.Callback(ctx, "bad", stateFrom(t, authURL))
	assert.ErrorIs(t, err, appErrors.ErrBadGateway)
}

func TestGoogleCallbackProfileFailureIsBadGateway(t *testing.T) {
	svc, _, _ := newOAuthFixture(t, newMockGoogleUsers(), stubProfiles{err: errors.New("down")})
	ctx := context.Background()
	authURL, err := svc.AuthURL(ctx)
	require.NoError(t, err)

	_, err = svc.Callback(ctx, "good", stateFrom(t, authURL))
	assert.ErrorIs(t, err, appErrors.ErrBadGateway)
}

func TestGoogleCallbackUnknownState(t *testing.T) {
	svc, _, _ := newOAuthFixture(t, newMockGoogleUsers(), stubProfiles{})
	_, err := svc.Callback(context.Background(), "good", "forged")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestLoginWithIDToken(t *testing.T) {
	users := newMockGoogleUsers()
	svc, _, _ := newOAuthFixture(t, users, stubProfiles{})
	verifier := &stubVerifier{profile: &models.GoogleProfile{GoogleID: "g-3", Email: "id@school.kr", Name: "최선생"}}
	svc.verifier = verifier

	resp, err := svc.LoginWithIDToken(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "jwt-new-user", resp.AccessToken)
	assert.Equal(t, "client-id", verifier.aud)
	assert.Nil(t, users.created[0].GoogleAccessToken)

	svc.verifier = &stubVerifier{err: errors.New("expired")}
	_, err = svc.LoginWithIDToken(context.Background(), "token")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthURLRequiresConfiguration(t *testing.T) {
	svc := NewGoogleOAuthService(&oauth2.Config{}, newMockGoogleUsers(), &stubIssuer{}, NewMemoryStateStore(), stubProfiles{}, &stubVerifier{}, 0, nil)
	_, err := svc.AuthURL(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrNotConfigured)
}

func TestTokenSourceRequiresLink(t *testing.T) {
	users := newMockGoogleUsers()
	users.byID["u1"] = &models.User{ID: "u1", Active: true}
	svc, _, _ := newOAuthFixture(t, users, stubProfiles{})

	_, err := svc.TokenSource(context.Background(), "u1")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestTokenSourceRefreshesAndPersists(t *testing.T) {
	users := newMockGoogleUsers()
	access, refresh := "stale", "refresh-1"
	expired := time.Now().Add(-time.Hour)
	users.byID["u1"] = &models.User{ID: "u1", Active: true, GoogleAccessToken: &access, GoogleRefreshToken: &refresh, GoogleTokenExpiresAt: &expired}
	svc, _, _ := newOAuthFixture(t, users, stubProfiles{})

	ts, err := svc.TokenSource(context.Background(), "u1")
	require.NoError(t, err)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)
	require.Len(t, users.refreshd, 1)
	assert.Equal(t, "access-1", users.refreshd[0].AccessToken)
}

func TestMemoryStateStoreExpires(t *testing.T) {
	store := NewMemoryStateStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Set(context.Background(), "k", oauthState{Verifier: "v"}, time.Minute))

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	var out oauthState
	assert.ErrorIs(t, store.Take(context.Background(), "k", &out), appErrors.ErrCacheMiss)
}
