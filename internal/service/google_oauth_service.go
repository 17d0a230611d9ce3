package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/noah-isme/school-assistant-api/internal/models"
	"github.com/noah-isme/school-assistant-api/pkg/config"
	appErrors "github.com/noah-isme/school-assistant-api/pkg/errors"
)

const oauthStatePrefix = "oauth:state:"

// GoogleScopes are requested on login so the same grant serves calendar calls.
var GoogleScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/calendar.events",
}

type googleUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	LinkGoogle(ctx context.Context, id string, profile models.GoogleProfile, tokens models.GoogleTokens) error
	UpdateGoogleTokens(ctx context.Context, id string, tokens models.GoogleTokens) error
}

type tokenIssuer interface {
	IssueToken(ctx context.Context, user *models.User) (*models.LoginResponse, error)
}

// GoogleProfileFetcher resolves the account behind an OAuth token.
type GoogleProfileFetcher interface {
	Profile(ctx context.Context, token *oauth2.Token) (*models.GoogleProfile, error)
}

// IDTokenVerifier validates a Google ID token for an audience.
type IDTokenVerifier interface {
	Verify(idToken, audience string) (*models.GoogleProfile, error)
}

type oauthState struct {
	Verifier  string    `json:"verifier"`
	CreatedAt time.Time `json:"created_at"`
}

// GoogleOAuthService implements Google sign-in and keeps the user's calendar
// grant fresh.
type GoogleOAuthService struct {
	oauth    *oauth2.Config
	users    googleUserRepository
	issuer   tokenIssuer
	states   StateStore
	profiles GoogleProfileFetcher
	verifier IDTokenVerifier
	stateTTL time.Duration
	logger   *zap.Logger
}

// NewGoogleOAuthConfig builds the OAuth client configuration.
func NewGoogleOAuthConfig(cfg config.GoogleConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       GoogleScopes,
		Endpoint:     google.Endpoint,
	}
}

// NewGoogleOAuthService constructs the service. profiles and verifier may be
// nil to use the Google API backed implementations.
func NewGoogleOAuthService(oauthCfg *oauth2.Config, users googleUserRepository, issuer tokenIssuer, states StateStore, profiles GoogleProfileFetcher, verifier IDTokenVerifier, stateTTL time.Duration, logger *zap.Logger) *GoogleOAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if stateTTL <= 0 {
		stateTTL = 10 * time.Minute
	}
	if profiles == nil {
		profiles = &userinfoFetcher{oauth: oauthCfg}
	}
	if verifier == nil {
		verifier = googleIDTokenVerifier{}
	}
	return &GoogleOAuthService{
		oauth:    oauthCfg,
		users:    users,
		issuer:   issuer,
		states:   states,
		profiles: profiles,
		verifier: verifier,
		stateTTL: stateTTL,
		logger:   logger,
	}
}

// Configured reports whether OAuth client credentials are present.
func (s *GoogleOAuthService) Configured() bool {
	return s != nil && s.oauth != nil && s.oauth.ClientID != "" && s.oauth.ClientSecret != ""
}

// AuthURL returns the consent URL with a fresh one-time state and PKCE
// challenge. Offline access and forced consent make Google return a refresh
// token.
func (s *GoogleOAuthService) AuthURL(ctx context.Context) (string, error) {
	if !s.Configured() {
		return "", appErrors.Clone(appErrors.ErrNotConfigured, "google login is not configured")
	}
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	if err := s.states.Set(ctx, oauthStatePrefix+state, oauthState{Verifier: verifier, CreatedAt: time.Now().UTC()}, s.stateTTL); err != nil {
		return "", appErrors.Internal(err, "failed to store oauth state")
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce, oauth2.S256ChallengeOption(verifier)), nil
}

// Callback completes the authorization code flow and returns an API token.
func (s *GoogleOAuthService) Callback(ctx context.Context, code, state string) (*models.LoginResponse, error) {
	if !s.Configured() {
		return nil, appErrors.Clone(appErrors.ErrNotConfigured, "google login is not configured")
	}
	if code == "" || state == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "code and state are required")
	}

	var stored oauthState
	if err := s.states.Take(ctx, oauthStatePrefix+state, &stored); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired oauth state")
		}
		return nil, appErrors.Internal(err, "failed to read oauth state")
	}

	token, err := s.oauth.Exchange(ctx, code, oauth2.VerifierOption(stored.Verifier))
	if err != nil {
		s.logger.Warn("google code exchange failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrBadGateway.Code, appErrors.ErrBadGateway.Status, "google token exchange failed")
	}

	profile, err := s.profiles.Profile(ctx, token)
	if err != nil {
		s.logger.Warn("google userinfo failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrBadGateway.Code, appErrors.ErrBadGateway.Status, "failed to fetch google profile")
	}

	tokens := models.GoogleTokens{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken, Expiry: token.Expiry}
	user, err := s.upsert(ctx, *profile, &tokens)
	if err != nil {
		return nil, err
	}
	return s.issuer.IssueToken(ctx, user)
}

// LoginWithIDToken signs a user in with an ID token minted for this client.
// No calendar grant is stored on this path.
func (s *GoogleOAuthService) LoginWithIDToken(ctx context.Context, idToken string) (*models.LoginResponse, error) {
	if s.oauth == nil || s.oauth.ClientID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotConfigured, "google login is not configured")
	}
	if idToken == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "id_token is required")
	}
	profile, err := s.verifier.Verify(idToken, s.oauth.ClientID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid google id token")
	}
	user, err := s.upsert(ctx, *profile, nil)
	if err != nil {
		return nil, err
	}
	return s.issuer.IssueToken(ctx, user)
}

// upsert resolves the user by Google id, then by email, creating a teacher
// account when neither matches.
func (s *GoogleOAuthService) upsert(ctx context.Context, profile models.GoogleProfile, tokens *models.GoogleTokens) (*models.User, error) {
	user, err := s.users.FindByGoogleID(ctx, profile.GoogleID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to look up google user")
	}
	if user == nil && profile.Email != "" {
		user, err = s.users.FindByEmail(ctx, profile.Email)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to look up user by email")
		}
	}

	if user == nil {
		user = &models.User{Name: profile.Name, Role: models.RoleTeacher, Active: true}
		user.GoogleID = strPtr(profile.GoogleID)
		user.Email = strPtr(profile.Email)
		user.Picture = strPtr(profile.Picture)
		if tokens != nil {
			user.GoogleAccessToken = strPtr(tokens.AccessToken)
			user.GoogleRefreshToken = strPtr(tokens.RefreshToken)
			expiry := tokens.Expiry
			user.GoogleTokenExpiresAt = &expiry
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, appErrors.Internal(err, "failed to create google user")
		}
		s.logger.Info("google user created", zap.String("user_id", user.ID))
		return user, nil
	}

	if !user.Active {
		return nil, appErrors.ErrInactiveAccount
	}
	if tokens != nil {
		if err := s.users.LinkGoogle(ctx, user.ID, profile, *tokens); err != nil {
			return nil, appErrors.Internal(err, "failed to link google account")
		}
	}
	return user, nil
}

// TokenSource returns a token source for the user's stored grant. Refreshed
// tokens are written back to the user row.
func (s *GoogleOAuthService) TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to fetch user")
	}
	if !user.HasGoogleLink() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "google account is not linked")
	}
	stored := &oauth2.Token{AccessToken: *user.GoogleAccessToken, TokenType: "Bearer"}
	if user.GoogleRefreshToken != nil {
		stored.RefreshToken = *user.GoogleRefreshToken
	}
	if user.GoogleTokenExpiresAt != nil {
		stored.Expiry = *user.GoogleTokenExpiresAt
	}
	return &persistingTokenSource{
		base:   oauth2.ReuseTokenSource(stored, s.oauth.TokenSource(ctx, stored)),
		last:   stored.AccessToken,
		userID: user.ID,
		users:  s.users,
		ctx:    ctx,
		logger: s.logger,
	}, nil
}

// Status reports whether the user has linked Google.
func (s *GoogleOAuthService) Status(ctx context.Context, userID string) (*models.GoogleCalendarStatus, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to fetch user")
	}
	return &models.GoogleCalendarStatus{Linked: user.HasGoogleLink(), Email: user.EmailValue(), ExpiresAt: user.GoogleTokenExpiresAt}, nil
}

type persistingTokenSource struct {
	base   oauth2.TokenSource
	last   string
	userID string
	users  googleUserRepository
	ctx    context.Context
	logger *zap.Logger
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		if err := p.users.UpdateGoogleTokens(p.ctx, p.userID, models.GoogleTokens{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken, Expiry: tok.Expiry}); err != nil {
			p.logger.Warn("failed to persist refreshed google token", zap.String("user_id", p.userID), zap.Error(err))
		}
	}
	return tok, nil
}

type userinfoFetcher struct {
	oauth *oauth2.Config
}

func (f *userinfoFetcher) Profile(ctx context.Context, token *oauth2.Token) (*models.GoogleProfile, error) {
	svc, err := googleoauth.NewService(ctx, option.WithTokenSource(f.oauth.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get userinfo: %w", err)
	}
	return &models.GoogleProfile{GoogleID: info.Id, Email: info.Email, Name: info.Name, Picture: info.Picture}, nil
}

type googleIDTokenVerifier struct{}

func (googleIDTokenVerifier) Verify(idToken, audience string) (*models.GoogleProfile, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{audience}); err != nil {
		return nil, err
	}
	claims, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, fmt.Errorf("decode id token: %w", err)
	}
	return &models.GoogleProfile{GoogleID: claims.Sub, Email: claims.Email, Name: claims.Name}, nil
}

func strPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
