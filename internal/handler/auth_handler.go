package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-assistant-api/internal/models"
	appErrors "github.com/noah-isme/school-assistant-api/pkg/errors"
	"github.com/noah-isme/school-assistant-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Me(ctx context.Context, userID string) (*models.UserInfo, error)
}

type googleLogin interface {
	AuthURL(ctx context.Context) (string, error)
	Callback(ctx context.Context, code, state string) (*models.LoginResponse, error)
	LoginWithIDToken(ctx context.Context, idToken string) (*models.LoginResponse, error)
}

// AuthHandler wires HTTP endpoints to the password and Google login flows.
type AuthHandler struct {
	service     authService
	google      googleLogin
	frontendURL string
}

// NewAuthHandler creates a new handler. When frontendURL is set the Google
// callback redirects there instead of answering with JSON.
func NewAuthHandler(svc authService, google googleLogin, frontendURL string) *AuthHandler {
	return &AuthHandler{service: svc, google: google, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate a teacher by login id and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Me godoc
// @Summary Get current user
// @Description Returns the authenticated user's info
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	info, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}

// GoogleAuthURL godoc
// @Summary Start Google login
// @Description Returns the Google consent URL with a one-time state
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /auth/google [get]
func (h *AuthHandler) GoogleAuthURL(c *gin.Context) {
	authURL, err := h.google.AuthURL(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"auth_url": authURL}, nil)
}

// GoogleCallback godoc
// @Summary Complete Google login
// @Description Exchanges the authorization code and issues an access token
// @Tags Authentication
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "OAuth state"
// @Success 200 {object} response.Envelope
// @Success 302
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		h.callbackFailed(c, appErrors.Clone(appErrors.ErrUnauthorized, "google login was cancelled: "+errParam))
		return
	}

	res, err := h.google.Callback(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		h.callbackFailed(c, err)
		return
	}

	if h.frontendURL == "" {
		response.JSON(c, http.StatusOK, res, nil)
		return
	}
	q := url.Values{}
	q.Set("token", res.AccessToken)
	c.Redirect(http.StatusFound, h.frontendURL+"/auth/callback?"+q.Encode())
}

func (h *AuthHandler) callbackFailed(c *gin.Context, err error) {
	if h.frontendURL == "" {
		response.Error(c, err)
		return
	}
	q := url.Values{}
	q.Set("error", appErrors.FromError(err).Code)
	c.Redirect(http.StatusFound, h.frontendURL+"/login?"+q.Encode())
}

// GoogleIDToken godoc
// @Summary Login with a Google ID token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.IDTokenLoginRequest true "ID token"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/google/id-token [post]
func (h *AuthHandler) GoogleIDToken(c *gin.Context) {
	var req models.IDTokenLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	res, err := h.google.LoginWithIDToken(c.Request.Context(), req.IDToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
