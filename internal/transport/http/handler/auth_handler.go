package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/shipyard/internal/application/dto"
	domainservice "github.com/bravo68web/shipyard/internal/domain/service"
	apperrors "github.com/bravo68web/shipyard/pkg/errors"
	"github.com/bravo68web/shipyard/pkg/logger"
)

const (
	// Cookie holding the OAuth state between redirect and callback
	oauthStateCookie    = "github_oauth_state"
	oauthStateCookieExp = 10 * time.Minute
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService  domainservice.AuthService
	githubLogin  GitHubLogin
	accounts     AccountService
	frontendURL  string
	secureCookie bool
	log          *logger.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(
	authService domainservice.AuthService,
	githubLogin GitHubLogin,
	accounts AccountService,
	frontendURL string,
	secureCookie bool,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		githubLogin:  githubLogin,
		accounts:     accounts,
		frontendURL:  strings.TrimRight(frontendURL, "/"),
		secureCookie: secureCookie,
		log:          logger.Get().WithFields(logger.Component("auth-handler")),
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("User registered", logger.UserID(user.ID.String()))

	c.JSON(http.StatusCreated, dto.AuthResponse{
		Message: "User registered successfully",
		User:    dto.UserFromModel(user),
		Token:   token,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		Message: "Login successful",
		User:    dto.UserFromModel(user),
		Token:   token,
	})
}

// GitHubRedirect handles GET /api/auth/github
// Stores a fresh state in a cookie and redirects to GitHub's authorize page
func (h *AuthHandler) GitHubRedirect(c *gin.Context) {
	if h.githubLogin == nil || !h.githubLogin.IsEnabled() {
		respondError(c, h.log, apperrors.NewAppError(apperrors.CodeServiceUnavailable, "GitHub login is not configured", nil))
		return
	}

	authURL, state, err := h.githubLogin.GenerateAuthURL()
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, int(oauthStateCookieExp.Seconds()), "/", "", h.secureCookie, true)

	c.Redirect(http.StatusFound, authURL)
}

// GitHubCallback handles GET /api/auth/github/callback
// The outcome always goes back to the frontend as a redirect
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	if h.githubLogin == nil || !h.githubLogin.IsEnabled() {
		h.redirectLoginError(c, "github_not_configured")
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		h.log.Warn("GitHub returned an authorization error",
			logger.String("error", errParam),
			logger.String("description", c.Query("error_description")),
		)
		h.redirectLoginError(c, errParam)
		return
	}

	expectedState, err := c.Cookie(oauthStateCookie)
	if err != nil {
		h.redirectLoginError(c, "invalid_state")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.secureCookie, true)

	user, token, err := h.githubLogin.HandleCallback(c.Request.Context(), c.Query("code"), c.Query("state"), expectedState)
	if err != nil {
		h.log.Warn("GitHub login failed", logger.Error(err))
		h.redirectLoginError(c, callbackErrorCode(err))
		return
	}

	h.log.Info("GitHub login successful", logger.UserID(user.ID.String()))

	c.Redirect(http.StatusFound, h.frontendURL+"/auth/callback?token="+url.QueryEscape(token))
}

func (h *AuthHandler) redirectLoginError(c *gin.Context, code string) {
	c.Redirect(http.StatusFound, h.frontendURL+"/login?error="+url.QueryEscape(code))
}

func callbackErrorCode(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case apperrors.CodeUnauthorized:
			return "invalid_state"
		case apperrors.CodeBadRequest:
			return "missing_code"
		}
	}
	return "authentication_failed"
}

// Profile handles GET /api/auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.accounts.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProfileFromModel(profile))
}
