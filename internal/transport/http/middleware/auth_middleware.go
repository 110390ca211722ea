package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/bravo68web/shipyard/internal/domain/service"
	apperrors "github.com/bravo68web/shipyard/pkg/errors"
	"github.com/bravo68web/shipyard/pkg/logger"
)

// ContextKey is a type for context keys
type ContextKey string

const (
	// UserContextKey is the key for storing user in context
	UserContextKey ContextKey = "user"
)

// AuthMiddleware authenticates requests carrying a bearer session token
type AuthMiddleware struct {
	authService service.AuthService
	log         *logger.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance
func NewAuthMiddleware(authService service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		log:         logger.Get().WithFields(logger.Component("auth-middleware")),
	}
}

// RequireAuth rejects the request with 401 unless it carries a valid bearer token
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.reject(c, "Access token required")
			return
		}

		user, err := m.authService.AuthenticateSession(c.Request.Context(), token)
		if err != nil {
			if !apperrors.IsUnauthorized(err) {
				m.fail(c, err)
				return
			}
			m.log.Debug("Session rejected",
				logger.Path(c.Request.URL.Path),
				logger.ClientIP(c.ClientIP()),
				logger.Error(err),
			)
			m.reject(c, rejectionMessage(err))
			return
		}

		setUserContext(c, user)
		c.Next()
	}
}

func (m *AuthMiddleware) reject(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   apperrors.CodeUnauthorized.Slug(),
		"message": message,
	})
}

// fail renders a session lookup that broke for reasons other than the token itself
func (m *AuthMiddleware) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	slug := apperrors.CodeInternalServerError.Slug()
	message := "An unexpected error occurred"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus() < http.StatusInternalServerError {
		status, slug, message = appErr.HTTPStatus(), appErr.Code.Slug(), appErr.Message
	}

	m.log.Error("Session lookup failed",
		logger.Method(c.Request.Method),
		logger.Path(c.Request.URL.Path),
		logger.RequestID(GetRequestID(c)),
		logger.Error(err),
	)
	c.AbortWithStatusJSON(status, gin.H{
		"error":   slug,
		"message": message,
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func rejectionMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.CodeUnauthorized {
		return appErr.Message
	}
	return "Invalid or expired token"
}

// setUserContext sets the user in the gin context and the request context
func setUserContext(c *gin.Context, user *models.User) {
	c.Set(string(UserContextKey), user)

	ctx := context.WithValue(c.Request.Context(), UserContextKey, user)
	c.Request = c.Request.WithContext(ctx)
}

// GetUserFromContext retrieves the authenticated user from the context
func GetUserFromContext(c *gin.Context) *models.User {
	if user, exists := c.Get(string(UserContextKey)); exists {
		if u, ok := user.(*models.User); ok {
			return u
		}
	}
	return nil
}

// GetUserFromRequestContext retrieves the user from the request context
func GetUserFromRequestContext(ctx context.Context) *models.User {
	if u, ok := ctx.Value(UserContextKey).(*models.User); ok {
		return u
	}
	return nil
}
