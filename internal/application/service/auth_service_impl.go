package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bravo68web/shipyard/internal/config"
	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/bravo68web/shipyard/internal/domain/repository"
	"github.com/bravo68web/shipyard/internal/domain/service"
	apperrors "github.com/bravo68web/shipyard/pkg/errors"
	"github.com/bravo68web/shipyard/pkg/logger"
)

const (
	msgInvalidLogin = "Invalid email or password"
	msgUserExists   = "User already exists with this email"
	msgInvalidToken = "Invalid or expired token"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SessionClaims represents the claims in the session JWT
type SessionClaims struct {
	jwt.RegisteredClaims
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthServiceImpl implements the AuthService interface
type AuthServiceImpl struct {
	userRepo repository.UserRepository
	config   *config.AuthConfig
	now      func() time.Time
	log      *logger.Logger
}

// NewAuthService creates a new AuthServiceImpl instance
func NewAuthService(userRepo repository.UserRepository, cfg *config.AuthConfig) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo: userRepo,
		config:   cfg,
		now:      time.Now,
		log:      logger.Get().WithFields(logger.Component("auth-service")),
	}
}

// Register creates a password user and signs a session token for it
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if err := ValidateName(name); err != nil {
		return nil, "", err
	}
	if !emailPattern.MatchString(email) {
		return nil, "", apperrors.ValidationError("email", "email must be a valid email")
	}
	if utf8.RuneCountInString(password) < 6 {
		return nil, "", apperrors.ValidationError("password", "password length must be at least 6 characters long")
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", apperrors.ValidationError("email", msgUserExists)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: &hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if apperrors.IsConflict(err) {
			return nil, "", apperrors.ValidationError("email", msgUserExists)
		}
		return nil, "", err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.log.Info("User registered", logger.UserID(user.ID.String()))
	return user, token, nil
}

// Login verifies a password and signs a session token.
// An unknown email, a GitHub-only account and a wrong password fail identically.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, "", apperrors.Unauthorized(msgInvalidLogin, apperrors.ErrInvalidCredentials)
		}
		return nil, "", err
	}

	if !user.HasPassword() {
		return nil, "", apperrors.Unauthorized(msgInvalidLogin, apperrors.ErrInvalidCredentials)
	}
	if err := s.VerifyPassword(*user.Password, password); err != nil {
		return nil, "", apperrors.Unauthorized(msgInvalidLogin, apperrors.ErrInvalidCredentials)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// AuthenticateSession validates a session JWT and loads its user
func (s *AuthServiceImpl) AuthenticateSession(ctx context.Context, sessionToken string) (*models.User, error) {
	claims, err := s.parseToken(sessionToken)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, apperrors.Unauthorized(msgInvalidToken, err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized("User not found", apperrors.ErrInvalidCredentials)
		}
		return nil, err
	}
	return user, nil
}

// IssueToken signs an HS256 session token for user
func (s *AuthServiceImpl) IssueToken(user *models.User) (string, error) {
	now := s.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "shipyard",
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL())),
		},
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", apperrors.InternalError("failed to sign session token", err)
	}
	return signed, nil
}

func (s *AuthServiceImpl) parseToken(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, apperrors.Unauthorized("Access token required", apperrors.ErrUnauthorized)
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Unauthorized(msgInvalidToken, apperrors.ErrTokenExpired)
		}
		return nil, apperrors.Unauthorized(msgInvalidToken, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, apperrors.Unauthorized(msgInvalidToken, apperrors.ErrUnauthorized)
	}
	return claims, nil
}

// HashPassword generates a bcrypt hash at the configured cost
func (s *AuthServiceImpl) HashPassword(password string) (string, error) {
	cost := s.config.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = 12
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", apperrors.InternalError("failed to hash password", err)
	}
	return string(hash), nil
}

// VerifyPassword returns nil if password matches hash
func (s *AuthServiceImpl) VerifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidateName checks the 2..50 character display name rule
func ValidateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < 2 || n > 50 {
		return apperrors.ValidationError("name", "name must be between 2 and 50 characters")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ service.AuthService = (*AuthServiceImpl)(nil)
