package service

import (
	"context"

	"github.com/bravo68web/shipyard/internal/domain/models"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Register creates a password user and returns it with a session token
	Register(ctx context.Context, name, email, password string) (*models.User, string, error)

	// Login verifies email and password and returns the user with a session token.
	// Unknown email and wrong password produce the same error.
	Login(ctx context.Context, email, password string) (*models.User, string, error)

	// AuthenticateSession validates a session token and loads its user
	AuthenticateSession(ctx context.Context, token string) (*models.User, error)

	// IssueToken signs a session token for the user
	IssueToken(user *models.User) (string, error)

	// HashPassword generates a bcrypt hash from a plain text password
	HashPassword(password string) (string, error)

	// VerifyPassword returns nil if password matches hash
	VerifyPassword(hash, password string) error
}
