package repository

import (
	"context"

	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// FindByEmail finds a user by email address
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByGitHubID finds a user by their GitHub account id
	FindByGitHubID(ctx context.Context, githubID string) (*models.User, error)

	// Update saves all fields of an existing user
	Update(ctx context.Context, user *models.User) error

	// ExistsByEmail checks if a user with the given email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
