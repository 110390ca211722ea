package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/bravo68web/shipyard/internal/domain/repository"
	apperror "github.com/bravo68web/shipyard/pkg/errors"
	"github.com/google/uuid"
)

// UserRepoImpl implements the UserRepository interface using GORM
type UserRepoImpl struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepoImpl instance
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &UserRepoImpl{db: db}
}

// Create creates a new user in the database
func (r *UserRepoImpl) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("user already exists", apperror.ErrUserExists)
		}
		return apperror.DatabaseError("create user", err)
	}
	return nil
}

// FindByID retrieves a user by their ID
func (r *UserRepoImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.findOne(ctx, "find user by id", "id = ?", id)
}

// FindByEmail retrieves a user by their email address
func (r *UserRepoImpl) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "find user by email", "email = ?", email)
}

// FindByGitHubID retrieves a user by their GitHub account id
func (r *UserRepoImpl) FindByGitHubID(ctx context.Context, githubID string) (*models.User, error) {
	return r.findOne(ctx, "find user by github id", "github_id = ?", githubID)
}

func (r *UserRepoImpl) findOne(ctx context.Context, op, query string, arg any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError(op, err)
	}
	return &user, nil
}

// Update updates an existing user's information
func (r *UserRepoImpl) Update(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Omit("Projects").Save(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("email or github account already linked", apperror.ErrUserExists)
		}
		return apperror.DatabaseError("update user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("user", apperror.ErrNotFound)
	}
	return nil
}

// ExistsByEmail checks if a user with the given email exists
func (r *UserRepoImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, apperror.DatabaseError("check user exists by email", err)
	}
	return count > 0, nil
}
