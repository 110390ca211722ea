package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/bravo68web/shipyard/internal/domain/repository"
	apperrors "github.com/bravo68web/shipyard/pkg/errors"
	"github.com/bravo68web/shipyard/pkg/logger"
)

const (
	DashboardProjectLimit    = 5
	DashboardDeploymentLimit = 10
)

// UserService handles profile and dashboard reads and profile updates
type UserService struct {
	userRepo       repository.UserRepository
	projectRepo    repository.ProjectRepository
	deploymentRepo repository.DeploymentRepository
	log            *logger.Logger
}

// NewUserService creates a new UserService instance
func NewUserService(
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	deploymentRepo repository.DeploymentRepository,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		projectRepo:    projectRepo,
		deploymentRepo: deploymentRepo,
		log:            logger.Get().WithFields(logger.Component("user-service")),
	}
}

// UpdateProfileRequest represents a request to update a user's own profile
type UpdateProfileRequest struct {
	Name   *string
	Avatar *string
}

// Dashboard is the signed-in user's overview
type Dashboard struct {
	User              *models.User
	Stats             models.ProjectStatusCounts
	RecentProjects    []*models.Project
	RecentDeployments []*models.Deployment
}

// GetProfile loads the user with every owned project
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	projects, err := s.projectRepo.ListAllByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Projects = make([]models.Project, 0, len(projects))
	for _, p := range projects {
		user.Projects = append(user.Projects, *p)
	}
	return user, nil
}

// GetDashboard aggregates project counts with the newest projects and deployments
func (s *UserService) GetDashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts, err := s.projectRepo.CountByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	projects, err := s.projectRepo.ListRecentByOwner(ctx, userID, DashboardProjectLimit)
	if err != nil {
		return nil, err
	}

	deployments, err := s.deploymentRepo.ListRecentByOwner(ctx, userID, DashboardDeploymentLimit)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		User:              user,
		Stats:             *counts,
		RecentProjects:    projects,
		RecentDeployments: deployments,
	}, nil
}

// UpdateProfile changes the name and/or avatar of the user
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := ValidateName(name); err != nil {
			return nil, err
		}
		user.Name = name
	}

	if req.Avatar != nil {
		avatar := strings.TrimSpace(*req.Avatar)
		if err := validateAvatar(avatar); err != nil {
			return nil, err
		}
		user.Avatar = &avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.log.Error("Failed to update profile",
			logger.UserID(userID.String()),
			logger.Error(err),
		)
		return nil, err
	}

	s.log.Info("Profile updated", logger.UserID(userID.String()))
	return user, nil
}

func validateAvatar(avatar string) error {
	u, err := url.ParseRequestURI(avatar)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.ValidationError("avatar", "avatar must be a valid uri")
	}
	return nil
}
