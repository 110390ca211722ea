package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/bravo68web/shipyard/internal/application/service"
	"github.com/bravo68web/shipyard/internal/domain/models"
)

// ProjectManager is the project surface the HTTP layer drives
type ProjectManager interface {
	CreateProject(ctx context.Context, ownerID uuid.UUID, in service.CreateProjectInput) (*models.Project, error)
	ListProjects(ctx context.Context, ownerID uuid.UUID, page, limit int) (*service.ProjectPage, error)
	GetProject(ctx context.Context, ownerID, projectID uuid.UUID) (*service.ProjectDetail, error)
	UpdateProject(ctx context.Context, ownerID, projectID uuid.UUID, update models.ProjectUpdate) (*models.Project, error)
	DeleteProject(ctx context.Context, ownerID, projectID uuid.UUID) error
	Deploy(ctx context.Context, ownerID, projectID uuid.UUID) (*models.Deployment, error)
	RefreshCommits(ctx context.Context, owner *models.User, projectID uuid.UUID) ([]*models.Commit, error)
	Analyze(ctx context.Context, ownerID, projectID uuid.UUID) (*service.AnalysisResult, error)
	GetDeploymentLogs(ctx context.Context, ownerID, projectID, deploymentID uuid.UUID) (*service.DeploymentLog, error)
}

// AccountService is the profile and dashboard surface
type AccountService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetDashboard(ctx context.Context, userID uuid.UUID) (*service.Dashboard, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req service.UpdateProfileRequest) (*models.User, error)
}

// GitHubLogin is the OAuth login flow
type GitHubLogin interface {
	IsEnabled() bool
	GenerateAuthURL() (string, string, error)
	HandleCallback(ctx context.Context, code, state, expectedState string) (*models.User, string, error)
}

var (
	_ ProjectManager = (*service.ProjectService)(nil)
	_ AccountService = (*service.UserService)(nil)
	_ GitHubLogin    = (*service.GitHubOAuthService)(nil)
)
