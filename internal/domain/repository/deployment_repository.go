package repository

import (
	"context"
	"time"

	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/google/uuid"
)

// DeploymentRepository defines the interface for deployment data access
type DeploymentRepository interface {
	// Start atomically moves an owned project to BUILDING and creates its BUILDING deployment
	Start(ctx context.Context, projectID, ownerID uuid.UUID) (*models.Deployment, error)

	// Complete writes the terminal result to the deployment and the matching
	// status to its project in one transaction. The project is left alone when
	// a newer deployment exists. It fails if the deployment has already reached
	// a terminal state.
	Complete(ctx context.Context, deploymentID uuid.UUID, result models.DeploymentResult) error

	// FindByID finds a deployment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.Deployment, error)

	// FindByIDAndProject finds a deployment that belongs to the given project
	FindByIDAndProject(ctx context.Context, id, projectID uuid.UUID) (*models.Deployment, error)

	// ListRecentByOwner returns the owner's newest deployments across all projects
	ListRecentByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.Deployment, error)

	// ListStale returns non-terminal deployments created before the cutoff, oldest first
	ListStale(ctx context.Context, createdBefore time.Time, limit int) ([]*models.Deployment, error)
}
