package repository

import (
	"context"

	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/google/uuid"
)

// ProjectRepository defines the interface for project data access.
// Every method that takes an ownerID scopes its query to (id, user_id) so a
// project belonging to someone else is indistinguishable from a missing one.
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *models.Project) error

	// FindByIDAndOwner finds a project owned by ownerID
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Project, error)

	// FindDetailedByIDAndOwner loads a project with its owner, all deployments
	// (newest first) and up to commitLimit newest commits
	FindDetailedByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID, commitLimit int) (*models.Project, error)

	// ListByOwner returns one page of projects ordered by most recent update,
	// along with the total number of projects the owner has
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.ProjectListing, int64, error)

	// ListRecentByOwner returns the most recently updated projects with their latest deployment
	ListRecentByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.Project, error)

	// ListAllByOwner returns every project of the owner without associations, newest first
	ListAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Project, error)

	// CountByStatus tallies the owner's projects per status
	CountByStatus(ctx context.Context, ownerID uuid.UUID) (*models.ProjectStatusCounts, error)

	// Update applies a partial update and returns the updated project
	Update(ctx context.Context, id, ownerID uuid.UUID, update models.ProjectUpdate) (*models.Project, error)

	// DeleteByIDAndOwner deletes a project; deployments and commits cascade
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) error
}
