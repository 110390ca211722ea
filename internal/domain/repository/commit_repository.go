package repository

import (
	"context"

	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/google/uuid"
)

// CommitRepository defines the interface for cached commit data access
type CommitRepository interface {
	// ReplaceForProject deletes every stored commit of the project and inserts
	// the given set in the same transaction
	ReplaceForProject(ctx context.Context, projectID uuid.UUID, commits []*models.Commit) error

	// ListByProject returns up to limit commits ordered by commit date, newest first
	ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*models.Commit, error)
}
