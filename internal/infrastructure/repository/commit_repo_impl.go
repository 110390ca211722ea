package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/bravo68web/shipyard/internal/domain/repository"
	apperror "github.com/bravo68web/shipyard/pkg/errors"
	"github.com/google/uuid"
)

const commitInsertBatch = 100

// CommitRepoImpl implements the CommitRepository interface using GORM
type CommitRepoImpl struct {
	db *gorm.DB
}

// NewCommitRepository creates a new CommitRepoImpl instance
func NewCommitRepository(db *gorm.DB) repository.CommitRepository {
	return &CommitRepoImpl{db: db}
}

// ReplaceForProject swaps the stored commit set for the given one.
// Duplicate SHAs in the input keep their first occurrence.
func (r *CommitRepoImpl) ReplaceForProject(ctx context.Context, projectID uuid.UUID, commits []*models.Commit) error {
	seen := make(map[string]struct{}, len(commits))
	rows := make([]*models.Commit, 0, len(commits))
	for _, c := range commits {
		if _, dup := seen[c.SHA]; dup {
			continue
		}
		seen[c.SHA] = struct{}{}
		c.ProjectID = projectID
		rows = append(rows, c)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Commit{}).Error; err != nil {
			return apperror.DatabaseError("delete commits", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, commitInsertBatch).Error; err != nil {
			return apperror.DatabaseError("insert commits", err)
		}
		return nil
	})
}

// ListByProject returns the newest commits of a project
func (r *CommitRepoImpl) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*models.Commit, error) {
	var commits []*models.Commit
	query := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&commits).Error; err != nil {
		return nil, apperror.DatabaseError("list commits", err)
	}
	return commits, nil
}
