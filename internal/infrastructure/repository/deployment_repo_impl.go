package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/bravo68web/shipyard/internal/domain/repository"
	apperror "github.com/bravo68web/shipyard/pkg/errors"
	"github.com/google/uuid"
)

// ErrDeploymentCompleted is returned when a terminal deployment is completed again
var ErrDeploymentCompleted = errors.New("deployment already completed")

// DeploymentRepoImpl implements the DeploymentRepository interface using GORM
type DeploymentRepoImpl struct {
	db *gorm.DB
}

// NewDeploymentRepository creates a new DeploymentRepoImpl instance
func NewDeploymentRepository(db *gorm.DB) repository.DeploymentRepository {
	return &DeploymentRepoImpl{db: db}
}

// Start moves the owned project to BUILDING and creates a BUILDING deployment.
// The ownership check is the UPDATE's WHERE clause, so check and mutation are one statement.
func (r *DeploymentRepoImpl) Start(ctx context.Context, projectID, ownerID uuid.UUID) (*models.Deployment, error) {
	deployment := &models.Deployment{
		Status:    models.DeploymentStatusBuilding,
		ProjectID: projectID,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Project{}).
			Where("id = ? AND user_id = ?", projectID, ownerID).
			Update("status", models.ProjectStatusBuilding)
		if result.Error != nil {
			return apperror.DatabaseError("mark project building", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("project", apperror.ErrNotFound)
		}

		if err := tx.Omit("Project").Create(deployment).Error; err != nil {
			return apperror.DatabaseError("create deployment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deployment, nil
}

// Complete writes the terminal result to the deployment and, when it is the project's
// newest deployment, to the project in the same transaction
func (r *DeploymentRepoImpl) Complete(ctx context.Context, deploymentID uuid.UUID, result models.DeploymentResult) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deployment models.Deployment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", deploymentID).
			First(&deployment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("deployment", apperror.ErrNotFound)
			}
			return apperror.DatabaseError("lock deployment", err)
		}

		if deployment.Status.IsTerminal() {
			return apperror.Conflict("deployment already completed", ErrDeploymentCompleted)
		}

		err = tx.Model(&models.Deployment{}).
			Where("id = ?", deploymentID).
			Updates(map[string]any{
				"status":        result.Status,
				"url":           result.URL,
				"logs":          result.Logs,
				"error":         result.Error,
				"ai_suggestion": result.AISuggestion,
			}).Error
		if err != nil {
			return apperror.DatabaseError("complete deployment", err)
		}

		// an older run finishing late must not overwrite the status set by a newer one
		err = tx.Model(&models.Project{}).
			Where("id = ?", deployment.ProjectID).
			Where("NOT EXISTS (SELECT 1 FROM deployments WHERE project_id = ? AND created_at > ?)",
				deployment.ProjectID, deployment.CreatedAt).
			Update("status", result.ProjectStatus()).Error
		if err != nil {
			return apperror.DatabaseError("update project status", err)
		}
		return nil
	})
}

// FindByID retrieves a deployment by ID
func (r *DeploymentRepoImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Deployment, error) {
	var deployment models.Deployment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&deployment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("deployment", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError("find deployment", err)
	}
	return &deployment, nil
}

// FindByIDAndProject retrieves a deployment that belongs to projectID
func (r *DeploymentRepoImpl) FindByIDAndProject(ctx context.Context, id, projectID uuid.UUID) (*models.Deployment, error) {
	var deployment models.Deployment
	err := r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", id, projectID).
		First(&deployment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("deployment", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError("find deployment", err)
	}
	return &deployment, nil
}

// ListRecentByOwner returns the newest deployments across the owner's projects
func (r *DeploymentRepoImpl) ListRecentByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.Deployment, error) {
	var deployments []*models.Deployment
	err := r.db.WithContext(ctx).
		Joins("JOIN projects ON projects.id = deployments.project_id").
		Where("projects.user_id = ?", ownerID).
		Preload("Project", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		Order("deployments.created_at DESC").
		Limit(limit).
		Find(&deployments).Error
	if err != nil {
		return nil, apperror.DatabaseError("list recent deployments", err)
	}
	return deployments, nil
}

// ListStale returns deployments still PENDING or BUILDING that were created before createdBefore
func (r *DeploymentRepoImpl) ListStale(ctx context.Context, createdBefore time.Time, limit int) ([]*models.Deployment, error) {
	var deployments []*models.Deployment
	err := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?",
			[]models.DeploymentStatus{models.DeploymentStatusPending, models.DeploymentStatusBuilding},
			createdBefore,
		).
		Order("created_at ASC").
		Limit(limit).
		Find(&deployments).Error
	if err != nil {
		return nil, apperror.DatabaseError("list stale deployments", err)
	}
	return deployments, nil
}
