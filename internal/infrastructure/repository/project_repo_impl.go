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

// listCommitsPerProject is how many commits each list entry carries
const listCommitsPerProject = 5

// ProjectRepoImpl implements the ProjectRepository interface using GORM
type ProjectRepoImpl struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepoImpl instance
func NewProjectRepository(db *gorm.DB) repository.ProjectRepository {
	return &ProjectRepoImpl{db: db}
}

// Create creates a new project
func (r *ProjectRepoImpl) Create(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Omit("User", "Deployments", "Commits").Create(project).Error; err != nil {
		return apperror.DatabaseError("create project", err)
	}
	return nil
}

// FindByIDAndOwner finds a project owned by ownerID
func (r *ProjectRepoImpl) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&project).Error
	if err != nil {
		return nil, notFoundOr(err, "find project")
	}
	return &project, nil
}

// FindDetailedByIDAndOwner loads the project with owner, deployments and newest commits
func (r *ProjectRepoImpl) FindDetailedByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID, commitLimit int) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Deployments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Commits", func(db *gorm.DB) *gorm.DB {
			return db.Order("date DESC").Limit(commitLimit)
		}).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&project).Error
	if err != nil {
		return nil, notFoundOr(err, "find project details")
	}
	return &project, nil
}

// ListByOwner returns one page of the owner's projects, newest update first
func (r *ProjectRepoImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.ProjectListing, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Project{}).Where("user_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, apperror.DatabaseError("count projects", err)
	}

	var projects []models.Project
	err := db.Where("user_id = ?", ownerID).
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&projects).Error
	if err != nil {
		return nil, 0, apperror.DatabaseError("list projects", err)
	}
	if len(projects) == 0 {
		return []*models.ProjectListing{}, total, nil
	}

	ids := projectIDs(projects)

	latest, err := latestDeployments(db, ids)
	if err != nil {
		return nil, 0, err
	}
	commits, err := recentCommits(db, ids, listCommitsPerProject)
	if err != nil {
		return nil, 0, err
	}
	deploymentCounts, err := countPerProject(db, &models.Deployment{}, ids)
	if err != nil {
		return nil, 0, err
	}
	commitCounts, err := countPerProject(db, &models.Commit{}, ids)
	if err != nil {
		return nil, 0, err
	}

	listings := make([]*models.ProjectListing, 0, len(projects))
	for _, p := range projects {
		if d, ok := latest[p.ID]; ok {
			p.Deployments = []models.Deployment{d}
		}
		p.Commits = commits[p.ID]
		listings = append(listings, &models.ProjectListing{
			Project:         p,
			DeploymentCount: deploymentCounts[p.ID],
			CommitCount:     commitCounts[p.ID],
		})
	}
	return listings, total, nil
}

// ListRecentByOwner returns the most recently updated projects with their latest deployment
func (r *ProjectRepoImpl) ListRecentByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.Project, error) {
	db := r.db.WithContext(ctx)

	var projects []models.Project
	if err := db.Where("user_id = ?", ownerID).Order("updated_at DESC").Limit(limit).Find(&projects).Error; err != nil {
		return nil, apperror.DatabaseError("list recent projects", err)
	}
	if len(projects) == 0 {
		return []*models.Project{}, nil
	}

	latest, err := latestDeployments(db, projectIDs(projects))
	if err != nil {
		return nil, err
	}

	out := make([]*models.Project, 0, len(projects))
	for i := range projects {
		if d, ok := latest[projects[i].ID]; ok {
			projects[i].Deployments = []models.Deployment{d}
		}
		out = append(out, &projects[i])
	}
	return out, nil
}

// ListAllByOwner returns every project of the owner, newest first
func (r *ProjectRepoImpl) ListAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, apperror.DatabaseError("list projects by owner", err)
	}
	return projects, nil
}

// CountByStatus tallies the owner's projects per status
func (r *ProjectRepoImpl) CountByStatus(ctx context.Context, ownerID uuid.UUID) (*models.ProjectStatusCounts, error) {
	var rows []struct {
		Status models.ProjectStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", ownerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperror.DatabaseError("count projects by status", err)
	}

	counts := &models.ProjectStatusCounts{}
	for _, row := range rows {
		counts.Total += row.Count
		switch row.Status {
		case models.ProjectStatusPending:
			counts.Pending = row.Count
		case models.ProjectStatusBuilding:
			counts.Building = row.Count
		case models.ProjectStatusDeployed:
			counts.Deployed = row.Count
		case models.ProjectStatusFailed:
			counts.Failed = row.Count
		}
	}
	return counts, nil
}

// Update applies a partial update scoped to the owner
func (r *ProjectRepoImpl) Update(ctx context.Context, id, ownerID uuid.UUID, update models.ProjectUpdate) (*models.Project, error) {
	if !update.IsEmpty() {
		fields := map[string]any{}
		if update.Name != nil {
			fields["name"] = *update.Name
		}
		if update.Description != nil {
			fields["description"] = *update.Description
		}

		result := r.db.WithContext(ctx).
			Model(&models.Project{}).
			Where("id = ? AND user_id = ?", id, ownerID).
			Updates(fields)
		if result.Error != nil {
			return nil, apperror.DatabaseError("update project", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, apperror.NotFound("project", apperror.ErrNotFound)
		}
	}

	return r.FindByIDAndOwner(ctx, id, ownerID)
}

// DeleteByIDAndOwner deletes an owned project
func (r *ProjectRepoImpl) DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.Project{})
	if result.Error != nil {
		return apperror.DatabaseError("delete project", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("project", apperror.ErrNotFound)
	}
	return nil
}

func projectIDs(projects []models.Project) []uuid.UUID {
	ids := make([]uuid.UUID, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	return ids
}

// latestDeployments returns the newest deployment of each project
func latestDeployments(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Deployment, error) {
	var deployments []models.Deployment
	err := db.Raw(`
		SELECT DISTINCT ON (project_id) *
		FROM deployments
		WHERE project_id IN ?
		ORDER BY project_id, created_at DESC`, ids).
		Scan(&deployments).Error
	if err != nil {
		return nil, apperror.DatabaseError("load latest deployments", err)
	}

	out := make(map[uuid.UUID]models.Deployment, len(deployments))
	for _, d := range deployments {
		out[d.ProjectID] = d
	}
	return out, nil
}

// recentCommits returns up to perProject newest commits of each project
func recentCommits(db *gorm.DB, ids []uuid.UUID, perProject int) (map[uuid.UUID][]models.Commit, error) {
	var commits []models.Commit
	err := db.Raw(`
		SELECT id, sha, message, author, date, url, project_id, created_at
		FROM (
			SELECT c.*, ROW_NUMBER() OVER (PARTITION BY project_id ORDER BY date DESC) AS rn
			FROM commits c
			WHERE project_id IN ?
		) ranked
		WHERE rn <= ?
		ORDER BY project_id, date DESC`, ids, perProject).
		Scan(&commits).Error
	if err != nil {
		return nil, apperror.DatabaseError("load recent commits", err)
	}

	out := make(map[uuid.UUID][]models.Commit)
	for _, c := range commits {
		out[c.ProjectID] = append(out[c.ProjectID], c)
	}
	return out, nil
}

func countPerProject(db *gorm.DB, model any, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []struct {
		ProjectID uuid.UUID
		Count     int64
	}
	err := db.Model(model).
		Select("project_id, COUNT(*) AS count").
		Where("project_id IN ?", ids).
		Group("project_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperror.DatabaseError("count per project", err)
	}

	out := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		out[row.ProjectID] = row.Count
	}
	return out, nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("project", apperror.ErrNotFound)
	}
	return apperror.DatabaseError(op, err)
}
