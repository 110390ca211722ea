package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/bravo68web/shipyard/internal/application/service"
	"github.com/bravo68web/shipyard/internal/domain/models"
)

// UpdateProfileRequest represents a profile update; omitted fields are unchanged
type UpdateProfileRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=2,max=50"`
	Avatar *string `json:"avatar" binding:"omitempty,url"`
}

// UpdateProfileResponse is returned after a profile update
type UpdateProfileResponse struct {
	Message string   `json:"message"`
	User    UserInfo `json:"user"`
}

// DashboardStats counts the user's projects per status
type DashboardStats struct {
	Total    int64 `json:"total"`
	Deployed int64 `json:"deployed"`
	Building int64 `json:"building"`
	Failed   int64 `json:"failed"`
	Pending  int64 `json:"pending"`
}

// ProjectRef identifies the project a deployment belongs to
type ProjectRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// RecentDeployment is a deployment listed on the dashboard
type RecentDeployment struct {
	DeploymentResponse
	Project *ProjectRef `json:"project,omitempty"`
}

// DashboardResponse is the signed-in user's overview
type DashboardResponse struct {
	User              UserInfo           `json:"user"`
	Stats             DashboardStats     `json:"stats"`
	RecentProjects    []ProjectResponse  `json:"recentProjects"`
	RecentDeployments []RecentDeployment `json:"recentDeployments"`
}

// ProfileUpdateFromModel converts an updated user, stamping its update time
func ProfileUpdateFromModel(user *models.User) UpdateProfileResponse {
	info := UserFromModel(user)
	updated := user.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	info.UpdatedAt = &updated
	return UpdateProfileResponse{Message: "Profile updated successfully", User: info}
}

// DashboardFromService converts the dashboard aggregate
func DashboardFromService(d *service.Dashboard) DashboardResponse {
	projects := make([]ProjectResponse, 0, len(d.RecentProjects))
	for _, p := range d.RecentProjects {
		projects = append(projects, ProjectFromModel(p))
	}

	deployments := make([]RecentDeployment, 0, len(d.RecentDeployments))
	for _, dep := range d.RecentDeployments {
		entry := RecentDeployment{DeploymentResponse: DeploymentFromModel(dep)}
		if dep.Project != nil {
			entry.Project = &ProjectRef{ID: dep.Project.ID, Name: dep.Project.Name}
		}
		deployments = append(deployments, entry)
	}

	return DashboardResponse{
		User: UserFromModel(d.User),
		Stats: DashboardStats{
			Total:    d.Stats.Total,
			Deployed: d.Stats.Deployed,
			Building: d.Stats.Building,
			Failed:   d.Stats.Failed,
			Pending:  d.Stats.Pending,
		},
		RecentProjects:    projects,
		RecentDeployments: deployments,
	}
}
