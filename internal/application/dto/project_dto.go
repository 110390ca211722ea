package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/bravo68web/shipyard/internal/application/service"
	"github.com/bravo68web/shipyard/internal/domain/models"
)

// CreateProjectRequest represents a request to register a repository
type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	GitHubURL   string  `json:"githubUrl" binding:"required,url"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// UpdateProjectRequest represents a partial project update
type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// ToModel converts the request to a domain update
func (r UpdateProjectRequest) ToModel() models.ProjectUpdate {
	return models.ProjectUpdate{Name: r.Name, Description: r.Description}
}

// OwnerInfo is the owner summary embedded in a project
type OwnerInfo struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// CommitResponse represents a stored commit
type CommitResponse struct {
	ID        uuid.UUID `json:"id"`
	SHA       string    `json:"sha"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Date      time.Time `json:"date"`
	URL       string    `json:"url"`
	ProjectID uuid.UUID `json:"projectId"`
}

// DeploymentResponse represents a deployment recorded by this service
type DeploymentResponse struct {
	ID           uuid.UUID               `json:"id"`
	Status       models.DeploymentStatus `json:"status" enums:"PENDING,BUILDING,SUCCESS,FAILED"`
	URL          *string                 `json:"url"`
	Logs         *string                 `json:"logs"`
	Error        *string                 `json:"error"`
	AISuggestion *string                 `json:"aiSuggestion"`
	ProjectID    uuid.UUID               `json:"projectId"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// DeploymentView is one entry of a project's deployment history. Kind tells a
// stored deployment from one observed on GitHub; observed entries have a
// "github-" prefixed id and IsFromGitHub set.
type DeploymentView struct {
	Kind         string     `json:"kind" enums:"stored,github"`
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	URL          *string    `json:"url"`
	Logs         *string    `json:"logs"`
	Error        *string    `json:"error"`
	AISuggestion *string    `json:"aiSuggestion"`
	Environment  string     `json:"environment,omitempty"`
	Description  string     `json:"description,omitempty"`
	IsFromGitHub bool       `json:"isFromGitHub"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// ProjectResponse represents a project with whichever associations were loaded
type ProjectResponse struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	GitHubURL   string               `json:"githubUrl"`
	Description *string              `json:"description"`
	Status      models.ProjectStatus `json:"status" enums:"PENDING,BUILDING,DEPLOYED,FAILED"`
	UserID      uuid.UUID            `json:"userId"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	User        *OwnerInfo           `json:"user,omitempty"`
	Deployments []DeploymentResponse `json:"deployments"`
	Commits     []CommitResponse     `json:"commits"`
}

// ProjectCounts holds association totals of a listed project
type ProjectCounts struct {
	Deployments int64 `json:"deployments"`
	Commits     int64 `json:"commits"`
}

// ProjectListItem is a project in the paginated list
type ProjectListItem struct {
	ProjectResponse
	Count ProjectCounts `json:"_count"`
}

// ProjectListResponse is one page of projects
type ProjectListResponse struct {
	Projects   []ProjectListItem `json:"projects"`
	Pagination Pagination        `json:"pagination"`
}

// ProjectDetailResponse is a project with its merged deployment history
type ProjectDetailResponse struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	GitHubURL   string               `json:"githubUrl"`
	Description *string              `json:"description"`
	Status      models.ProjectStatus `json:"status" enums:"PENDING,BUILDING,DEPLOYED,FAILED"`
	UserID      uuid.UUID            `json:"userId"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	User        *OwnerInfo           `json:"user,omitempty"`
	Deployments []DeploymentView     `json:"deployments"`
	Commits     []CommitResponse     `json:"commits"`
}

// ProjectEnvelope wraps a single project
type ProjectEnvelope struct {
	Project ProjectDetailResponse `json:"project"`
}

// ProjectMessageResponse is returned by create and update
type ProjectMessageResponse struct {
	Message string          `json:"message"`
	Project ProjectResponse `json:"project"`
}

// DeploymentStarted is the immediate view of a new deployment
type DeploymentStarted struct {
	ID        uuid.UUID               `json:"id"`
	Status    models.DeploymentStatus `json:"status"`
	CreatedAt time.Time               `json:"createdAt"`
}

// DeployResponse is returned when a deployment is accepted
type DeployResponse struct {
	Message    string            `json:"message"`
	Deployment DeploymentStarted `json:"deployment"`
}

// CommitListResponse lists stored commits
type CommitListResponse struct {
	Commits []CommitResponse `json:"commits"`
}

// AnalysisProject identifies the analysed project
type AnalysisProject struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	GitHubURL string    `json:"githubUrl"`
}

// AnalysisResponse is the advisory review of recent commits
type AnalysisResponse struct {
	Project  AnalysisProject `json:"project"`
	Analysis string          `json:"analysis"`
}

// DeploymentLogResponse is the full log of one deployment
type DeploymentLogResponse struct {
	DeploymentID uuid.UUID               `json:"deploymentId"`
	Status       models.DeploymentStatus `json:"status"`
	Logs         string                  `json:"logs"`
	Archived     bool                    `json:"archived"`
}

// ProjectFromModel converts a project and its loaded associations
func ProjectFromModel(p *models.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		GitHubURL:   p.GitHubURL,
		Description: p.Description,
		Status:      p.Status,
		UserID:      p.UserID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		User:        ownerFromModel(p.User),
		Deployments: make([]DeploymentResponse, 0, len(p.Deployments)),
		Commits:     CommitsFromModels(p.Commits),
	}
	for i := range p.Deployments {
		resp.Deployments = append(resp.Deployments, DeploymentFromModel(&p.Deployments[i]))
	}
	return resp
}

// ProjectListFromService converts a page of projects
func ProjectListFromService(page *service.ProjectPage) ProjectListResponse {
	items := make([]ProjectListItem, 0, len(page.Projects))
	for _, l := range page.Projects {
		items = append(items, ProjectListItem{
			ProjectResponse: ProjectFromModel(&l.Project),
			Count:           ProjectCounts{Deployments: l.DeploymentCount, Commits: l.CommitCount},
		})
	}
	return ProjectListResponse{
		Projects: items,
		Pagination: Pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	}
}

// ProjectDetailFromService flattens the merged history into views
func ProjectDetailFromService(detail *service.ProjectDetail) ProjectDetailResponse {
	p := detail.Project
	resp := ProjectDetailResponse{
		ID:          p.ID,
		Name:        p.Name,
		GitHubURL:   p.GitHubURL,
		Description: p.Description,
		Status:      p.Status,
		UserID:      p.UserID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		User:        ownerFromModel(p.User),
		Deployments: make([]DeploymentView, 0, len(detail.Deployments)),
		Commits:     CommitsFromModels(p.Commits),
	}
	for _, entry := range detail.Deployments {
		resp.Deployments = append(resp.Deployments, DeploymentViewFromEntry(entry))
	}
	return resp
}

// DeploymentViewFromEntry converts one tagged history entry
func DeploymentViewFromEntry(entry service.DeploymentEntry) DeploymentView {
	switch entry.Kind {
	case service.DeploymentKindGitHub:
		o := entry.Observed
		return DeploymentView{
			Kind:         string(service.DeploymentKindGitHub),
			ID:           o.ID,
			Status:       o.Status,
			URL:          o.URL,
			Environment:  o.Environment,
			Description:  o.Description,
			IsFromGitHub: true,
			CreatedAt:    o.CreatedAt,
		}
	default:
		d := entry.Stored
		updated := d.UpdatedAt
		return DeploymentView{
			Kind:         string(service.DeploymentKindStored),
			ID:           d.ID.String(),
			Status:       string(d.Status),
			URL:          d.URL,
			Logs:         d.Logs,
			Error:        d.Error,
			AISuggestion: d.AISuggestion,
			CreatedAt:    d.CreatedAt,
			UpdatedAt:    &updated,
		}
	}
}

// DeploymentFromModel converts a stored deployment
func DeploymentFromModel(d *models.Deployment) DeploymentResponse {
	return DeploymentResponse{
		ID:           d.ID,
		Status:       d.Status,
		URL:          d.URL,
		Logs:         d.Logs,
		Error:        d.Error,
		AISuggestion: d.AISuggestion,
		ProjectID:    d.ProjectID,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// CommitsFromModels converts commits loaded as a project association
func CommitsFromModels(commits []models.Commit) []CommitResponse {
	out := make([]CommitResponse, 0, len(commits))
	for i := range commits {
		out = append(out, CommitFromModel(&commits[i]))
	}
	return out
}

// CommitListFromModels converts commits returned by a refresh
func CommitListFromModels(commits []*models.Commit) CommitListResponse {
	out := make([]CommitResponse, 0, len(commits))
	for _, c := range commits {
		out = append(out, CommitFromModel(c))
	}
	return CommitListResponse{Commits: out}
}

// CommitFromModel converts one stored commit
func CommitFromModel(c *models.Commit) CommitResponse {
	return CommitResponse{
		ID:        c.ID,
		SHA:       c.SHA,
		Message:   c.Message,
		Author:    c.Author,
		Date:      c.Date,
		URL:       c.URL,
		ProjectID: c.ProjectID,
	}
}

// AnalysisFromService converts an analysis result
func AnalysisFromService(r *service.AnalysisResult) AnalysisResponse {
	return AnalysisResponse{
		Project: AnalysisProject{
			ID:        r.Project.ID,
			Name:      r.Project.Name,
			GitHubURL: r.Project.GitHubURL,
		},
		Analysis: r.Analysis,
	}
}

func ownerFromModel(u *models.User) *OwnerInfo {
	if u == nil {
		return nil
	}
	return &OwnerInfo{ID: u.ID, Name: u.Name, Email: u.Email}
}
