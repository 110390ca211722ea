package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/shipyard/internal/application/dto"
	"github.com/bravo68web/shipyard/internal/application/service"
	"github.com/bravo68web/shipyard/pkg/logger"
)

// ProjectHandler handles project and deployment HTTP requests
type ProjectHandler struct {
	projects ProjectManager
	log      *logger.Logger
}

// NewProjectHandler creates a new ProjectHandler instance
func NewProjectHandler(projects ProjectManager) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		log:      logger.Get().WithFields(logger.Component("project-handler")),
	}
}

// CreateProject handles POST /api/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.projects.CreateProject(c.Request.Context(), user.ID, service.CreateProjectInput{
		Name:        req.Name,
		GitHubURL:   req.GitHubURL,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ProjectMessageResponse{
		Message: "Project created successfully",
		Project: dto.ProjectFromModel(project),
	})
}

// ListProjects handles GET /api/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	// Unparseable values fall back to the defaults
	var query dto.PaginationQuery
	_ = c.ShouldBindQuery(&query)

	page, err := h.projects.ListProjects(c.Request.Context(), user.ID, query.Page, query.Limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectListFromService(page))
}

// GetProject handles GET /api/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	detail, err := h.projects.GetProject(c.Request.Context(), user.ID, projectID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectEnvelope{Project: dto.ProjectDetailFromService(detail)})
}

// UpdateProject handles PUT /api/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.projects.UpdateProject(c.Request.Context(), user.ID, projectID, req.ToModel())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectMessageResponse{
		Message: "Project updated successfully",
		Project: dto.ProjectFromModel(project),
	})
}

// DeleteProject handles DELETE /api/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	if err := h.projects.DeleteProject(c.Request.Context(), user.ID, projectID); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Project deleted successfully"})
}

// Deploy handles POST /api/projects/:id/deploy
// Responds as soon as the deployment row exists; the build runs in the background
func (h *ProjectHandler) Deploy(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	deployment, err := h.projects.Deploy(c.Request.Context(), user.ID, projectID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Deployment accepted",
		logger.ProjectID(projectID.String()),
		logger.DeploymentID(deployment.ID.String()),
	)

	c.JSON(http.StatusAccepted, dto.DeployResponse{
		Message: "Deployment started",
		Deployment: dto.DeploymentStarted{
			ID:        deployment.ID,
			Status:    deployment.Status,
			CreatedAt: deployment.CreatedAt,
		},
	})
}

// Commits handles GET /api/projects/:id/commits
func (h *ProjectHandler) Commits(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	commits, err := h.projects.RefreshCommits(c.Request.Context(), user, projectID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.CommitListFromModels(commits))
}

// Analysis handles GET /api/projects/:id/analysis
func (h *ProjectHandler) Analysis(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	result, err := h.projects.Analyze(c.Request.Context(), user.ID, projectID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.AnalysisFromService(result))
}

// DeploymentLogs handles GET /api/projects/:id/deployments/:deploymentId/logs
func (h *ProjectHandler) DeploymentLogs(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}
	deploymentID, ok := uuidParam(c, "deploymentId", "deployment")
	if !ok {
		return
	}

	logs, err := h.projects.GetDeploymentLogs(c.Request.Context(), user.ID, projectID, deploymentID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.DeploymentLogResponse{
		DeploymentID: logs.DeploymentID,
		Status:       logs.Status,
		Logs:         logs.Logs,
		Archived:     logs.Archived,
	})
}
