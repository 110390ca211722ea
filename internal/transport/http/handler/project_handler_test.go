package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravo68web/shipyard/internal/application/service"
	"github.com/bravo68web/shipyard/internal/domain/models"
	apperrors "github.com/bravo68web/shipyard/pkg/errors"
)

func projectEngine(projects *stubProjects, user *models.User) *gin.Engine {
	h := NewProjectHandler(projects)
	engine := gin.New()
	api := engine.Group("/api/projects", asUser(user))
	api.POST("", h.CreateProject)
	api.GET("", h.ListProjects)
	api.GET("/:id", h.GetProject)
	api.PUT("/:id", h.UpdateProject)
	api.DELETE("/:id", h.DeleteProject)
	api.POST("/:id/deploy", h.Deploy)
	api.GET("/:id/commits", h.Commits)
	api.GET("/:id/analysis", h.Analysis)
	api.GET("/:id/deployments/:deploymentId/logs", h.DeploymentLogs)
	return engine
}

func testProject(owner *models.User) *models.Project {
	return &models.Project{
		ID:        uuid.New(),
		Name:      "site",
		GitHubURL: "https://github.com/ada/site",
		Status:    models.ProjectStatusPending,
		UserID:    owner.ID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestCreateProject(t *testing.T) {
	user := testUser()
	projects := &stubProjects{project: testProject(user)}
	engine := projectEngine(projects, user)

	rec := perform(t, engine, http.MethodPost, "/api/projects", map[string]string{
		"name": "site", "githubUrl": "https://github.com/ada/site",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Project created successfully", body["message"])
	assert.Equal(t, "PENDING", body["project"].(map[string]interface{})["status"])
	assert.Equal(t, user.ID, projects.gotOwner)
	assert.Equal(t, "https://github.com/ada/site", projects.gotCreate.GitHubURL)
	assert.Nil(t, projects.gotCreate.Description)
}

func TestCreateProject_Validation(t *testing.T) {
	user := testUser()
	engine := projectEngine(&stubProjects{}, user)

	rec := perform(t, engine, http.MethodPost, "/api/projects", map[string]string{
		"name": "site", "githubUrl": "not a url",
	})

	body := assertError(t, rec, http.StatusBadRequest, "bad_request")
	assert.Equal(t, "Validation failed: githubUrl must be a valid URL", body["message"])
}

func TestCreateProject_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		slug   string
	}{
		{"github token missing", apperrors.Unauthorized("GitHub authentication required", apperrors.ErrGitHubAuthRequired), http.StatusUnauthorized, "unauthorized"},
		{"no repository access", apperrors.Forbidden("You do not have access to this repository", apperrors.ErrForbidden), http.StatusForbidden, "forbidden"},
		{"bad repository", apperrors.BadRequest("Invalid GitHub repository: Not Found", nil), http.StatusBadRequest, "bad_request"},
		{"upstream", apperrors.Upstream("GitHub unavailable", errors.New("502")), http.StatusBadGateway, "upstream_error"},
		{"database", apperrors.DatabaseError("create", errors.New("boom")), http.StatusInternalServerError, "internal_error"},
		{"bare error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := projectEngine(&stubProjects{err: tt.err}, testUser())

			rec := perform(t, engine, http.MethodPost, "/api/projects", map[string]string{
				"name": "site", "githubUrl": "https://github.com/ada/site",
			})

			assertError(t, rec, tt.status, tt.slug)
		})
	}
}

func TestListProjects(t *testing.T) {
	user := testUser()
	p := testProject(user)
	projects := &stubProjects{page: &service.ProjectPage{
		Projects:   []*models.ProjectListing{{Project: *p, DeploymentCount: 2, CommitCount: 5}},
		Page:       2,
		Limit:      5,
		Total:      6,
		TotalPages: 2,
	}}
	engine := projectEngine(projects, user)

	rec := perform(t, engine, http.MethodGet, "/api/projects?page=2&limit=5", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, projects.gotPage)
	assert.Equal(t, 5, projects.gotLimit)

	body := decode(t, rec)
	pagination := body["pagination"].(map[string]interface{})
	assert.EqualValues(t, 6, pagination["total"])
	assert.EqualValues(t, 2, pagination["totalPages"])
	items := body["projects"].([]interface{})
	require.Len(t, items, 1)
	counts := items[0].(map[string]interface{})["_count"].(map[string]interface{})
	assert.EqualValues(t, 2, counts["deployments"])
	assert.EqualValues(t, 5, counts["commits"])
}

func TestListProjects_BadQueryUsesDefaults(t *testing.T) {
	user := testUser()
	projects := &stubProjects{page: &service.ProjectPage{Page: 1, Limit: 10}}
	engine := projectEngine(projects, user)

	rec := perform(t, engine, http.MethodGet, "/api/projects?page=abc", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, projects.gotPage)
}

func TestGetProject(t *testing.T) {
	user := testUser()
	p := testProject(user)
	stored := &models.Deployment{ID: uuid.New(), Status: models.DeploymentStatusSuccess, ProjectID: p.ID}
	projects := &stubProjects{detail: &service.ProjectDetail{
		Project: p,
		Deployments: []service.DeploymentEntry{
			{Kind: service.DeploymentKindGitHub, Observed: &service.ObservedDeployment{ID: "github-7", Status: "SUCCESS", Environment: "production"}},
			{Kind: service.DeploymentKindStored, Stored: stored},
		},
	}}
	engine := projectEngine(projects, user)

	rec := perform(t, engine, http.MethodGet, "/api/projects/"+p.ID.String(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, p.ID, projects.gotProject)
	deployments := decode(t, rec)["project"].(map[string]interface{})["deployments"].([]interface{})
	require.Len(t, deployments, 2)
	first := deployments[0].(map[string]interface{})
	assert.Equal(t, "github-7", first["id"])
	assert.Equal(t, true, first["isFromGitHub"])
	assert.Equal(t, stored.ID.String(), deployments[1].(map[string]interface{})["id"])
}

func TestGetProject_NotFound(t *testing.T) {
	user := testUser()
	engine := projectEngine(&stubProjects{err: apperrors.NotFound("project", apperrors.ErrNotFound)}, user)

	rec := perform(t, engine, http.MethodGet, "/api/projects/"+uuid.NewString(), nil)
	body := assertError(t, rec, http.StatusNotFound, "not_found")
	assert.Equal(t, "project not found", body["message"])
}

func TestGetProject_MalformedID(t *testing.T) {
	projects := &stubProjects{}
	engine := projectEngine(projects, testUser())

	rec := perform(t, engine, http.MethodGet, "/api/projects/not-a-uuid", nil)

	assertError(t, rec, http.StatusNotFound, "not_found")
	assert.Equal(t, uuid.Nil, projects.gotProject)
}

func TestProjectRoutes_RequireUser(t *testing.T) {
	engine := projectEngine(&stubProjects{}, nil)

	rec := perform(t, engine, http.MethodGet, "/api/projects", nil)

	assertError(t, rec, http.StatusUnauthorized, "unauthorized")
}

func TestUpdateProject(t *testing.T) {
	user := testUser()
	p := testProject(user)
	p.Name = "renamed"
	projects := &stubProjects{project: p}
	engine := projectEngine(projects, user)

	rec := perform(t, engine, http.MethodPut, "/api/projects/"+p.ID.String(), map[string]string{"name": "renamed"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Project updated successfully", decode(t, rec)["message"])
	require.NotNil(t, projects.gotUpdate.Name)
	assert.Equal(t, "renamed", *projects.gotUpdate.Name)
	assert.Nil(t, projects.gotUpdate.Description)
}

func TestDeleteProject(t *testing.T) {
	user := testUser()
	projects := &stubProjects{}
	engine := projectEngine(projects, user)

	rec := perform(t, engine, http.MethodDelete, "/api/projects/"+uuid.NewString(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Project deleted successfully", decode(t, rec)["message"])
	assert.True(t, projects.deleted)
}

func TestDeploy(t *testing.T) {
	user := testUser()
	deployment := &models.Deployment{ID: uuid.New(), Status: models.DeploymentStatusPending, CreatedAt: time.Now()}
	projects := &stubProjects{deployment: deployment}
	engine := projectEngine(projects, user)

	rec := perform(t, engine, http.MethodPost, "/api/projects/"+uuid.NewString()+"/deploy", nil)

	require.Equal(t, http.StatusAccepted, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Deployment started", body["message"])
	started := body["deployment"].(map[string]interface{})
	assert.Equal(t, deployment.ID.String(), started["id"])
	assert.Equal(t, "PENDING", started["status"])
}

func TestCommits(t *testing.T) {
	user := testUser()
	projects := &stubProjects{commits: []*models.Commit{{ID: uuid.New(), SHA: "abc123", Message: "init", Author: "ada"}}}
	engine := projectEngine(projects, user)

	rec := perform(t, engine, http.MethodGet, "/api/projects/"+uuid.NewString()+"/commits", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, projects.gotOwner)
	commits := decode(t, rec)["commits"].([]interface{})
	require.Len(t, commits, 1)
	assert.Equal(t, "abc123", commits[0].(map[string]interface{})["sha"])
}

func TestAnalysis(t *testing.T) {
	user := testUser()
	p := testProject(user)
	projects := &stubProjects{analysis: &service.AnalysisResult{Project: p, Analysis: "Looks healthy."}}
	engine := projectEngine(projects, user)

	rec := perform(t, engine, http.MethodGet, "/api/projects/"+p.ID.String()+"/analysis", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Looks healthy.", body["analysis"])
	assert.Equal(t, "site", body["project"].(map[string]interface{})["name"])
}

func TestDeploymentLogs(t *testing.T) {
	user := testUser()
	deploymentID := uuid.New()
	projects := &stubProjects{logs: &service.DeploymentLog{
		DeploymentID: deploymentID,
		Status:       models.DeploymentStatusFailed,
		Logs:         "npm ERR!",
		Archived:     true,
	}}
	engine := projectEngine(projects, user)

	rec := perform(t, engine, http.MethodGet, "/api/projects/"+uuid.NewString()+"/deployments/"+deploymentID.String()+"/logs", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, deploymentID, projects.gotDeploymentID)
	body := decode(t, rec)
	assert.Equal(t, "npm ERR!", body["logs"])
	assert.Equal(t, true, body["archived"])
}

func TestDeploymentLogs_MalformedDeploymentID(t *testing.T) {
	engine := projectEngine(&stubProjects{}, testUser())

	rec := perform(t, engine, http.MethodGet, "/api/projects/"+uuid.NewString()+"/deployments/nope/logs", nil)

	body := assertError(t, rec, http.StatusNotFound, "not_found")
	assert.Equal(t, "deployment not found", body["message"])
}
