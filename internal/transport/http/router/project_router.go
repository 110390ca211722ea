package router

import (
	"net/http"

	"github.com/bravo68web/shipyard/internal/application/dto"
	"github.com/bravo68web/shipyard/internal/transport/http/handler"
	"github.com/bravo68web/shipyard/pkg/openapi"
)

func (r *Router) projectRouter() {
	h := handler.NewProjectHandler(r.Deps.ProjectService)

	notFound := openapi.ResponseDoc{Description: "Project not found or not owned", Model: dto.ErrorResponse{}}
	unauthorized := openapi.ResponseDoc{Description: "Authentication required", Model: dto.ErrorResponse{}}

	// Register Docs
	gen := r.server.OpenAPIGenerator
	gen.RegisterDocs(http.MethodPost, "/api/projects", openapi.RouteDocs{
		Summary:     "Create project",
		Description: "Registers a GitHub repository the user can access and stores its recent commits",
		Tags:        []string{"Projects"},
		Auth:        true,
		RequestBody: dto.CreateProjectRequest{},
		Responses: map[int]openapi.ResponseDoc{
			http.StatusCreated:      {Description: "Project created", Model: dto.ProjectMessageResponse{}},
			http.StatusBadRequest:   {Description: "Invalid input or repository", Model: dto.ErrorResponse{}},
			http.StatusUnauthorized: {Description: "Authentication or GitHub link required", Model: dto.ErrorResponse{}},
			http.StatusForbidden:    {Description: "No access to the repository", Model: dto.ErrorResponse{}},
		},
	})
	gen.RegisterDocs(http.MethodGet, "/api/projects", openapi.RouteDocs{
		Summary:     "List projects",
		Description: "Pages through the user's projects, newest first",
		Tags:        []string{"Projects"},
		Auth:        true,
		Query: []openapi.Parameter{
			{Name: "page", In: "query", Description: "1-based page number", Schema: &openapi.Schema{Type: "integer"}},
			{Name: "limit", In: "query", Description: "page size, at most 100", Schema: &openapi.Schema{Type: "integer"}},
		},
		Responses: map[int]openapi.ResponseDoc{
			http.StatusOK:           {Description: "One page of projects", Model: dto.ProjectListResponse{}},
			http.StatusUnauthorized: unauthorized,
		},
	})
	gen.RegisterDocs(http.MethodGet, "/api/projects/:id", openapi.RouteDocs{
		Summary:     "Get project",
		Description: "Returns the project with stored deployments merged with the live GitHub deployment",
		Tags:        []string{"Projects"},
		Auth:        true,
		Responses: map[int]openapi.ResponseDoc{
			http.StatusOK:       {Description: "Project", Model: dto.ProjectEnvelope{}},
			http.StatusNotFound: notFound,
		},
	})
	gen.RegisterDocs(http.MethodPut, "/api/projects/:id", openapi.RouteDocs{
		Summary:     "Update project",
		Description: "Changes name and/or description",
		Tags:        []string{"Projects"},
		Auth:        true,
		RequestBody: dto.UpdateProjectRequest{},
		Responses: map[int]openapi.ResponseDoc{
			http.StatusOK:         {Description: "Project updated", Model: dto.ProjectMessageResponse{}},
			http.StatusBadRequest: {Description: "Invalid input", Model: dto.ErrorResponse{}},
			http.StatusNotFound:   notFound,
		},
	})
	gen.RegisterDocs(http.MethodDelete, "/api/projects/:id", openapi.RouteDocs{
		Summary:     "Delete project",
		Description: "Deletes the project with its deployments, commits and archived logs",
		Tags:        []string{"Projects"},
		Auth:        true,
		Responses: map[int]openapi.ResponseDoc{
			http.StatusOK:       {Description: "Project deleted", Model: dto.MessageResponse{}},
			http.StatusNotFound: notFound,
		},
	})
	gen.RegisterDocs(http.MethodPost, "/api/projects/:id/deploy", openapi.RouteDocs{
		Summary:     "Deploy project",
		Description: "Starts a deployment; the build finishes in the background",
		Tags:        []string{"Projects"},
		Auth:        true,
		Responses: map[int]openapi.ResponseDoc{
			http.StatusAccepted: {Description: "Deployment started", Model: dto.DeployResponse{}},
			http.StatusNotFound: notFound,
		},
	})
	gen.RegisterDocs(http.MethodGet, "/api/projects/:id/commits", openapi.RouteDocs{
		Summary:     "Refresh commits",
		Description: "Re-fetches recent commits from GitHub and returns the stored list",
		Tags:        []string{"Projects"},
		Auth:        true,
		Responses: map[int]openapi.ResponseDoc{
			http.StatusOK:       {Description: "Commits, newest first", Model: dto.CommitListResponse{}},
			http.StatusNotFound: notFound,
		},
	})
	gen.RegisterDocs(http.MethodGet, "/api/projects/:id/analysis", openapi.RouteDocs{
		Summary:     "Analyze commits",
		Description: "Generates a review of the ten most recent stored commits",
		Tags:        []string{"Projects"},
		Auth:        true,
		Responses: map[int]openapi.ResponseDoc{
			http.StatusOK:       {Description: "Analysis", Model: dto.AnalysisResponse{}},
			http.StatusNotFound: notFound,
		},
	})
	gen.RegisterDocs(http.MethodGet, "/api/projects/:id/deployments/:deploymentId/logs", openapi.RouteDocs{
		Summary:     "Deployment logs",
		Description: "Returns the archived log of a deployment, or the stored log when none was archived",
		Tags:        []string{"Projects"},
		Auth:        true,
		Responses: map[int]openapi.ResponseDoc{
			http.StatusOK:       {Description: "Log text", Model: dto.DeploymentLogResponse{}},
			http.StatusNotFound: {Description: "Project or deployment not found", Model: dto.ErrorResponse{}},
		},
	})

	// Register project routes
	projects := r.server.Group("/api/projects")
	{
		projects.Use(r.auth.RequireAuth())
		projects.POST("", h.CreateProject)
		projects.GET("", h.ListProjects)
		projects.GET("/:id", h.GetProject)
		projects.PUT("/:id", h.UpdateProject)
		projects.DELETE("/:id", h.DeleteProject)
		projects.POST("/:id/deploy", h.Deploy)
		projects.GET("/:id/commits", h.Commits)
		projects.GET("/:id/analysis", h.Analysis)
		projects.GET("/:id/deployments/:deploymentId/logs", h.DeploymentLogs)
	}
}
