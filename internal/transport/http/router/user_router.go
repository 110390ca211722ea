package router

import (
	"net/http"

	"github.com/bravo68web/shipyard/internal/application/dto"
	"github.com/bravo68web/shipyard/internal/transport/http/handler"
	"github.com/bravo68web/shipyard/pkg/openapi"
)

func (r *Router) userRouter() {
	userHandler := handler.NewUserHandler(r.Deps.UserService)

	// Register Docs
	r.server.OpenAPIGenerator.RegisterDocs(http.MethodGet, "/api/users/dashboard", openapi.RouteDocs{
		Summary:     "Dashboard",
		Description: "Project counts per status with recent projects and deployments",
		Tags:        []string{"Users"},
		Auth:        true,
		Responses: map[int]openapi.ResponseDoc{
			http.StatusOK:           {Description: "Dashboard", Model: dto.DashboardResponse{}},
			http.StatusUnauthorized: {Description: "Authentication required", Model: dto.ErrorResponse{}},
		},
	})
	r.server.OpenAPIGenerator.RegisterDocs(http.MethodPut, "/api/users/profile", openapi.RouteDocs{
		Summary:     "Update profile",
		Description: "Updates the current user's name and/or avatar",
		Tags:        []string{"Users"},
		Auth:        true,
		RequestBody: dto.UpdateProfileRequest{},
		Responses: map[int]openapi.ResponseDoc{
			http.StatusOK:         {Description: "Profile updated", Model: dto.UpdateProfileResponse{}},
			http.StatusBadRequest: {Description: "Invalid input", Model: dto.ErrorResponse{}},
		},
	})

	// Register user routes
	userGroup := r.server.Group("/api/users")
	{
		userGroup.Use(r.auth.RequireAuth())
		userGroup.GET("/dashboard", userHandler.Dashboard)
		userGroup.PUT("/profile", userHandler.UpdateProfile)
	}
}
