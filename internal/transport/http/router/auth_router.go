package router

import (
	"net/http"

	"github.com/bravo68web/shipyard/internal/application/dto"
	"github.com/bravo68web/shipyard/internal/transport/http/handler"
	"github.com/bravo68web/shipyard/pkg/openapi"
)

func (r *Router) authRouter() {
	cfg := r.server.Config
	h := handler.NewAuthHandler(
		r.Deps.AuthService,
		r.Deps.GitHubOAuthService,
		r.Deps.UserService,
		cfg.Server.FrontendURL,
		cfg.IsProduction(),
	)

	// Register Docs
	gen := r.server.OpenAPIGenerator
	gen.RegisterDocs(http.MethodPost, "/api/auth/register", openapi.RouteDocs{
		Summary:     "Register",
		Description: "Creates a password account and returns a session token",
		Tags:        []string{"Auth"},
		RequestBody: dto.RegisterRequest{},
		Responses: map[int]openapi.ResponseDoc{
			http.StatusCreated:    {Description: "User registered", Model: dto.AuthResponse{}},
			http.StatusBadRequest: {Description: "Invalid input or email already registered", Model: dto.ErrorResponse{}},
		},
	})
	gen.RegisterDocs(http.MethodPost, "/api/auth/login", openapi.RouteDocs{
		Summary:     "Login",
		Description: "Exchanges email and password for a session token",
		Tags:        []string{"Auth"},
		RequestBody: dto.LoginRequest{},
		Responses: map[int]openapi.ResponseDoc{
			http.StatusOK:           {Description: "Login successful", Model: dto.AuthResponse{}},
			http.StatusUnauthorized: {Description: "Invalid email or password", Model: dto.ErrorResponse{}},
		},
	})
	gen.RegisterDocs(http.MethodGet, "/api/auth/github", openapi.RouteDocs{
		Summary:     "GitHub login",
		Description: "Redirects to GitHub's authorize page",
		Tags:        []string{"Auth"},
		Responses: map[int]openapi.ResponseDoc{
			http.StatusFound:              {Description: "Redirect to GitHub"},
			http.StatusServiceUnavailable: {Description: "GitHub login is not configured", Model: dto.ErrorResponse{}},
		},
	})
	gen.RegisterDocs(http.MethodGet, "/api/auth/github/callback", openapi.RouteDocs{
		Summary:     "GitHub login callback",
		Description: "Completes GitHub login and redirects to the frontend with a token or an error",
		Tags:        []string{"Auth"},
		Query: []openapi.Parameter{
			{Name: "code", In: "query", Schema: &openapi.Schema{Type: "string"}},
			{Name: "state", In: "query", Schema: &openapi.Schema{Type: "string"}},
		},
		Responses: map[int]openapi.ResponseDoc{
			http.StatusFound: {Description: "Redirect to the frontend"},
		},
	})
	gen.RegisterDocs(http.MethodGet, "/api/auth/profile", openapi.RouteDocs{
		Summary:     "Profile",
		Description: "Returns the signed-in user with their projects",
		Tags:        []string{"Auth"},
		Auth:        true,
		Responses: map[int]openapi.ResponseDoc{
			http.StatusOK:           {Description: "Profile", Model: dto.ProfileResponse{}},
			http.StatusUnauthorized: {Description: "Authentication required", Model: dto.ErrorResponse{}},
		},
	})

	// Register auth routes
	auth := r.server.Group("/api/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/github", h.GitHubRedirect)
		auth.GET("/github/callback", h.GitHubCallback)
		auth.GET("/profile", r.auth.RequireAuth(), h.Profile)
	}
}
