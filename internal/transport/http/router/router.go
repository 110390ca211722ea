package router

import (
	"github.com/bravo68web/shipyard/internal/injectable"
	"github.com/bravo68web/shipyard/internal/server"
	"github.com/bravo68web/shipyard/internal/transport/http/middleware"
)

type Router struct {
	server *server.Server
	Deps   *injectable.Dependencies

	auth *middleware.AuthMiddleware
}

// NewRouter creates a new Router instance.
func NewRouter(s *server.Server, deps *injectable.Dependencies) *Router {
	return &Router{
		server: s,
		Deps:   deps,
		auth:   middleware.NewAuthMiddleware(deps.AuthService),
	}
}

// RegisterRoutes sets up the routes and middleware for the server.
func (r *Router) RegisterRoutes() {
	r.server.Use(
		middleware.RecoveryMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.MetricsMiddleware(r.Deps.Metrics),
		middleware.CORSMiddleware(r.server.Config.CORS.AllowedOrigins),
	)

	r.healthRouter()
	r.authRouter()
	r.projectRouter()
	r.userRouter()
	r.docsRouter()
}
