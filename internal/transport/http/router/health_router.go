package router

import (
	"net/http"

	"github.com/bravo68web/shipyard/internal/transport/http/handler"
	"github.com/bravo68web/shipyard/pkg/openapi"
)

func (r *Router) healthRouter() {
	r.server.OpenAPIGenerator.RegisterDocs(http.MethodGet, "/health", openapi.RouteDocs{
		Summary:     "Health check",
		Description: "Reports uptime in seconds and the configured environment",
		Tags:        []string{"System"},
		Responses: map[int]openapi.ResponseDoc{
			http.StatusOK: {Description: "Service is up", Model: handler.HealthResponse{}},
		},
	})

	r.server.GET("/health", handler.HealthHandler(r.server.StartedAt, r.server.Config.Server.Environment))
}
