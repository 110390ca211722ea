package router

import (
	"net/http"

	"github.com/bravo68web/shipyard/internal/server"
	"github.com/bravo68web/shipyard/internal/transport/http/handler"
	"github.com/bravo68web/shipyard/pkg/openapi"
)

func (r *Router) docsRouter() {
	gen := r.server.OpenAPIGenerator

	gen.RegisterDocs(http.MethodGet, "/api", openapi.RouteDocs{
		Summary:     "Endpoint catalog",
		Description: "Lists every documented endpoint",
		Tags:        []string{"System"},
		Responses: map[int]openapi.ResponseDoc{
			http.StatusOK: {Description: "Catalog", Model: handler.CatalogResponse{}},
		},
	})
	gen.RegisterDocs(http.MethodGet, "/api/openapi.json", openapi.RouteDocs{
		Summary:     "OpenAPI document",
		Description: "OpenAPI 3 description of this API",
		Tags:        []string{"System"},
	})
	gen.RegisterDocs(http.MethodGet, "/metrics", openapi.RouteDocs{
		Summary:     "Prometheus metrics",
		Description: "Request, deployment and advisor metrics in the Prometheus text format",
		Tags:        []string{"System"},
	})

	r.server.GET("/api", handler.CatalogHandler(gen, "Shipyard API", server.Version))
	r.server.GET("/api/openapi.json", handler.OpenAPIHandler(gen))
	r.server.GET("/metrics", handler.MetricsHandler(r.Deps.Metrics))
}
