package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bravo68web/shipyard/internal/observability"
	"github.com/bravo68web/shipyard/pkg/openapi"
)

// CatalogResponse lists the documented endpoints
type CatalogResponse struct {
	Name      string             `json:"name"`
	Version   string             `json:"version"`
	Endpoints []openapi.Endpoint `json:"endpoints"`
}

// CatalogHandler serves GET /api from the registered route docs
func CatalogHandler(gen *openapi.Generator, name, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, CatalogResponse{
			Name:      name,
			Version:   version,
			Endpoints: gen.Catalog(),
		})
	}
}

// OpenAPIHandler serves the generated OpenAPI document
func OpenAPIHandler(gen *openapi.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gen.Generate())
	}
}

// MetricsHandler exposes the Prometheus registry; without metrics it falls back to the default gatherer
func MetricsHandler(metrics *observability.Metrics) gin.HandlerFunc {
	if metrics == nil {
		return gin.WrapH(promhttp.Handler())
	}
	return gin.WrapH(metrics.Handler())
}
