package openapi

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerAuth is the name of the security scheme used by protected routes
const BearerAuth = "bearerAuth"

type RouteDocs struct {
	Summary     string
	Description string
	Tags        []string
	Auth        bool        // requires a bearer token
	Query       []Parameter // query string parameters
	RequestBody interface{} // Struct for request body schema
	Responses   map[int]ResponseDoc
}

type ResponseDoc struct {
	Description string
	Model       interface{} // Struct for response schema
	Example     interface{} // Example value
}

// Endpoint is one entry of the human-readable route catalog
type Endpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
	Auth        bool   `json:"auth"`
}

type Generator struct {
	engine    *gin.Engine
	info      Info
	servers   []Server
	tags      []Tag
	routeDocs map[string]RouteDocs
}

func NewGenerator(engine *gin.Engine, info Info, servers []Server, tags []Tag) *Generator {
	return &Generator{
		engine:    engine,
		info:      info,
		servers:   servers,
		tags:      tags,
		routeDocs: make(map[string]RouteDocs),
	}
}

// RegisterDocs registers documentation for a specific route
// method: GET, POST, etc.
// path: /api/projects/:id
func (g *Generator) RegisterDocs(method, path string, docs RouteDocs) {
	g.routeDocs[routeKey(method, path)] = docs
}

// Docs returns the documentation registered for a route
func (g *Generator) Docs(method, path string) (RouteDocs, bool) {
	docs, ok := g.routeDocs[routeKey(method, path)]
	return docs, ok
}

// Catalog lists every documented route registered on the engine, sorted by path then method
func (g *Generator) Catalog() []Endpoint {
	var out []Endpoint
	for _, route := range g.engine.Routes() {
		docs, ok := g.Docs(route.Method, route.Path)
		if !ok {
			continue
		}
		out = append(out, Endpoint{
			Method:      route.Method,
			Path:        route.Path,
			Summary:     docs.Summary,
			Description: docs.Description,
			Auth:        docs.Auth,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func (g *Generator) Generate() *OpenAPI {
	spec := &OpenAPI{
		OpenAPI: "3.0.3",
		Info:    g.info,
		Servers: g.servers,
		Tags:    g.tags,
		Paths:   make(map[string]*PathItem),
		Components: Components{
			Schemas: make(map[string]*Schema),
			SecuritySchemes: map[string]*SecurityScheme{
				BearerAuth: {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
			},
		},
	}

	for _, route := range g.engine.Routes() {
		// e.g., /api/projects/:id -> /api/projects/{id}
		openAPIPath := convertPath(route.Path)

		if _, exists := spec.Paths[openAPIPath]; !exists {
			spec.Paths[openAPIPath] = &PathItem{}
		}
		pathItem := spec.Paths[openAPIPath]

		docs, hasDocs := g.Docs(route.Method, route.Path)

		operation := &Operation{
			Summary:     route.Handler,
			OperationID: getOperationID(route.Handler),
			Parameters:  extractPathParams(route.Path),
			Responses:   make(map[string]Response),
		}

		if hasDocs {
			applyDocs(operation, docs)
		}

		if len(operation.Responses) == 0 {
			operation.Responses["200"] = Response{
				Description: "Successful response",
			}
		}

		switch route.Method {
		case "GET":
			pathItem.Get = operation
		case "POST":
			pathItem.Post = operation
		case "PUT":
			pathItem.Put = operation
		case "DELETE":
			pathItem.Delete = operation
		case "PATCH":
			pathItem.Patch = operation
		case "HEAD":
			pathItem.Head = operation
		case "OPTIONS":
			pathItem.Options = operation
		}
	}

	return spec
}

func applyDocs(operation *Operation, docs RouteDocs) {
	if docs.Summary != "" {
		operation.Summary = docs.Summary
	}
	operation.Description = docs.Description
	operation.Tags = docs.Tags

	if docs.Auth {
		operation.Security = []map[string][]string{{BearerAuth: {}}}
	}

	for _, q := range docs.Query {
		q.In = "query"
		if q.Schema == nil {
			q.Schema = &Schema{Type: "string"}
		}
		operation.Parameters = append(operation.Parameters, q)
	}

	if docs.RequestBody != nil {
		operation.RequestBody = &RequestBody{
			Content: map[string]MediaType{
				"application/json": {Schema: GenerateSchema(docs.RequestBody)},
			},
			Required: true,
		}
	}

	for status, respDoc := range docs.Responses {
		resp := Response{Description: respDoc.Description}

		if respDoc.Model != nil {
			schema := GenerateSchema(respDoc.Model)
			if respDoc.Example != nil {
				schema.Example = respDoc.Example
			}
			resp.Content = map[string]MediaType{
				"application/json": {Schema: schema},
			}
		}

		operation.Responses[strconv.Itoa(status)] = resp
	}
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

func convertPath(ginPath string) string {
	parts := strings.Split(ginPath, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, ":") || strings.HasPrefix(part, "*") {
			parts[i] = "{" + part[1:] + "}"
		}
	}
	return strings.Join(parts, "/")
}

func extractPathParams(ginPath string) []Parameter {
	var params []Parameter
	for _, part := range strings.Split(ginPath, "/") {
		if strings.HasPrefix(part, ":") || strings.HasPrefix(part, "*") {
			params = append(params, Parameter{
				Name:     part[1:],
				In:       "path",
				Required: true,
				Schema:   &Schema{Type: "string"},
			})
		}
	}
	return params
}

func getOperationID(handlerName string) string {
	// handlerName is usually "github.com/bravo68web/shipyard/internal/transport/http/handler.(*ProjectHandler).Deploy-fm"
	// We want something cleaner like "handler_ProjectHandler_Deploy"

	parts := strings.Split(handlerName, "/")
	lastPart := parts[len(parts)-1]

	if idx := strings.Index(lastPart, "-fm"); idx != -1 {
		lastPart = lastPart[:idx]
	}

	lastPart = strings.ReplaceAll(lastPart, "(", "")
	lastPart = strings.ReplaceAll(lastPart, ")", "")
	lastPart = strings.ReplaceAll(lastPart, "*", "")
	lastPart = strings.ReplaceAll(lastPart, ".", "_")

	return lastPart
}
