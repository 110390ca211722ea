package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/shipyard/internal/config"
	"github.com/bravo68web/shipyard/internal/infrastructure/database"
	"github.com/bravo68web/shipyard/pkg/logger"
	"github.com/bravo68web/shipyard/pkg/openapi"
)

// Version is reported by /api and the OpenAPI document
const Version = "1.0.0"

type Server struct {
	*gin.Engine

	Config           *config.Config
	DB               *database.Database
	OpenAPIGenerator *openapi.Generator
	StartedAt        time.Time

	onShutdown []func(ctx context.Context) error
	log        *logger.Logger
}

// New builds the gin engine for cfg. db may be nil when only routes are needed.
func New(cfg *config.Config, db *database.Database) *Server {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	// Request logging and panic recovery are installed by the router
	engine := gin.New()

	gen := openapi.NewGenerator(engine,
		openapi.Info{
			Title:       "Shipyard API",
			Description: "Register GitHub repositories and run simulated deployments.",
			Version:     Version,
		},
		[]openapi.Server{{URL: fmt.Sprintf("http://localhost:%d", cfg.Server.Port), Description: "Local"}},
		[]openapi.Tag{
			{Name: "Auth", Description: "Registration, login and GitHub OAuth"},
			{Name: "Projects", Description: "Projects, deployments and commits"},
			{Name: "Users", Description: "Dashboard and profile"},
			{Name: "System", Description: "Health and discovery"},
		},
	)

	return &Server{
		Engine:           engine,
		Config:           cfg,
		DB:               db,
		OpenAPIGenerator: gen,
		StartedAt:        time.Now(),
		log:              logger.Get().WithFields(logger.Component("server")),
	}
}

// OnShutdown registers fn to run after the listener stops accepting requests.
// Hooks run in registration order.
func (s *Server) OnShutdown(fn func(ctx context.Context) error) {
	s.onShutdown = append(s.onShutdown, fn)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Config.ServerAddress(),
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening",
			logger.String("address", srv.Addr),
			logger.Environment(s.Config.Server.Environment),
			logger.Version(Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := time.Duration(s.Config.Server.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("Shutting down HTTP server", logger.Duration("timeout", timeout))

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	for _, fn := range s.onShutdown {
		if err := fn(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	s.log.Info("Server stopped")
	return errors.Join(errs...)
}
