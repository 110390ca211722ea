package injectable

import (
	"context"
	"fmt"

	"github.com/bravo68web/shipyard/internal/application/service"
	"github.com/bravo68web/shipyard/internal/config"
	domainservice "github.com/bravo68web/shipyard/internal/domain/service"
	"github.com/bravo68web/shipyard/internal/infrastructure/database"
	"github.com/bravo68web/shipyard/internal/infrastructure/deployer"
	"github.com/bravo68web/shipyard/internal/infrastructure/gemini"
	"github.com/bravo68web/shipyard/internal/infrastructure/github"
	"github.com/bravo68web/shipyard/internal/infrastructure/repository"
	"github.com/bravo68web/shipyard/internal/infrastructure/storage"
	"github.com/bravo68web/shipyard/internal/observability"
	"github.com/bravo68web/shipyard/pkg/logger"
)

// Dependencies holds all the dependencies required by the router
type Dependencies struct {
	// Services
	AuthService        domainservice.AuthService
	GitHubOAuthService *service.GitHubOAuthService
	ProjectService     *service.ProjectService
	UserService        *service.UserService
	Reaper             *service.DeploymentReaper

	// Infrastructure
	Gateway  *github.Gateway
	Advisor  domainservice.AdvisoryService
	LogStore domainservice.LogStore
	Runner   *service.TaskRunner
	Metrics  *observability.Metrics
}

// LoadDependencies wires repositories, clients and services around an open database
func LoadDependencies(ctx context.Context, cfg *config.Config, db *database.Database) (*Dependencies, error) {
	log := logger.Get().WithFields(logger.Component("injectable"))

	metrics := observability.NewMetrics()
	if sqlDB, err := db.DB().DB(); err == nil {
		if err := metrics.RegisterDB(sqlDB, "shipyard"); err != nil {
			log.Warn("Database pool metrics unavailable", logger.Error(err))
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB())
	projectRepo := repository.NewProjectRepository(db.DB())
	deploymentRepo := repository.NewDeploymentRepository(db.DB())
	commitRepo := repository.NewCommitRepository(db.DB())

	// Initialize storage
	logStore, err := storage.NewLogStore(ctx, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize log storage: %w", err)
	}

	// Initialize remote clients
	gateway, err := github.NewGateway(&cfg.GitHub)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize github gateway: %w", err)
	}
	advisor := gemini.NewAdvisor(&cfg.Gemini, metrics)
	executor := deployer.NewSimulatedExecutor(&cfg.Deploy)

	// Initialize services
	runner := service.NewTaskRunner(metrics)
	authService := service.NewAuthService(userRepo, &cfg.Auth)
	oauthService := service.NewGitHubOAuthService(&cfg.GitHub, gateway, userRepo, authService)
	userService := service.NewUserService(userRepo, projectRepo, deploymentRepo)
	projectService := service.NewProjectService(service.ProjectServiceDeps{
		Projects:    projectRepo,
		Deployments: deploymentRepo,
		Commits:     commitRepo,
		Users:       userRepo,
		Gateway:     gateway,
		Advisor:     advisor,
		Executor:    executor,
		LogStore:    logStore,
		Runner:      runner,
		Metrics:     metrics,
	}, &cfg.Deploy)
	reaper := service.NewDeploymentReaper(deploymentRepo, metrics, &cfg.Deploy)

	log.Info("Dependencies loaded",
		logger.String("storage", cfg.Storage.Type),
		logger.Bool("github_oauth", cfg.GitHub.OAuthConfigured()),
		logger.Bool("gemini", cfg.Gemini.IsConfigured()),
	)

	return &Dependencies{
		AuthService:        authService,
		GitHubOAuthService: oauthService,
		ProjectService:     projectService,
		UserService:        userService,
		Reaper:             reaper,
		Gateway:            gateway,
		Advisor:            advisor,
		LogStore:           logStore,
		Runner:             runner,
		Metrics:            metrics,
	}, nil
}
