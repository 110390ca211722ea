// Package deployer provides deployment executors.
package deployer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/bravo68web/shipyard/internal/config"
	"github.com/bravo68web/shipyard/internal/domain/service"
	"github.com/bravo68web/shipyard/pkg/logger"
)

// BuildFailedError is the error reported by a failed simulated build
const BuildFailedError = "Build failed: Missing environment variables or dependency conflicts"

const logTimeFormat = "2006-01-02T15:04:05.000Z07:00"

var whitespaceRun = regexp.MustCompile(`\s+`)

// SimulatedExecutor pretends to build and deploy a repository.
// No external work is performed.
type SimulatedExecutor struct {
	successRate float64
	domain      string
	stageDelay  time.Duration
	random      func() float64
	now         func() time.Time
	log         *logger.Logger
}

// Option customizes a SimulatedExecutor
type Option func(*SimulatedExecutor)

// WithRandom replaces the random source; it must return values in [0, 1)
func WithRandom(random func() float64) Option {
	return func(e *SimulatedExecutor) {
		e.random = random
	}
}

// WithClock replaces the time source used for log timestamps
func WithClock(now func() time.Time) Option {
	return func(e *SimulatedExecutor) {
		e.now = now
	}
}

// NewSimulatedExecutor creates an executor from the deploy configuration
func NewSimulatedExecutor(cfg *config.DeployConfig, opts ...Option) *SimulatedExecutor {
	domain := cfg.Domain
	if domain == "" {
		domain = "your-domain.com"
	}

	e := &SimulatedExecutor{
		successRate: cfg.SuccessRate,
		domain:      domain,
		stageDelay:  cfg.StageDelay(),
		random:      rand.Float64,
		now:         time.Now,
		log:         logger.Get().WithFields(logger.Component("deployer")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the simulated pipeline and decides the outcome
func (e *SimulatedExecutor) Execute(ctx context.Context, repoURL, projectName string) (*service.DeploymentOutcome, error) {
	stages := []string{
		fmt.Sprintf("Starting deployment for %s", projectName),
		fmt.Sprintf("Cloning repository from %s...", repoURL),
		"Installing dependencies...",
		"Running npm install...",
		"Building Docker image...",
		"Pushing image to registry...",
		"Deploying to AWS EC2...",
		"Configuring load balancer...",
	}

	var sb strings.Builder
	for _, stage := range stages {
		if err := e.pause(ctx); err != nil {
			return nil, err
		}
		e.line(&sb, stage)
	}

	// the original pipeline treated values above 1-rate as success
	success := e.random() > 1-e.successRate
	if success {
		e.line(&sb, "Deployment completed successfully!")
	} else {
		e.line(&sb, "Deployment failed!")
	}

	e.log.Info("Simulated deployment finished",
		logger.RepoURL(repoURL),
		logger.String("project", projectName),
		logger.Bool("success", success),
	)

	if success {
		return &service.DeploymentOutcome{
			Success: true,
			URL:     e.URLFor(projectName),
			Logs:    sb.String(),
		}, nil
	}
	return &service.DeploymentOutcome{
		Success: false,
		Logs:    sb.String(),
		Error:   BuildFailedError,
	}, nil
}

// URLFor returns the public URL a successful deployment of projectName gets
func (e *SimulatedExecutor) URLFor(projectName string) string {
	slug := whitespaceRun.ReplaceAllString(strings.ToLower(projectName), "-")
	return fmt.Sprintf("https://%s.%s", slug, e.domain)
}

func (e *SimulatedExecutor) line(sb *strings.Builder, msg string) {
	sb.WriteString("[")
	sb.WriteString(e.now().UTC().Format(logTimeFormat))
	sb.WriteString("] ")
	sb.WriteString(msg)
	sb.WriteString("\n")
}

func (e *SimulatedExecutor) pause(ctx context.Context) error {
	if e.stageDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(e.stageDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
