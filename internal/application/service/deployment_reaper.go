package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bravo68web/shipyard/internal/config"
	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/bravo68web/shipyard/internal/domain/repository"
	"github.com/bravo68web/shipyard/internal/observability"
	apperrors "github.com/bravo68web/shipyard/pkg/errors"
	"github.com/bravo68web/shipyard/pkg/logger"
)

const (
	// DefaultReapSchedule checks for stuck deployments every five minutes
	DefaultReapSchedule = "*/5 * * * *"

	// DefaultStaleAfter is how long a deployment may stay non-terminal before it is failed
	DefaultStaleAfter = 30 * time.Minute

	reapBatchSize = 100

	msgDeploymentInterrupted = "Deployment interrupted: the server stopped before the build finished"
)

// DeploymentReaper fails deployments left PENDING or BUILDING by a process that
// stopped mid-build, so their projects do not stay BUILDING forever.
type DeploymentReaper struct {
	deployments repository.DeploymentRepository
	metrics     *observability.Metrics
	schedule    string
	staleAfter  time.Duration
	now         func() time.Time

	cron *cron.Cron
	log  *logger.Logger
}

// NewDeploymentReaper creates a new DeploymentReaper instance
func NewDeploymentReaper(deployments repository.DeploymentRepository, metrics *observability.Metrics, cfg *config.DeployConfig) *DeploymentReaper {
	schedule := cfg.ReapSchedule
	if schedule == "" {
		schedule = DefaultReapSchedule
	}
	staleAfter := cfg.StaleAfter()
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}

	return &DeploymentReaper{
		deployments: deployments,
		metrics:     metrics,
		schedule:    schedule,
		staleAfter:  staleAfter,
		now:         time.Now,
		log:         logger.Get().WithFields(logger.Component("deployment-reaper")),
	}
}

func cronParser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

// Start fails deployments orphaned by a previous process, then reaps stale ones on
// every tick of the schedule
func (r *DeploymentReaper) Start(ctx context.Context) error {
	if _, err := cronParser().Parse(r.schedule); err != nil {
		return fmt.Errorf("invalid reap schedule %q: %w", r.schedule, err)
	}

	if _, err := r.ReapOrphaned(ctx); err != nil {
		r.log.Warn("Orphaned deployment check failed", logger.Error(err))
	}

	r.cron = cron.New(cron.WithParser(cronParser()))
	if _, err := r.cron.AddFunc(r.schedule, func() {
		if _, err := r.ReapStale(context.WithoutCancel(ctx)); err != nil {
			r.log.Warn("Stale deployment check failed", logger.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule reaper: %w", err)
	}
	r.cron.Start()

	r.log.Info("Deployment reaper started",
		logger.String("schedule", r.schedule),
		logger.Duration("stale_after", r.staleAfter),
	)
	return nil
}

// Stop stops scheduling and waits for a running check to finish
func (r *DeploymentReaper) Stop(ctx context.Context) error {
	if r.cron == nil {
		return nil
	}
	select {
	case <-r.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReapStale fails every deployment that has been non-terminal for longer than staleAfter.
// It returns how many deployments were failed.
func (r *DeploymentReaper) ReapStale(ctx context.Context) (int, error) {
	return r.reapCreatedBefore(ctx, r.now().Add(-r.staleAfter))
}

// ReapOrphaned fails every non-terminal deployment created before now. It must run
// before the server accepts deploy requests, while no task of this process is in flight.
func (r *DeploymentReaper) ReapOrphaned(ctx context.Context) (int, error) {
	return r.reapCreatedBefore(ctx, r.now())
}

func (r *DeploymentReaper) reapCreatedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	stale, err := r.deployments.ListStale(ctx, cutoff, reapBatchSize)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		r.log.Debug("No stale deployments")
		return 0, nil
	}

	reaped := 0
	for _, d := range stale {
		err := r.deployments.Complete(ctx, d.ID, failedResult(msgDeploymentInterrupted))
		switch {
		case err == nil:
			reaped++
			r.metrics.RecordDeployment(string(models.DeploymentStatusFailed))
			r.log.Warn("Failed stale deployment",
				logger.DeploymentID(d.ID.String()),
				logger.ProjectID(d.ProjectID.String()),
				logger.Time("created_at", d.CreatedAt),
			)
		case apperrors.IsConflict(err) || apperrors.IsNotFound(err):
			// finished or deleted since it was listed
		default:
			r.log.Error("Failed to fail stale deployment",
				logger.DeploymentID(d.ID.String()),
				logger.Error(err),
			)
		}
	}

	r.log.Info("Stale deployment check completed",
		logger.Int("stale", len(stale)),
		logger.Int("failed", reaped),
	)
	return reaped, nil
}
