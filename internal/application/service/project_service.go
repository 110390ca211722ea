package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/bravo68web/shipyard/internal/config"
	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/bravo68web/shipyard/internal/domain/repository"
	"github.com/bravo68web/shipyard/internal/domain/service"
	"github.com/bravo68web/shipyard/internal/infrastructure/storage"
	"github.com/bravo68web/shipyard/internal/observability"
	apperrors "github.com/bravo68web/shipyard/pkg/errors"
	"github.com/bravo68web/shipyard/pkg/logger"
)

const (
	// CommitFetchLimit is how many upstream commits are mirrored per project
	CommitFetchLimit = 20

	// AnalysisCommitLimit is how many stored commits are sent for analysis
	AnalysisCommitLimit = 10

	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	msgGitHubAuthRequired = "GitHub authentication required. Please login with GitHub first."
	msgNoRepoAccess       = "You do not have access to this repository"
)

// DeploymentKind tells stored deployments apart from ones observed on GitHub
type DeploymentKind string

const (
	DeploymentKindStored DeploymentKind = "stored"
	DeploymentKindGitHub DeploymentKind = "github"
)

// ObservedDeployment is a read-only deployment reported by GitHub. It is never persisted.
type ObservedDeployment struct {
	ID          string
	Status      string
	URL         *string
	Environment string
	Description string
	CreatedAt   time.Time
}

// DeploymentEntry is one element of a project's merged deployment history.
// Exactly one of Stored and Observed is set, matching Kind.
type DeploymentEntry struct {
	Kind     DeploymentKind
	Stored   *models.Deployment
	Observed *ObservedDeployment
}

// ProjectDetail is a project with its merged deployment history
type ProjectDetail struct {
	Project     *models.Project
	Deployments []DeploymentEntry
}

// ProjectPage is one page of an owner's projects
type ProjectPage struct {
	Projects   []*models.ProjectListing
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// CreateProjectInput holds the fields of a new project
type CreateProjectInput struct {
	Name        string
	GitHubURL   string
	Description *string
}

// DeploymentLog is a deployment's log text and where it was read from
type DeploymentLog struct {
	DeploymentID uuid.UUID
	Status       models.DeploymentStatus
	Logs         string
	Archived     bool
}

// AnalysisResult is the advisory review of a project's recent commits
type AnalysisResult struct {
	Project  *models.Project
	Analysis string
}

// ProjectService owns project and deployment status transitions and their authorization
type ProjectService struct {
	projects    repository.ProjectRepository
	deployments repository.DeploymentRepository
	commits     repository.CommitRepository
	users       repository.UserRepository
	gateway     service.RepositoryGateway
	advisor     service.AdvisoryService
	executor    service.DeploymentExecutor
	logStore    service.LogStore
	runner      *TaskRunner
	metrics     *observability.Metrics

	completionAttempts int
	retryBackoff       time.Duration
	log                *logger.Logger
}

// ProjectServiceDeps groups the collaborators of ProjectService
type ProjectServiceDeps struct {
	Projects    repository.ProjectRepository
	Deployments repository.DeploymentRepository
	Commits     repository.CommitRepository
	Users       repository.UserRepository
	Gateway     service.RepositoryGateway
	Advisor     service.AdvisoryService
	Executor    service.DeploymentExecutor
	LogStore    service.LogStore // optional
	Runner      *TaskRunner
	Metrics     *observability.Metrics // optional
}

// NewProjectService creates a new ProjectService instance
func NewProjectService(deps ProjectServiceDeps, cfg *config.DeployConfig) *ProjectService {
	attempts := cfg.CompletionRetries
	if attempts <= 0 {
		attempts = 3
	}

	return &ProjectService{
		projects:           deps.Projects,
		deployments:        deps.Deployments,
		commits:            deps.Commits,
		users:              deps.Users,
		gateway:            deps.Gateway,
		advisor:            deps.Advisor,
		executor:           deps.Executor,
		logStore:           deps.LogStore,
		runner:             deps.Runner,
		metrics:            deps.Metrics,
		completionAttempts: attempts,
		retryBackoff:       200 * time.Millisecond,
		log:                logger.Get().WithFields(logger.Component("project-service")),
	}
}

// SetRetryBackoff changes the base delay between completion write attempts
func (s *ProjectService) SetRetryBackoff(d time.Duration) {
	s.retryBackoff = d
}

// CreateProject registers a GitHub repository the owner can read
func (s *ProjectService) CreateProject(ctx context.Context, ownerID uuid.UUID, in CreateProjectInput) (*models.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.GitHubURL = strings.TrimSpace(in.GitHubURL)
	if err := validateProjectName(in.Name); err != nil {
		return nil, err
	}
	if err := validateRepoURL(in.GitHubURL); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}

	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized(msgGitHubAuthRequired, apperrors.ErrGitHubAuthRequired)
		}
		return nil, err
	}
	token := owner.GitHubAccessToken()
	if token == "" {
		return nil, apperrors.Unauthorized(msgGitHubAuthRequired, apperrors.ErrGitHubAuthRequired)
	}

	ok, err := s.gateway.HasAccess(ctx, in.GitHubURL, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Forbidden(msgNoRepoAccess, apperrors.ErrForbidden)
	}

	info, err := s.gateway.GetRepositoryInfo(ctx, in.GitHubURL, token)
	if err != nil {
		return nil, apperrors.BadRequest(fmt.Sprintf("Invalid GitHub repository: %s", upstreamText(err)), err)
	}

	description := in.Description
	if (description == nil || *description == "") && info.Description != "" {
		description = &info.Description
	}

	project := &models.Project{
		Name:        in.Name,
		GitHubURL:   in.GitHubURL,
		Description: description,
		Status:      models.ProjectStatusPending,
		UserID:      ownerID,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	s.log.Info("Project created",
		logger.ProjectID(project.ID.String()),
		logger.UserID(ownerID.String()),
		logger.RepoURL(project.GitHubURL),
	)

	project.Commits = s.mirrorCommits(ctx, project, token)
	project.User = owner
	return project, nil
}

// ListProjects returns one page of the owner's projects, most recently updated first
func (s *ProjectService) ListProjects(ctx context.Context, ownerID uuid.UUID, page, limit int) (*ProjectPage, error) {
	page, limit = NormalizePage(page, limit)

	items, total, err := s.projects.ListByOwner(ctx, ownerID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return &ProjectPage{
		Projects:   items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// GetProject loads a project with its history and, when available, the latest GitHub deployment
func (s *ProjectService) GetProject(ctx context.Context, ownerID, projectID uuid.UUID) (*ProjectDetail, error) {
	project, err := s.projects.FindDetailedByIDAndOwner(ctx, projectID, ownerID, CommitFetchLimit)
	if err != nil {
		return nil, err
	}

	entries := make([]DeploymentEntry, 0, len(project.Deployments)+1)

	token := ""
	if project.User != nil {
		token = project.User.GitHubAccessToken()
	}
	status, err := s.gateway.GetDeploymentStatus(ctx, project.GitHubURL, token)
	if err != nil {
		s.log.Warn("Could not fetch GitHub deployment status",
			logger.ProjectID(project.ID.String()),
			logger.Error(err),
		)
	} else if observed := observedDeployment(status); observed != nil {
		entries = append(entries, DeploymentEntry{Kind: DeploymentKindGitHub, Observed: observed})
	}

	for i := range project.Deployments {
		entries = append(entries, DeploymentEntry{Kind: DeploymentKindStored, Stored: &project.Deployments[i]})
	}

	return &ProjectDetail{Project: project, Deployments: entries}, nil
}

// UpdateProject changes only the provided fields
func (s *ProjectService) UpdateProject(ctx context.Context, ownerID, projectID uuid.UUID, update models.ProjectUpdate) (*models.Project, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if err := validateProjectName(name); err != nil {
			return nil, err
		}
		update.Name = &name
	}
	if err := validateDescription(update.Description); err != nil {
		return nil, err
	}

	project, err := s.projects.Update(ctx, projectID, ownerID, update)
	if err != nil {
		return nil, err
	}

	s.log.Info("Project updated", logger.ProjectID(projectID.String()))
	return project, nil
}

// DeleteProject removes a project with its deployments, commits and archived logs
func (s *ProjectService) DeleteProject(ctx context.Context, ownerID, projectID uuid.UUID) error {
	if err := s.projects.DeleteByIDAndOwner(ctx, projectID, ownerID); err != nil {
		return err
	}

	if s.logStore != nil {
		if err := s.logStore.DeletePrefix(ctx, storage.ProjectLogPrefix(projectID.String())); err != nil {
			s.log.Warn("Failed to remove archived logs",
				logger.ProjectID(projectID.String()),
				logger.Error(err),
			)
		}
	}

	s.log.Info("Project deleted",
		logger.ProjectID(projectID.String()),
		logger.UserID(ownerID.String()),
	)
	return nil
}

// Deploy marks the project BUILDING, records a BUILDING deployment and runs the
// executor in the background. The returned deployment is the initial record.
func (s *ProjectService) Deploy(ctx context.Context, ownerID, projectID uuid.UUID) (*models.Deployment, error) {
	project, err := s.projects.FindByIDAndOwner(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}

	deployment, err := s.deployments.Start(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}

	s.log.Info("Deployment started",
		logger.ProjectID(projectID.String()),
		logger.DeploymentID(deployment.ID.String()),
	)

	target := *project
	s.runner.Go(ctx, "deploy:"+deployment.ID.String(), func(ctx context.Context) error {
		return s.runDeployment(ctx, &target, deployment.ID)
	})

	return deployment, nil
}

// runDeployment is the single completion path of a deployment
func (s *ProjectService) runDeployment(ctx context.Context, project *models.Project, deploymentID uuid.UUID) error {
	result := s.execute(ctx, project)

	if err := s.complete(ctx, deploymentID, result); err != nil {
		s.log.Error("Failed to record deployment result",
			logger.DeploymentID(deploymentID.String()),
			logger.ProjectID(project.ID.String()),
			logger.Error(err),
		)
		return err
	}

	s.metrics.RecordDeployment(string(result.Status))
	s.archiveLogs(ctx, project.ID, deploymentID, result.Logs)

	s.log.Info("Deployment finished",
		logger.DeploymentID(deploymentID.String()),
		logger.ProjectID(project.ID.String()),
		logger.Status(string(result.Status)),
	)
	return nil
}

// execute runs the executor and turns every outcome, error or panic into a terminal result
func (s *ProjectService) execute(ctx context.Context, project *models.Project) (result models.DeploymentResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = failedResult(fmt.Sprintf("%v", rec))
		}
	}()

	outcome, err := s.executor.Execute(ctx, project.GitHubURL, project.Name)
	if err != nil {
		return failedResult(err.Error())
	}
	if outcome == nil {
		return failedResult("deployment executor returned no outcome")
	}

	logs := outcome.Logs
	if outcome.Success {
		return models.DeploymentResult{
			Status: models.DeploymentStatusSuccess,
			URL:    optionalString(outcome.URL),
			Logs:   &logs,
		}
	}

	errText := outcome.Error
	suggestion := s.suggest(ctx, project, errText, logs)
	return models.DeploymentResult{
		Status:       models.DeploymentStatusFailed,
		Logs:         &logs,
		Error:        optionalString(errText),
		AISuggestion: optionalString(suggestion),
	}
}

func (s *ProjectService) suggest(ctx context.Context, project *models.Project, errText, logs string) (suggestion string) {
	if errText == "" || s.advisor == nil {
		return ""
	}
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Warn("Advisor panicked", logger.Any("panic", rec))
			suggestion = ""
		}
	}()
	return s.advisor.GenerateDeploymentSuggestion(ctx, errText, logs, &service.ProjectContext{
		Name:      project.Name,
		GitHubURL: project.GitHubURL,
	})
}

// complete writes the result, retrying transient failures with linear backoff.
// A conflict means the deployment is already terminal and is not retried.
func (s *ProjectService) complete(ctx context.Context, deploymentID uuid.UUID, result models.DeploymentResult) error {
	var err error
	for attempt := 1; attempt <= s.completionAttempts; attempt++ {
		if err = s.deployments.Complete(ctx, deploymentID, result); err == nil {
			return nil
		}
		if apperrors.IsConflict(err) || apperrors.IsNotFound(err) {
			return err
		}
		if attempt < s.completionAttempts {
			s.log.Warn("Retrying deployment completion",
				logger.DeploymentID(deploymentID.String()),
				logger.Int("attempt", attempt),
				logger.Error(err),
			)
			time.Sleep(time.Duration(attempt) * s.retryBackoff)
		}
	}
	return err
}

func (s *ProjectService) archiveLogs(ctx context.Context, projectID, deploymentID uuid.UUID, logs *string) {
	if s.logStore == nil || logs == nil {
		return
	}
	key := storage.DeploymentLogKey(projectID.String(), deploymentID.String())
	if err := s.logStore.Put(ctx, key, []byte(*logs)); err != nil {
		s.log.Warn("Failed to archive deployment logs",
			logger.DeploymentID(deploymentID.String()),
			logger.Error(err),
		)
	}
}

// RefreshCommits re-mirrors upstream commits and returns what is stored afterwards
func (s *ProjectService) RefreshCommits(ctx context.Context, owner *models.User, projectID uuid.UUID) ([]*models.Commit, error) {
	project, err := s.projects.FindByIDAndOwner(ctx, projectID, owner.ID)
	if err != nil {
		return nil, err
	}

	s.mirrorCommits(ctx, project, owner.GitHubAccessToken())
	return s.commits.ListByProject(ctx, project.ID, CommitFetchLimit)
}

// Analyze asks the advisor to review the ten newest stored commits
func (s *ProjectService) Analyze(ctx context.Context, ownerID, projectID uuid.UUID) (*AnalysisResult, error) {
	project, err := s.projects.FindByIDAndOwner(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}

	commits, err := s.commits.ListByProject(ctx, project.ID, AnalysisCommitLimit)
	if err != nil {
		return nil, err
	}

	summaries := make([]service.CommitSummary, 0, len(commits))
	for _, c := range commits {
		summaries = append(summaries, service.CommitSummary{Message: c.Message, Author: c.Author})
	}

	return &AnalysisResult{
		Project:  project,
		Analysis: s.advisor.AnalyzeCommits(ctx, project.GitHubURL, summaries),
	}, nil
}

// GetDeploymentLogs returns the archived log of a deployment, falling back to the stored column
func (s *ProjectService) GetDeploymentLogs(ctx context.Context, ownerID, projectID, deploymentID uuid.UUID) (*DeploymentLog, error) {
	if _, err := s.projects.FindByIDAndOwner(ctx, projectID, ownerID); err != nil {
		return nil, err
	}

	deployment, err := s.deployments.FindByIDAndProject(ctx, deploymentID, projectID)
	if err != nil {
		return nil, err
	}

	out := &DeploymentLog{DeploymentID: deployment.ID, Status: deployment.Status}
	if s.logStore != nil {
		data, err := s.logStore.Get(ctx, storage.DeploymentLogKey(projectID.String(), deploymentID.String()))
		if err == nil {
			out.Logs = string(data)
			out.Archived = true
			return out, nil
		}
		if !apperrors.IsNotFound(err) {
			s.log.Warn("Failed to read archived logs",
				logger.DeploymentID(deploymentID.String()),
				logger.Error(err),
			)
		}
	}

	if deployment.Logs != nil {
		out.Logs = *deployment.Logs
	}
	return out, nil
}

// mirrorCommits replaces the stored commits with the upstream ones; failures are logged and swallowed
func (s *ProjectService) mirrorCommits(ctx context.Context, project *models.Project, token string) []models.Commit {
	upstream, err := s.gateway.GetCommits(ctx, project.GitHubURL, token, CommitFetchLimit)
	if err != nil {
		s.log.Warn("Failed to fetch commits",
			logger.ProjectID(project.ID.String()),
			logger.Error(err),
		)
		return nil
	}

	commits := make([]*models.Commit, 0, len(upstream))
	for _, c := range upstream {
		commits = append(commits, &models.Commit{
			SHA:       c.SHA,
			Message:   c.Message,
			Author:    c.Author,
			Date:      c.Date,
			URL:       c.URL,
			ProjectID: project.ID,
		})
	}

	if err := s.commits.ReplaceForProject(ctx, project.ID, commits); err != nil {
		s.log.Warn("Failed to store commits",
			logger.ProjectID(project.ID.String()),
			logger.Error(err),
		)
		return nil
	}

	out := make([]models.Commit, 0, len(commits))
	for _, c := range commits {
		out = append(out, *c)
	}
	return out
}

// NormalizePage applies the default page and size and caps the size
func NormalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func observedDeployment(status *service.DeploymentStatusInfo) *ObservedDeployment {
	if status == nil || status.Status == service.DeploymentStatusNone {
		return nil
	}

	observed := &ObservedDeployment{
		ID:          "github-unknown",
		Status:      strings.ToUpper(status.Status),
		URL:         optionalString(status.EnvironmentURL),
		Description: status.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if d := status.Deployment; d != nil {
		observed.ID = "github-" + strconv.FormatInt(d.ID, 10)
		observed.Environment = d.Environment
		if !d.CreatedAt.IsZero() {
			observed.CreatedAt = d.CreatedAt
		}
	}
	return observed
}

func failedResult(message string) models.DeploymentResult {
	return models.DeploymentResult{
		Status: models.DeploymentStatusFailed,
		Error:  &message,
		Logs:   &message,
	}
}

func validateProjectName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 1 || n > 100 {
		return apperrors.ValidationError("name", "name must be between 1 and 100 characters")
	}
	return nil
}

func validateRepoURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.ValidationError("githubUrl", "githubUrl must be a valid uri")
	}
	return nil
}

func validateDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > 500 {
		return apperrors.ValidationError("description", "description length must be less than or equal to 500 characters long")
	}
	return nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// upstreamText returns the user-facing message of an upstream error
func upstreamText(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
