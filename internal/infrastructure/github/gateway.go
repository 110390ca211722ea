// Package github implements the repository gateway over the GitHub REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/bravo68web/shipyard/internal/config"
	"github.com/bravo68web/shipyard/internal/domain/service"
	apperrors "github.com/bravo68web/shipyard/pkg/errors"
	"github.com/bravo68web/shipyard/pkg/logger"
)

// DefaultCommitLimit is used when GetCommits is called with a non-positive limit
const DefaultCommitLimit = 20

var repoURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)

// ParseRepoURL extracts the owner and repository name from a GitHub URL
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	match := repoURLPattern.FindStringSubmatch(strings.TrimSpace(repoURL))
	if match == nil {
		return "", "", apperrors.ValidationError("githubUrl", "Invalid GitHub URL format")
	}
	return match[1], match[2], nil
}

// Gateway is a service.RepositoryGateway backed by go-github
type Gateway struct {
	baseURL      *url.URL
	timeout      time.Duration
	defaultToken string
	log          *logger.Logger
}

// NewGateway creates a gateway from the GitHub configuration
func NewGateway(cfg *config.GitHubConfig) (*Gateway, error) {
	g := &Gateway{
		timeout:      cfg.Timeout(),
		defaultToken: cfg.Token,
		log:          logger.Get().WithFields(logger.Component("github-gateway")),
	}

	if cfg.APIBaseURL != "" {
		base := cfg.APIBaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid github api base url: %w", err)
		}
		g.baseURL = u
	}

	return g, nil
}

// client builds a REST client for token. An empty token falls back to the
// server token, and without one requests are unauthenticated.
func (g *Gateway) client(ctx context.Context, token string) *gh.Client {
	if token == "" {
		token = g.defaultToken
	}

	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	client := gh.NewClient(httpClient)
	if g.baseURL != nil {
		client.BaseURL = g.baseURL
	}
	return client
}

// GetRepositoryInfo fetches repository metadata
func (g *Gateway) GetRepositoryInfo(ctx context.Context, repoURL, token string) (*service.RepositoryInfo, error) {
	owner, name, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	repo, _, err := g.client(ctx, token).Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, apperrors.Upstream(fmt.Sprintf("Failed to fetch repository info: %s", upstreamMessage(err)), err)
	}

	return &service.RepositoryInfo{
		ID:            repo.GetID(),
		Name:          repo.GetName(),
		FullName:      repo.GetFullName(),
		Description:   repo.GetDescription(),
		HTMLURL:       repo.GetHTMLURL(),
		DefaultBranch: repo.GetDefaultBranch(),
		Private:       repo.GetPrivate(),
	}, nil
}

// GetCommits fetches up to limit of the most recent commits on the default branch
func (g *Gateway) GetCommits(ctx context.Context, repoURL, token string, limit int) ([]service.CommitInfo, error) {
	owner, name, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultCommitLimit
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	commits, _, err := g.client(ctx, token).Repositories.ListCommits(ctx, owner, name, &gh.CommitsListOptions{
		ListOptions: gh.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, apperrors.Upstream(fmt.Sprintf("Failed to fetch commits: %s", upstreamMessage(err)), err)
	}

	result := make([]service.CommitInfo, 0, len(commits))
	for _, c := range commits {
		if len(result) == limit {
			break
		}
		author := c.GetCommit().GetAuthor()
		result = append(result, service.CommitInfo{
			SHA:     c.GetSHA(),
			Message: c.GetCommit().GetMessage(),
			Author:  author.GetName(),
			Date:    author.GetDate().Time,
			URL:     c.GetHTMLURL(),
		})
	}

	g.log.Debug("Fetched commits",
		logger.RepoURL(repoURL),
		logger.Int("count", len(result)),
	)
	return result, nil
}

// HasAccess reports whether token can read the repository
func (g *Gateway) HasAccess(ctx context.Context, repoURL, token string) (bool, error) {
	owner, name, err := ParseRepoURL(repoURL)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	_, _, err = g.client(ctx, token).Repositories.Get(ctx, owner, name)
	if err == nil {
		return true, nil
	}

	switch statusCode(err) {
	case http.StatusForbidden, http.StatusNotFound:
		return false, nil
	}
	return false, apperrors.Upstream(fmt.Sprintf("Failed to fetch repository info: %s", upstreamMessage(err)), err)
}

// GetDeploymentStatus fetches the latest GitHub deployment and its newest status
func (g *Gateway) GetDeploymentStatus(ctx context.Context, repoURL, token string) (*service.DeploymentStatusInfo, error) {
	owner, name, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client := g.client(ctx, token)
	deployments, _, err := client.Repositories.ListDeployments(ctx, owner, name, &gh.DeploymentsListOptions{
		ListOptions: gh.ListOptions{PerPage: 1},
	})
	if err != nil {
		return nil, apperrors.Upstream(fmt.Sprintf("Failed to fetch deployment status: %s", upstreamMessage(err)), err)
	}
	if len(deployments) == 0 {
		return &service.DeploymentStatusInfo{Status: service.DeploymentStatusNone}, nil
	}

	latest := deployments[0]
	info := &service.DeploymentStatusInfo{
		Status: service.DeploymentStatusUnknown,
		Deployment: &service.ExternalDeployment{
			ID:          latest.GetID(),
			Environment: latest.GetEnvironment(),
			Ref:         latest.GetRef(),
			SHA:         latest.GetSHA(),
			CreatedAt:   latest.GetCreatedAt().Time,
		},
	}

	statuses, _, err := client.Repositories.ListDeploymentStatuses(ctx, owner, name, latest.GetID(), &gh.ListOptions{PerPage: 1})
	if err != nil {
		return nil, apperrors.Upstream(fmt.Sprintf("Failed to fetch deployment status: %s", upstreamMessage(err)), err)
	}
	if len(statuses) > 0 && statuses[0].GetState() != "" {
		info.Status = statuses[0].GetState()
		info.Description = statuses[0].GetDescription()
		info.EnvironmentURL = statuses[0].GetEnvironmentURL()
	}

	return info, nil
}

// statusCode returns the HTTP status of a go-github error, or 0
func statusCode(err error) int {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return rateErr.Response.StatusCode
	}
	return 0
}

// upstreamMessage prefers GitHub's own message over the full request dump
func upstreamMessage(err error) string {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Message != "" {
		if errResp.Response != nil {
			return fmt.Sprintf("%d %s", errResp.Response.StatusCode, errResp.Message)
		}
		return errResp.Message
	}
	return err.Error()
}
