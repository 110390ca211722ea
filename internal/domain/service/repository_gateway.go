package service

import (
	"context"
	"time"
)

// DeploymentStatusNone is reported when a repository has no GitHub deployments
const DeploymentStatusNone = "no_deployments"

// DeploymentStatusUnknown is reported when the latest deployment has no statuses yet
const DeploymentStatusUnknown = "unknown"

// RepositoryInfo is the subset of repository metadata the workflow uses
type RepositoryInfo struct {
	ID            int64
	Name          string
	FullName      string
	Description   string
	HTMLURL       string
	DefaultBranch string
	Private       bool
}

// CommitInfo is one upstream commit
type CommitInfo struct {
	SHA     string
	Message string
	Author  string
	Date    time.Time
	URL     string
}

// DeploymentStatusInfo describes the latest GitHub deployment of a repository
type DeploymentStatusInfo struct {
	// Status is the latest deployment state, DeploymentStatusNone or DeploymentStatusUnknown
	Status         string
	Deployment     *ExternalDeployment
	Description    string
	EnvironmentURL string
}

// ExternalDeployment is a deployment recorded on GitHub rather than by this service
type ExternalDeployment struct {
	ID          int64
	Environment string
	Ref         string
	SHA         string
	CreatedAt   time.Time
}

// RepositoryGateway talks to the source-hosting API on behalf of a user.
// token may be empty, in which case calls are made unauthenticated.
type RepositoryGateway interface {
	// GetRepositoryInfo fetches repository metadata
	GetRepositoryInfo(ctx context.Context, repoURL, token string) (*RepositoryInfo, error)

	// GetCommits fetches up to limit of the most recent commits
	GetCommits(ctx context.Context, repoURL, token string, limit int) ([]CommitInfo, error)

	// HasAccess reports whether token can read the repository.
	// A 403 or 404 from upstream is a false result, not an error.
	HasAccess(ctx context.Context, repoURL, token string) (bool, error)

	// GetDeploymentStatus fetches the latest deployment and its most recent status
	GetDeploymentStatus(ctx context.Context, repoURL, token string) (*DeploymentStatusInfo, error)
}

// GitHubProfile is the identity of the user behind an OAuth access token
type GitHubProfile struct {
	ID        int64
	Login     string
	Name      string
	Email     string
	AvatarURL string
}

// IdentityProvider resolves the account that owns an access token
type IdentityProvider interface {
	// GetAuthenticatedUser returns the profile of the token owner, including
	// the primary verified email when the public profile has none
	GetAuthenticatedUser(ctx context.Context, token string) (*GitHubProfile, error)
}
