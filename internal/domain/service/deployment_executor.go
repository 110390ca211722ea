package service

import "context"

// DeploymentOutcome is the two-way result of a deployment run
type DeploymentOutcome struct {
	Success bool
	URL     string
	Logs    string
	Error   string
}

// DeploymentExecutor runs a build-and-deploy for a repository
type DeploymentExecutor interface {
	// Execute runs to completion and reports success or failure in the outcome.
	// A returned error means the executor itself broke, not that the deployment failed.
	Execute(ctx context.Context, repoURL, projectName string) (*DeploymentOutcome, error)
}
