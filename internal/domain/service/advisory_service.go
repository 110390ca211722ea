package service

import "context"

// ProjectContext is optional project metadata included in a suggestion prompt
type ProjectContext struct {
	Name      string `json:"name"`
	GitHubURL string `json:"githubUrl"`
}

// CommitSummary is the commit data included in an analysis prompt
type CommitSummary struct {
	Message string
	Author  string
}

// AdvisoryService produces free-form troubleshooting and review text.
// Implementations never fail: on any error they return a fixed fallback message.
type AdvisoryService interface {
	// GenerateDeploymentSuggestion explains a failed deployment and proposes fixes
	GenerateDeploymentSuggestion(ctx context.Context, errorText, logs string, project *ProjectContext) string

	// AnalyzeCommits reviews recent commits for deployment risks and code quality concerns
	AnalyzeCommits(ctx context.Context, repoURL string, commits []CommitSummary) string
}
