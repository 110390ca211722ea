// Package gemini implements the advisory text generator over the Gemini
// generateContent REST endpoint.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bravo68web/shipyard/internal/config"
	"github.com/bravo68web/shipyard/internal/domain/service"
	"github.com/bravo68web/shipyard/internal/observability"
	"github.com/bravo68web/shipyard/pkg/logger"
)

const (
	// SuggestionFallback is returned whenever a deployment suggestion cannot be generated
	SuggestionFallback = "Unable to generate suggestions at this time. Please check your deployment logs manually."

	// AnalysisFallback is returned whenever a commit analysis cannot be generated
	AnalysisFallback = "Unable to analyze code at this time."
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Advisor is a service.AdvisoryService that never returns an error
type Advisor struct {
	config  *config.GeminiConfig
	client  *resty.Client
	metrics *observability.Metrics
	log     *logger.Logger
}

// NewAdvisor creates a Gemini-backed advisor. metrics may be nil.
func NewAdvisor(cfg *config.GeminiConfig, metrics *observability.Metrics) *Advisor {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout()).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json")

	return &Advisor{
		config:  cfg,
		client:  client,
		metrics: metrics,
		log:     logger.Get().WithFields(logger.Component("gemini-advisor")),
	}
}

// GenerateDeploymentSuggestion asks for troubleshooting steps for a failed deployment
func (a *Advisor) GenerateDeploymentSuggestion(ctx context.Context, errorText, logs string, project *service.ProjectContext) string {
	text, err := a.generate(ctx, suggestionPrompt(errorText, logs, project))
	if err != nil {
		a.log.Warn("Deployment suggestion unavailable, using fallback", logger.Error(err))
		a.metrics.RecordAdvisorFallback("suggestion")
		return SuggestionFallback
	}
	return text
}

// AnalyzeCommits asks for a deployment-risk review of recent commits
func (a *Advisor) AnalyzeCommits(ctx context.Context, repoURL string, commits []service.CommitSummary) string {
	text, err := a.generate(ctx, analysisPrompt(repoURL, commits))
	if err != nil {
		a.log.Warn("Commit analysis unavailable, using fallback",
			logger.RepoURL(repoURL),
			logger.Error(err),
		)
		a.metrics.RecordAdvisorFallback("analysis")
		return AnalysisFallback
	}
	return text
}

// generate sends prompt to the model and returns the concatenated text of the first candidate
func (a *Advisor) generate(ctx context.Context, prompt string) (string, error) {
	if !a.config.IsConfigured() {
		return "", fmt.Errorf("gemini api key is not configured")
	}

	var result generateResponse
	var apiErr errorResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetPathParam("model", a.config.Model).
		SetQueryParam("key", a.config.APIKey).
		SetBody(generateRequest{
			Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if resp.IsError() {
		if apiErr.Error.Message != "" {
			return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode(), apiErr.Error.Message)
		}
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode())
	}

	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty candidate")
	}
	return text, nil
}

func suggestionPrompt(errorText, logs string, project *service.ProjectContext) string {
	var sb strings.Builder
	sb.WriteString("You are a DevOps expert helping to troubleshoot deployment issues.\n\n")
	sb.WriteString("Deployment Error:\n")
	sb.WriteString(errorText)
	sb.WriteString("\n\nDeployment Logs:\n")
	sb.WriteString(logs)
	sb.WriteString("\n\n")

	if project != nil {
		if info, err := json.MarshalIndent(project, "", "  "); err == nil {
			sb.WriteString("Project Info: ")
			sb.Write(info)
			sb.WriteString("\n\n")
		}
	}

	sb.WriteString("Please provide:\n")
	sb.WriteString("1. Root cause analysis\n")
	sb.WriteString("2. Step-by-step solution\n")
	sb.WriteString("3. Prevention strategies\n")
	sb.WriteString("4. Best practices recommendations\n\n")
	sb.WriteString("Format your response in clear, actionable steps.")
	return sb.String()
}

func analysisPrompt(repoURL string, commits []service.CommitSummary) string {
	lines := make([]string, 0, len(commits))
	for _, c := range commits {
		lines = append(lines, fmt.Sprintf("- %s (%s)", c.Message, c.Author))
	}

	var sb strings.Builder
	sb.WriteString("Analyze this repository and recent commits for potential deployment issues:\n\n")
	sb.WriteString("Repository: ")
	sb.WriteString(repoURL)
	sb.WriteString("\n\nRecent commits:\n")
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n\nProvide insights on:\n")
	sb.WriteString("1. Potential deployment issues\n")
	sb.WriteString("2. Code quality concerns\n")
	sb.WriteString("3. Best practices recommendations\n")
	sb.WriteString("4. Suggested improvements\n\n")
	sb.WriteString("Keep the response concise and actionable.")
	return sb.String()
}
