package config

import "time"

// AuthConfig holds session token and password hashing settings
type AuthConfig struct {
	// JWTSecret signs session tokens (JWT_SECRET)
	JWTSecret string `mapstructure:"jwt_secret"`

	// TokenTTLHours is the session token lifetime, seven days by default
	TokenTTLHours int `mapstructure:"token_ttl_hours"`

	// BcryptCost is the bcrypt work factor for new password hashes
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// TokenTTL returns the session lifetime as a time.Duration
func (a *AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// GitHubConfig holds OAuth application and REST API settings
type GitHubConfig struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	CallbackURL  string   `mapstructure:"callback_url"`
	Scopes       []string `mapstructure:"scopes"`

	// Token is a server-wide API token used when a user has none
	Token string `mapstructure:"token"`

	// APIBaseURL overrides https://api.github.com/ (GitHub Enterprise, tests)
	APIBaseURL string `mapstructure:"api_base_url"`

	// TimeoutSeconds bounds every REST call
	TimeoutSeconds int `mapstructure:"timeout"`
}

// OAuthConfigured reports whether GitHub login can be offered
func (g *GitHubConfig) OAuthConfigured() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// Timeout returns the timeout as a time.Duration
func (g *GitHubConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// GeminiConfig holds generative-text API settings
type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout"`
}

// IsConfigured returns true if an API key is present
func (g *GeminiConfig) IsConfigured() bool {
	return g.APIKey != ""
}

// Timeout returns the timeout as a time.Duration
func (g *GeminiConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// SimulatedStages is the number of paused stages in one simulated deployment
const SimulatedStages = 8

// DeployConfig tunes the simulated deployment executor
type DeployConfig struct {
	// SuccessRate is the probability that a simulated deployment succeeds
	SuccessRate float64 `mapstructure:"success_rate"`

	// Domain is appended to the project slug to form the deployment URL
	Domain string `mapstructure:"domain"`

	// StageDelayMS pauses between simulated log stages
	StageDelayMS int `mapstructure:"stage_delay_ms"`

	// CompletionRetries is how many times the terminal status write is attempted
	CompletionRetries int `mapstructure:"completion_retries"`

	// ReapSchedule is the cron spec of the stuck-deployment check
	ReapSchedule string `mapstructure:"reap_schedule"`

	// StaleAfterMinutes is how long a deployment may stay non-terminal
	StaleAfterMinutes int `mapstructure:"stale_after_minutes"`
}

// StageDelay returns the pause between stages as a time.Duration
func (d *DeployConfig) StageDelay() time.Duration {
	if d.StageDelayMS <= 0 {
		return 0
	}
	return time.Duration(d.StageDelayMS) * time.Millisecond
}

// PipelineDuration is the shortest time one simulated deployment takes
func (d *DeployConfig) PipelineDuration() time.Duration {
	return SimulatedStages * d.StageDelay()
}

// StaleAfter returns the stale threshold as a time.Duration
func (d *DeployConfig) StaleAfter() time.Duration {
	return time.Duration(d.StaleAfterMinutes) * time.Minute
}
