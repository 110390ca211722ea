package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Deploy   DeployConfig   `mapstructure:"deploy"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	OTEL     OTELConfig     `mapstructure:"otel"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Mode            string `mapstructure:"mode"`        // debug, release, test
	Environment     string `mapstructure:"environment"` // development, production
	FrontendURL     string `mapstructure:"frontend_url"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	// ConnURL takes precedence over the discrete fields when set (DATABASE_URL)
	ConnURL  string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the database connection string
func (d *DatabaseConfig) DSN() string {
	if d.ConnURL != "" {
		return d.ConnURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Target describes the database for logs without exposing credentials
func (d *DatabaseConfig) Target() string {
	if d.ConnURL != "" {
		if u, err := url.Parse(d.ConnURL); err == nil {
			return u.Host + u.Path
		}
		return "database_url"
	}
	return fmt.Sprintf("%s:%d/%s", d.Host, d.Port, d.DBName)
}

// URL returns the connection string in URL form, as Atlas expects it
func (d *DatabaseConfig) URL() string {
	if d.ConnURL != "" {
		return d.ConnURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// StorageConfig holds the deployment log archive backend configuration
type StorageConfig struct {
	Type        string `mapstructure:"type"` // filesystem, s3
	BasePath    string `mapstructure:"base_path"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Region    string `mapstructure:"s3_region"`
	S3AccessKey string `mapstructure:"s3_access_key"`
	S3SecretKey string `mapstructure:"s3_secret_key"`
	S3Endpoint  string `mapstructure:"s3_endpoint"` // For S3-compatible services
	S3Prefix    string `mapstructure:"s3_prefix"`
}

// IsS3 returns true if the storage type is S3
func (s *StorageConfig) IsS3() bool {
	return strings.ToLower(s.Type) == "s3"
}

// IsFilesystem returns true if the storage type is filesystem
func (s *StorageConfig) IsFilesystem() bool {
	return strings.ToLower(s.Type) == "filesystem" || s.Type == ""
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level          string `mapstructure:"level"`  // debug, info, warn, error
	Output         string `mapstructure:"output"` // console, file, otel
	Format         string `mapstructure:"format"` // json, console
	FilePath       string `mapstructure:"file_path"`
	FileMaxSizeMB  int    `mapstructure:"file_max_size_mb"`
	FileMaxBackups int    `mapstructure:"file_max_backups"`
}

// OTELConfig holds OpenTelemetry log export configuration
type OTELConfig struct {
	Enabled     bool              `mapstructure:"enabled"`
	Endpoint    string            `mapstructure:"endpoint"`
	ServiceName string            `mapstructure:"service_name"`
	Insecure    bool              `mapstructure:"insecure"`
	UseHTTP     bool              `mapstructure:"use_http"`
	Headers     map[string]string `mapstructure:"headers"`
}

// CORSConfig holds the allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from an optional YAML file, a .env file and the environment.
// Precedence, lowest first: defaults, config file, SHIPYARD_* variables, well-known flat
// variables (PORT, DATABASE_URL, JWT_SECRET, ...).
func Load(configPath string) (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("SHIPYARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/shipyard")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	overrideFromEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.frontend_url", "http://localhost:3000")
	v.SetDefault("server.shutdown_timeout", 30)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "shipyard")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "shipyard")
	v.SetDefault("database.sslmode", "disable")

	// empty defaults register the keys so SHIPYARD_* variables reach Unmarshal
	v.SetDefault("database.url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("github.client_id", "")
	v.SetDefault("github.client_secret", "")
	v.SetDefault("github.callback_url", "http://localhost:5000/api/auth/github/callback")
	v.SetDefault("github.token", "")
	v.SetDefault("gemini.api_key", "")

	v.SetDefault("auth.token_ttl_hours", 24*7)
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("github.api_base_url", "")
	v.SetDefault("github.timeout", 15)
	v.SetDefault("github.scopes", []string{"user:email", "repo"})

	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.timeout", 30)

	v.SetDefault("deploy.success_rate", 0.7)
	v.SetDefault("deploy.domain", "your-domain.com")
	v.SetDefault("deploy.stage_delay_ms", 0)
	v.SetDefault("deploy.completion_retries", 3)
	v.SetDefault("deploy.reap_schedule", "*/5 * * * *")
	v.SetDefault("deploy.stale_after_minutes", 30)

	v.SetDefault("storage.type", "filesystem")
	v.SetDefault("storage.base_path", "./data/logs")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "console")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file_path", "./logs/shipyard.log")
	v.SetDefault("logging.file_max_size_mb", 100)
	v.SetDefault("logging.file_max_backups", 3)

	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "localhost:4317")
	v.SetDefault("otel.service_name", "shipyard")
	v.SetDefault("otel.insecure", true)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
}

// overrideFromEnv maps the flat variables used by existing deployments onto config keys
func overrideFromEnv(v *viper.Viper) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("server.port", p)
		}
	}

	for _, key := range []string{"APP_ENV", "NODE_ENV"} {
		if env := os.Getenv(key); env != "" {
			v.Set("server.environment", env)
			break
		}
	}

	flat := map[string]string{
		"FRONTEND_URL":          "server.frontend_url",
		"DATABASE_URL":          "database.url",
		"JWT_SECRET":            "auth.jwt_secret",
		"GITHUB_CLIENT_ID":      "github.client_id",
		"GITHUB_CLIENT_SECRET":  "github.client_secret",
		"GITHUB_CALLBACK_URL":   "github.callback_url",
		"GITHUB_TOKEN":          "github.token",
		"GEMINI_API_KEY":        "gemini.api_key",
		"AWS_ACCESS_KEY_ID":     "storage.s3_access_key",
		"AWS_SECRET_ACCESS_KEY": "storage.s3_secret_key",
	}
	for env, key := range flat {
		if val := os.Getenv(env); val != "" {
			v.Set(key, val)
		}
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		var list []string
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				list = append(list, o)
			}
		}
		v.Set("cors.allowed_origins", list)
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.ConnURL == "" {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required (set JWT_SECRET)")
	}

	if c.Deploy.SuccessRate < 0 || c.Deploy.SuccessRate > 1 {
		return fmt.Errorf("deploy success rate must be within [0,1], got %v", c.Deploy.SuccessRate)
	}

	if c.Deploy.StaleAfterMinutes > 0 && c.Deploy.PipelineDuration() >= c.Deploy.StaleAfter() {
		return fmt.Errorf("deploy stage delay (%s per run) must stay below stale_after_minutes (%s)",
			c.Deploy.PipelineDuration(), c.Deploy.StaleAfter())
	}

	if c.Storage.IsS3() {
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required when using S3 storage")
		}
		if c.Storage.S3Region == "" {
			return fmt.Errorf("S3 region is required when using S3 storage")
		}
	} else if c.Storage.IsFilesystem() {
		if c.Storage.BasePath == "" {
			return fmt.Errorf("storage base path is required for filesystem storage")
		}
	} else {
		return fmt.Errorf("invalid storage type: %s", c.Storage.Type)
	}

	return nil
}

// ServerAddress returns the HTTP server address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development" || c.Server.Mode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
