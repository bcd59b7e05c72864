package app

import (
	"errors"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Goal sources, in selection order.
const (
	GoalSourceFile     = "file"
	GoalSourcePostgres = "postgres"
	GoalSourceREST     = "rest"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	Port              string        `envconfig:"PORT" default:"3000"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	OmieAppKey    string        `envconfig:"OMIE_APP_KEY" required:"true"`
	OmieAppSecret string        `envconfig:"OMIE_APP_SECRET" required:"true"`
	OmieBaseURL   string        `envconfig:"OMIE_BASE_URL" default:"https://app.omie.com.br/api/v1"`
	OmieTimeout   time.Duration `envconfig:"OMIE_TIMEOUT" default:"30s"`

	SupabaseURL        string        `envconfig:"SUPABASE_URL"`
	SupabaseServiceKey string        `envconfig:"SUPABASE_SERVICE_KEY"`
	GoalsPGDSN         string        `envconfig:"GOALS_PG_DSN"`
	GoalsFile          string        `envconfig:"GOALS_FILE"`
	GoalsTimeout       time.Duration `envconfig:"GOALS_TIMEOUT" default:"15s"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	RateLimitPerMinute int      `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invoicing credentials and that a goal source exists.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OmieAppKey) == "" || strings.TrimSpace(c.OmieAppSecret) == "" {
		return errors.New("omie app key and secret must be provided")
	}
	if c.GoalSource() == "" {
		return errors.New("a goal source must be configured: GOALS_FILE, GOALS_PG_DSN or SUPABASE_URL with SUPABASE_SERVICE_KEY")
	}
	if c.RateLimitPerMinute < 0 {
		return errors.New("rate limit per minute must not be negative")
	}
	return nil
}

// GoalSource names the goal store to use. A file wins over a DSN, which
// wins over the REST endpoint. Empty means none is configured.
func (c *Config) GoalSource() string {
	switch {
	case strings.TrimSpace(c.GoalsFile) != "":
		return GoalSourceFile
	case strings.TrimSpace(c.GoalsPGDSN) != "":
		return GoalSourcePostgres
	case strings.TrimSpace(c.SupabaseURL) != "" && strings.TrimSpace(c.SupabaseServiceKey) != "":
		return GoalSourceREST
	default:
		return ""
	}
}

// Addr returns the listen address derived from Port.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
