package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"3306"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"pitchside"`

	CacheDir             string        `envconfig:"CACHE_DIR" default:"data/scraped_news"`
	CacheTTL             time.Duration `envconfig:"CACHE_TTL" default:"30m"`
	RateLimitInterval    time.Duration `envconfig:"RATE_LIMIT_INTERVAL" default:"3s"`
	RequestTimeout       time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	FetchRetries         int           `envconfig:"FETCH_RETRIES" default:"1"`
	MaxArticlesPerSource int           `envconfig:"MAX_ARTICLES_PER_SOURCE" default:"20"`
	SuffixWindow         int           `envconfig:"SUFFIX_WINDOW" default:"16"`
	UserAgent            string        `envconfig:"USER_AGENT" default:"pitchside/1.0 (football news research)"`

	SourcesFile string `envconfig:"SOURCES_FILE"`
	TeamsFile   string `envconfig:"TEAMS_FILE"`

	OpenAIKey   string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBase  string `envconfig:"OPENAI_BASE_URL"`
}

// Error reports a fatal configuration problem. Nothing touches the
// network or the store once one has been returned.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}

// Load reads environment variables, filling in defaults, and validates
// the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &Error{Key: "env", Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.CacheTTL <= 0 {
		return &Error{Key: "CACHE_TTL", Reason: "must be > 0"}
	}
	if c.RateLimitInterval < 0 {
		return &Error{Key: "RATE_LIMIT_INTERVAL", Reason: "must be >= 0"}
	}
	if c.RequestTimeout <= 0 {
		return &Error{Key: "REQUEST_TIMEOUT", Reason: "must be > 0"}
	}
	if c.FetchRetries < 0 {
		return &Error{Key: "FETCH_RETRIES", Reason: "must be >= 0"}
	}
	if c.MaxArticlesPerSource < 1 {
		return &Error{Key: "MAX_ARTICLES_PER_SOURCE", Reason: "must be >= 1"}
	}
	if c.SuffixWindow < 1 {
		return &Error{Key: "SUFFIX_WINDOW", Reason: "must be >= 1"}
	}
	if strings.TrimSpace(c.CacheDir) == "" {
		return &Error{Key: "CACHE_DIR", Reason: "is required"}
	}
	return nil
}

// RequireStore checks the credentials needed to reach MySQL. Commands that
// persist anything call it before their first network request.
func (c *Config) RequireStore() error {
	if strings.TrimSpace(c.DBHost) == "" {
		return &Error{Key: "DB_HOST", Reason: "is required"}
	}
	if strings.TrimSpace(c.DBUser) == "" {
		return &Error{Key: "DB_USER", Reason: "is required"}
	}
	if strings.TrimSpace(c.DBName) == "" {
		return &Error{Key: "DB_NAME", Reason: "is required"}
	}
	if c.DBPort < 1 || c.DBPort > 65535 {
		return &Error{Key: "DB_PORT", Reason: fmt.Sprintf("%d is out of range", c.DBPort)}
	}
	return nil
}

// DSN builds the go-sql-driver/mysql connection string. An empty database
// name yields a server-level DSN used for bootstrap.
func (c *Config) DSN(database string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, database)
}
