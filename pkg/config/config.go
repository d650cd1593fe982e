package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for advisor-engine.
// Configuration can come from a YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// AllowedOriginsStr is a comma-separated CORS allowlist for the browser UI.
	AllowedOriginsStr string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-default:"http://localhost:3000"`

	// AllowedOrigins is the parsed form of AllowedOriginsStr (not from config file).
	AllowedOrigins []string `yaml:"-"`

	// StreamWordDelayMS is the pause between words on the SSE streaming endpoint.
	// Zero disables pacing.
	StreamWordDelayMS int `yaml:"stream_word_delay_ms" env:"STREAM_WORD_DELAY_MS" env-default:"100"`

	// Database is the application database (chat history, insights).
	Database DatabaseConfig `yaml:"database"`

	// Warehouse is the analyzed database: the live schema the advisor
	// discovers tables in and runs aggregate queries against. It may be the
	// same server as Database or a different one entirely.
	Warehouse WarehouseConfig `yaml:"warehouse"`

	// Redis backs the active-session registry. Optional: leave host empty to
	// run without it.
	Redis RedisConfig `yaml:"redis"`

	// LLM configures the reasoning capability used during discovery.
	LLM LLMConfig `yaml:"llm"`

	// Fraud configures the transaction scan thresholds.
	Fraud FraudConfig `yaml:"fraud"`

	// Retention configures chat-history cleanup.
	Retention RetentionConfig `yaml:"retention"`
}

// DatabaseConfig holds PostgreSQL configuration for the application database.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"advisor"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"advisor_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// WarehouseConfig holds PostgreSQL configuration for the analyzed warehouse.
type WarehouseConfig struct {
	Host           string `yaml:"host" env:"WAREHOUSE_HOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"WAREHOUSE_PORT" env-default:"5432"`
	User           string `yaml:"user" env:"WAREHOUSE_USER" env-default:"advisor"`
	Password       string `yaml:"-" env:"WAREHOUSE_PASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"WAREHOUSE_DATABASE" env-default:"sales"`
	MaxConnections int32  `yaml:"max_connections" env:"WAREHOUSE_MAX_CONNECTIONS" env-default:"10"`
	SSLMode        string `yaml:"ssl_mode" env:"WAREHOUSE_SSLMODE" env-default:"disable"`
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// LLMConfig holds settings for the reasoning model.
type LLMConfig struct {
	// Provider selects the client implementation: "openai" or "anthropic".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	// BaseURL overrides the provider's default endpoint (e.g. a local
	// OpenAI-compatible server). Empty uses the provider default.
	BaseURL   string `yaml:"base_url" env:"LLM_BASE_URL" env-default:""`
	Model     string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	APIKey    string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	MaxTokens int    `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"1024"`
}

// FraudConfig holds thresholds for the transaction scan.
type FraudConfig struct {
	// AmountThreshold flags individual transactions above this value.
	AmountThreshold float64 `yaml:"amount_threshold" env:"FRAUD_AMOUNT_THRESHOLD" env-default:"100000"`
	// MaxDailyTransactions flags users exceeding this many transactions in a day.
	MaxDailyTransactions int `yaml:"max_daily_transactions" env:"FRAUD_MAX_DAILY_TRANSACTIONS" env-default:"5"`
}

// RetentionConfig holds chat-history cleanup settings.
type RetentionConfig struct {
	// ChatHistoryDays is how long chat messages are kept. Zero disables cleanup.
	ChatHistoryDays int `yaml:"chat_history_days" env:"RETENTION_CHAT_HISTORY_DAYS" env-default:"90"`
	// Schedule is a cron expression for when cleanup runs.
	Schedule string `yaml:"schedule" env:"RETENTION_SCHEDULE" env-default:"0 3 * * *"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// If config.yaml does not exist, configuration comes from the environment alone.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.AllowedOrigins = splitAndTrim(cfg.AllowedOriginsStr)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// validate rejects configurations that cannot produce a working process.
func (c *Config) validate() error {
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("llm provider must be openai or anthropic, got %q", c.LLM.Provider)
	}

	if c.Retention.ChatHistoryDays < 0 {
		return fmt.Errorf("retention chat_history_days must not be negative")
	}
	if c.StreamWordDelayMS < 0 {
		return fmt.Errorf("stream_word_delay_ms must not be negative")
	}
	return nil
}

// splitAndTrim parses a comma-separated list, dropping empty entries.
func splitAndTrim(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ConnectionString returns a PostgreSQL connection string for the application database.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// ConnectionString returns a PostgreSQL connection string for the warehouse.
// The warehouse is an external service from the engine's point of view, so
// localhost-style hosts are remapped when running inside Docker.
func (c *WarehouseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		ResolveHostForDocker(c.Host), c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
