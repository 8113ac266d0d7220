package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env       string    `mapstructure:"env"` // current application environment (local, dev, prod etc)
	HTTP      HTTP      `mapstructure:"http"`
	DB        DB        `mapstructure:"database"`
	Cache     Cache     `mapstructure:"cache"`
	OpenAI    OpenAI    `mapstructure:"openai"`
	Generator Generator `mapstructure:"generator"`
}

// HTTP contains the API server parameters.
type HTTP struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Cache bounds the in-process daily quiz cache.
type Cache struct {
	Size int `mapstructure:"size"` // number of dates kept in the LRU
}

// OpenAI contains the content generation provider credentials.
type OpenAI struct {
	APIKey string `mapstructure:"-"` // loaded from environment
	Model  string `mapstructure:"model"`
}

// Generator contains the batch generation scheduler parameters.
type Generator struct {
	Enabled        bool          `mapstructure:"enabled"`
	Schedule       string        `mapstructure:"schedule"` // cron expression
	TargetCoverage int           `mapstructure:"target_coverage"`
	ScanLimit      int           `mapstructure:"scan_limit"`
	SubBatchSize   int           `mapstructure:"sub_batch_size"`
	PerVerse       int           `mapstructure:"per_verse"`
	BatchDelay     time.Duration `mapstructure:"batch_delay"`
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("cache.size", 32)
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("generator.enabled", false)
	v.SetDefault("generator.schedule", "0 3 * * *")
	v.SetDefault("generator.target_coverage", 2)
	v.SetDefault("generator.scan_limit", 50)
	v.SetDefault("generator.sub_batch_size", 5)
	v.SetDefault("generator.per_verse", 2)
	v.SetDefault("generator.batch_delay", "5s")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("env", "APP_ENV")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Sensitive values come only from the environment.
	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.OpenAI.APIKey = v.GetString("openai_api_key")
	if cfg.Generator.Enabled && cfg.OpenAI.APIKey == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	return &cfg, nil
}
