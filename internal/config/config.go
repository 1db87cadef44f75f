// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel             string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr             string        `mapstructure:"HTTP_ADDR"`
	DBURL                string        `mapstructure:"DB_URL"`
	GithubToken          string        `mapstructure:"GITHUB_TOKEN"`
	GithubAPIBaseURL     string        `mapstructure:"GITHUB_API_BASE_URL"`
	GithubSearchEndpoint string        `mapstructure:"GITHUB_SEARCH_ENDPOINT"`
	GithubHTTPTimeout    time.Duration `mapstructure:"GITHUB_HTTP_TIMEOUT"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("GITHUB_API_BASE_URL", "https://api.github.com")
	viper.SetDefault("GITHUB_SEARCH_ENDPOINT", "/search/repositories")
	viper.SetDefault("GITHUB_HTTP_TIMEOUT", "10s")

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables. AutomaticEnv alone does not surface
	// env-only keys through Unmarshal, so every key is bound explicitly.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range []string{
		"LOG_LEVEL",
		"HTTP_ADDR",
		"DB_URL",
		"GITHUB_TOKEN",
		"GITHUB_API_BASE_URL",
		"GITHUB_SEARCH_ENDPOINT",
		"GITHUB_HTTP_TIMEOUT",
	} {
		_ = viper.BindEnv(key)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate required fields. The GitHub token is optional: unauthenticated
	// search works, just with a lower rate limit.
	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is a required configuration field")
	}
	if cfg.GithubAPIBaseURL == "" {
		return nil, errors.New("GITHUB_API_BASE_URL must not be empty")
	}
	if cfg.GithubHTTPTimeout <= 0 {
		return nil, errors.New("GITHUB_HTTP_TIMEOUT must be a positive duration")
	}

	return &cfg, nil
}
