package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Scraper   ScraperConfig
	LLM       LLMConfig
	Store     StoreConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ScraperConfig holds product page extraction configuration.
type ScraperConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxBodySize int64         `mapstructure:"max_body_size"`
	UserAgent   string        `mapstructure:"user_agent"`
}

// LLMConfig holds inference API configuration. BaseURL points at any
// OpenAI-compatible chat-completions endpoint.
type LLMConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute float64       `mapstructure:"requests_per_minute"`
}

// StoreConfig holds saved product persistence configuration.
type StoreConfig struct {
	Type          string `mapstructure:"type"` // "memory" or "mongo"
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
}

// AuthConfig holds token verification configuration.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// RateLimitConfig holds per-client rate limiting configuration.
type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	Burst     int `mapstructure:"burst"`
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/buybuddy/")

	v.SetEnvPrefix("BUYBUDDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults suffice without it.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("scraper.timeout", "15s")
	v.SetDefault("scraper.max_body_size", 5*1024*1024)
	v.SetDefault("scraper.user_agent", "BuyBuddy/1.0 (+https://buybuddy.app)")

	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.requests_per_minute", 60)

	v.SetDefault("store.type", "memory")
	v.SetDefault("store.mongo_database", "buybuddy")

	v.SetDefault("ratelimit.per_minute", 100)
	v.SetDefault("ratelimit.burst", 20)
}

// validate validates the configuration.
func validate(config *Config) error {
	if config.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key is required (set BUYBUDDY_LLM_API_KEY)")
	}

	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required (set BUYBUDDY_AUTH_JWT_SECRET)")
	}

	if config.Store.Type != "memory" && config.Store.Type != "mongo" {
		return fmt.Errorf("store type must be 'memory' or 'mongo', got: %s", config.Store.Type)
	}

	if config.Store.Type == "mongo" && config.Store.MongoURI == "" {
		return fmt.Errorf("Mongo URI is required when store type is 'mongo'")
	}

	return nil
}
