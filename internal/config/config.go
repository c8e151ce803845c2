// Package config handles configuration loading for the Gaus Thesis
// service. It supports YAML config files with environment variable
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"      yaml:"llm"`
	Sources  SourcesConfig  `mapstructure:"sources"  yaml:"sources"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// LLMConfig holds completion service configuration.
type LLMConfig struct {
	AnthropicKey string  `mapstructure:"anthropic_key" yaml:"anthropic_key"`
	Model        string  `mapstructure:"model"         yaml:"model"`
	Temperature  float64 `mapstructure:"temperature"   yaml:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"    yaml:"max_tokens"`
	TimeoutSec   int     `mapstructure:"timeout_sec"   yaml:"timeout_sec"`
}

// SourcesConfig holds external data source settings.
type SourcesConfig struct {
	CuratedFeeds    []string `mapstructure:"curated_feeds"     yaml:"curated_feeds"`
	SocialBearer    string   `mapstructure:"social_bearer"     yaml:"social_bearer"`
	SocialMaxPosts  int      `mapstructure:"social_max_posts"  yaml:"social_max_posts"`
	FetchTimeoutSec int      `mapstructure:"fetch_timeout_sec" yaml:"fetch_timeout_sec"`
}

// AnalysisConfig holds budget and scoring settings.
type AnalysisConfig struct {
	MaxNewsItems   int `mapstructure:"max_news_items"   yaml:"max_news_items"`
	MaxSocialPosts int `mapstructure:"max_social_posts" yaml:"max_social_posts"`
	MinNewsItems   int `mapstructure:"min_news_items"   yaml:"min_news_items"`
	SurgeBaseline  int `mapstructure:"surge_baseline"   yaml:"surge_baseline"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // "debug", "info", "warn", "error"
}

// DefaultCuratedFeeds lists the publisher RSS feeds queried when the
// config does not override them.
var DefaultCuratedFeeds = []string{
	"https://www.reutersagency.com/feed/?taxonomy=best-topics&post_type=best",
	"https://www.reuters.com/rssFeed/businessNews",
	"https://www.reuters.com/rssFeed/technologyNews",
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.gausthesis/config.yaml (home directory)
//  3. /etc/gausthesis/config.yaml (system)
//
// Environment variables override config file values.
// Format: GAUSTHESIS_<SECTION>_<KEY>, e.g., GAUSTHESIS_LLM_ANTHROPIC_KEY
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".gausthesis"))
	v.AddConfigPath("/etc/gausthesis")

	v.SetEnvPrefix("GAUSTHESIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("GAUSTHESIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// LLM defaults
	v.SetDefault("llm.model", "claude-3-5-sonnet-20241022")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 600)
	v.SetDefault("llm.timeout_sec", 60)

	// Source defaults
	v.SetDefault("sources.curated_feeds", DefaultCuratedFeeds)
	// Hard cap on social posts per request: the recent-search quota is
	// a scarce monthly budget, not a per-request choice.
	v.SetDefault("sources.social_max_posts", 1)
	v.SetDefault("sources.fetch_timeout_sec", 15)

	// Analysis defaults
	v.SetDefault("analysis.max_news_items", 10)
	v.SetDefault("analysis.max_social_posts", 1)
	v.SetDefault("analysis.min_news_items", 3)
	v.SetDefault("analysis.surge_baseline", 500)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
}

// overrideFromEnv explicitly reads sensitive keys from environment
// variables, including the unprefixed names the deployment platform
// sets.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("GAUSTHESIS_LLM_ANTHROPIC_KEY"); key != "" {
		cfg.LLM.AnthropicKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && cfg.LLM.AnthropicKey == "" {
		cfg.LLM.AnthropicKey = key
	}
	if key := os.Getenv("GAUSTHESIS_SOURCES_SOCIAL_BEARER"); key != "" {
		cfg.Sources.SocialBearer = key
	}
	if key := os.Getenv("X_BEARER"); key != "" && cfg.Sources.SocialBearer == "" {
		cfg.Sources.SocialBearer = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
