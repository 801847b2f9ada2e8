// Package config loads settings from a YAML file plus environment
// variables. Secrets live only in the environment; the YAML file carries
// tunable, committable settings.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	Brand    BrandConfig    `yaml:"brand"`
	Feed     FeedConfig     `yaml:"feed"`
	Classify ClassifyConfig `yaml:"classify"`
	Report   ReportConfig   `yaml:"report"`
	Storage  StorageConfig  `yaml:"storage"`

	// Secrets, environment only.
	BearerToken     string `yaml:"-"`
	AnthropicAPIKey string `yaml:"-"`
	SlackWebhookURL string `yaml:"-"`
	SlackBotToken   string `yaml:"-"`
	SlackChannelID  string `yaml:"-"`
	SlackMentionID  string `yaml:"-"`
}

// BrandConfig identifies the monitored brand.
type BrandConfig struct {
	Name   string `yaml:"name"`
	Handle string `yaml:"handle"`
}

// FeedConfig tunes the mention search.
type FeedConfig struct {
	Keywords    []string `yaml:"keywords"`
	WindowHours int      `yaml:"window_hours"`
}

// ClassifyConfig tunes the model calls.
type ClassifyConfig struct {
	Model        string  `yaml:"model"`
	BatchSize    int     `yaml:"batch_size"`
	CostLimitUSD float64 `yaml:"cost_limit_usd"`
	CacheFile    string  `yaml:"cache_file"`
}

// ReportConfig tunes aggregation and rendering.
type ReportConfig struct {
	TopThemes        int `yaml:"top_themes"`
	ExamplesPerTheme int `yaml:"examples_per_theme"`
	DetailCeiling    int `yaml:"detail_ceiling"`
}

// StorageConfig tunes report snapshots.
type StorageConfig struct {
	DataDir       string `yaml:"data_dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// Defaults returns the configuration used when no YAML file is given.
func Defaults() Config {
	return Config{
		Brand: BrandConfig{Name: "Brand"},
		Feed:  FeedConfig{WindowHours: 24},
		Classify: ClassifyConfig{
			BatchSize: 15,
			CacheFile: "data/sentiment_cache.json",
		},
		Report: ReportConfig{
			TopThemes:        5,
			ExamplesPerTheme: 3,
			DetailCeiling:    40000,
		},
		Storage: StorageConfig{
			DataDir:       "data/reports",
			RetentionDays: 90,
		},
	}
}

// Load reads the YAML file at path (optional, "" skips it), overlays
// environment variables, and validates. A .env file in the working
// directory is loaded first when present.
func Load(path string) (Config, error) {
	// Missing .env is the normal case outside local dev
	_ = godotenv.Load()

	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.BearerToken = os.Getenv("X_API_BEARER_TOKEN")
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.SlackWebhookURL = os.Getenv("SLACK_WEBHOOK_URL")
	cfg.SlackBotToken = os.Getenv("SLACK_BOT_TOKEN")
	cfg.SlackChannelID = os.Getenv("SLACK_CHANNEL_ID")
	cfg.SlackMentionID = os.Getenv("SLACK_MENTION_USER_ID")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required secrets and basic sanity.
func (c Config) Validate() error {
	var missing []string
	if c.BearerToken == "" {
		missing = append(missing, "X_API_BEARER_TOKEN")
	}
	if c.AnthropicAPIKey == "" {
		missing = append(missing, "ANTHROPIC_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.Brand.Handle == "" {
		return fmt.Errorf("brand.handle must be set")
	}
	if c.SlackBotToken != "" && c.SlackWebhookURL == "" && c.SlackChannelID == "" {
		return fmt.Errorf("SLACK_CHANNEL_ID is required with a bot token")
	}
	if c.Feed.WindowHours <= 0 {
		return fmt.Errorf("feed.window_hours must be positive")
	}
	return nil
}

// Window returns the search lookback as a duration.
func (c Config) Window() time.Duration {
	return time.Duration(c.Feed.WindowHours) * time.Hour
}

// Retention returns how long report snapshots are kept.
func (c Config) Retention() time.Duration {
	return time.Duration(c.Storage.RetentionDays) * 24 * time.Hour
}
