package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("X_API_BEARER_TOKEN", "bearer")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("SLACK_WEBHOOK_URL", "")
	t.Setenv("SLACK_BOT_TOKEN", "")
	t.Setenv("SLACK_CHANNEL_ID", "")
	t.Setenv("SLACK_MENTION_USER_ID", "")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	setRequiredEnv(t)
	path := writeConfig(t, `
brand:
  name: Acme
  handle: acme_hq
feed:
  keywords: [trading, app]
  window_hours: 48
classify:
  batch_size: 10
  cost_limit_usd: 2.5
report:
  top_themes: 3
storage:
  retention_days: 30
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "Acme", cfg.Brand.Name)
	assert.Equal(t, "acme_hq", cfg.Brand.Handle)
	assert.Equal(t, []string{"trading", "app"}, cfg.Feed.Keywords)
	assert.Equal(t, 48, cfg.Feed.WindowHours)
	assert.Equal(t, 10, cfg.Classify.BatchSize)
	assert.InDelta(t, 2.5, cfg.Classify.CostLimitUSD, 0.001)
	assert.Equal(t, 3, cfg.Report.TopThemes)
	assert.Equal(t, 30, cfg.Storage.RetentionDays)
	// Untouched keys keep their defaults
	assert.Equal(t, 3, cfg.Report.ExamplesPerTheme)
	assert.Equal(t, 40000, cfg.Report.DetailCeiling)
	// Secrets come from the environment
	assert.Equal(t, "bearer", cfg.BearerToken)
	assert.Equal(t, "sk-test", cfg.AnthropicAPIKey)
}

func TestLoadMissingFileFails(t *testing.T) {
	setRequiredEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	setRequiredEnv(t)
	path := writeConfig(t, "brand:\n  handle: acme_hq\n")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 24, cfg.Feed.WindowHours)
	assert.Equal(t, 15, cfg.Classify.BatchSize)
	assert.Equal(t, "data/reports", cfg.Storage.DataDir)
}

func TestValidateMissingSecrets(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "")
	path := writeConfig(t, "brand:\n  handle: acme_hq\n")

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestValidateRequiresHandle(t *testing.T) {
	setRequiredEnv(t)
	path := writeConfig(t, "brand:\n  name: Acme\n")

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "brand.handle")
}

func TestValidateBotTokenNeedsChannel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-1")
	path := writeConfig(t, "brand:\n  handle: acme_hq\n")

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SLACK_CHANNEL_ID")
}

func TestDurationHelpers(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "24h0m0s", cfg.Window().String())
	assert.Equal(t, 90*24.0, cfg.Retention().Hours())
}
