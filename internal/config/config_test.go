package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://financialmodelingprep.com", cfg.Provider.BaseURL)
	assert.Equal(t, 0.6, cfg.Scoring.RiskWeight)
	assert.Equal(t, 0.4, cfg.Scoring.AttentionWeight)
	assert.Equal(t, 55.0, cfg.Alerting.MinIndexScore)
	assert.Equal(t, 7*24*time.Hour, cfg.Alerting.Cooldown())
	assert.Equal(t, 10, cfg.Alerting.TopK)
	assert.Equal(t, 25, cfg.Funnel.MaxFullAnalysis)
	assert.Equal(t, ":8087", cfg.Server.Addr)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
provider:
  base_url: https://example.test
  rps: 1
alerting:
  cooldown_days: 3
  top_k: 5
scoring:
  risk_weight: 0.7
  attention_weight: 0.3
  weights:
    insolvency:
      runway: 40
      debt_load: 10
funnel:
  quote_max_price: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.test", cfg.Provider.BaseURL)
	assert.Equal(t, 1.0, cfg.Provider.RPS)
	assert.Equal(t, 3, cfg.Alerting.CooldownDays)
	assert.Equal(t, 5, cfg.Alerting.TopK)
	assert.Equal(t, 0.7, cfg.Scoring.RiskWeight)
	assert.Equal(t, 40.0, cfg.Scoring.Weights["insolvency"]["runway"])
	assert.Equal(t, 10.0, cfg.Scoring.Weights["insolvency"]["debt_load"])
	assert.Equal(t, 5.0, cfg.Funnel.QuoteMaxPrice)

	// Untouched sections keep their defaults.
	assert.Equal(t, 55.0, cfg.Alerting.MinIndexScore)
	assert.Equal(t, 25, cfg.Funnel.MaxFullAnalysis)
}

func TestLoad_EnvSecrets(t *testing.T) {
	t.Setenv(EnvAPIKey, "k-123")
	t.Setenv(EnvPostgresDSN, "postgres://scan:pw@localhost/pennywatch")
	t.Setenv(EnvRedisAddr, "localhost:6379")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "k-123", cfg.Provider.APIKey)
	assert.Equal(t, "postgres://scan:pw@localhost/pennywatch", cfg.PostgresDSN)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.Provider.BaseURL = "" }},
		{"negative cooldown", func(c *Config) { c.Alerting.CooldownDays = -1 }},
		{"zero top k", func(c *Config) { c.Alerting.TopK = 0 }},
		{"negative blend weight", func(c *Config) { c.Scoring.RiskWeight = -0.1 }},
		{"negative factor weight", func(c *Config) {
			c.Scoring.Weights = map[string]map[string]float64{"insolvency": {"runway": -5}}
		}},
		{"weights off the 100 scale", func(c *Config) {
			c.Scoring.Weights = map[string]map[string]float64{"insolvency": {"runway": 60, "debt_load": 60}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestScorer_UsesConfiguredBlend(t *testing.T) {
	cfg := Default()
	cfg.Scoring.RiskWeight = 1
	cfg.Scoring.AttentionWeight = 0

	scorer := cfg.Scorer()
	require.NotNil(t, scorer)
}
