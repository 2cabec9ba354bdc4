// Package config loads the scanner configuration: YAML file with defaults,
// environment overrides for secrets. Every weight table, threshold and
// limit in the pipeline is overridable here without code changes.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/grifflux/pennywatch/internal/converge"
	"github.com/grifflux/pennywatch/internal/funnel"
	"github.com/grifflux/pennywatch/internal/score"
	"github.com/grifflux/pennywatch/internal/universe"
)

// Env var names for secrets; never stored in the YAML file.
const (
	EnvAPIKey      = "PENNYWATCH_API_KEY"
	EnvPostgresDSN = "PENNYWATCH_POSTGRES_DSN"
	EnvRedisAddr   = "PENNYWATCH_REDIS_ADDR"
)

// ProviderConfig configures the upstream data client.
type ProviderConfig struct {
	BaseURL string  `yaml:"base_url"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
	// APIKey is resolved from EnvAPIKey, present here only for tests.
	APIKey string `yaml:"-"`
}

// ScoringConfig carries engine weight overrides and the index blend.
type ScoringConfig struct {
	Weights         map[string]map[string]float64 `yaml:"weights"`
	RiskWeight      float64                       `yaml:"risk_weight"`
	AttentionWeight float64                       `yaml:"attention_weight"`
	AlertTiers      []score.AlertTier             `yaml:"alert_tiers"`
}

// AlertingConfig sets the alert gate: score floor, cooldown, list size.
type AlertingConfig struct {
	MinIndexScore float64 `yaml:"min_index_score"`
	CooldownDays  int     `yaml:"cooldown_days"`
	TopK          int     `yaml:"top_k"`
	LedgerPath    string  `yaml:"ledger_path"`
}

// Cooldown returns the configured period as a duration.
func (a AlertingConfig) Cooldown() time.Duration {
	return time.Duration(a.CooldownDays) * 24 * time.Hour
}

// ServerConfig configures the telemetry HTTP surface and cron schedule.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	Schedule string `yaml:"schedule"`
}

// Config is the full scanner configuration.
type Config struct {
	Provider    ProviderConfig      `yaml:"provider"`
	Universe    universe.Config     `yaml:"universe"`
	Funnel      funnel.Config       `yaml:"funnel"`
	Scoring     ScoringConfig       `yaml:"scoring"`
	Convergence converge.Thresholds `yaml:"convergence"`
	Alerting    AlertingConfig      `yaml:"alerting"`
	Server      ServerConfig        `yaml:"server"`

	// Resolved from environment.
	PostgresDSN string `yaml:"-"`
	RedisAddr   string `yaml:"-"`
}

// Default returns the production defaults, valid without any file.
func Default() Config {
	return Config{
		Provider: ProviderConfig{
			BaseURL: "https://financialmodelingprep.com",
			RPS:     4,
			Burst:   2,
		},
		Universe:    universe.DefaultConfig(),
		Funnel:      funnel.DefaultConfig(),
		Convergence: converge.DefaultThresholds(),
		Scoring: ScoringConfig{
			RiskWeight:      0.6,
			AttentionWeight: 0.4,
		},
		Alerting: AlertingConfig{
			MinIndexScore: 55,
			CooldownDays:  7,
			TopK:          10,
			LedgerPath:    "data/cooldown.json",
		},
		Server: ServerConfig{
			Addr:     ":8087",
			Schedule: "0 13,17,21 * * 1-5", // thrice during US trading days
		},
	}
}

// Load reads path over the defaults; an empty path means defaults only.
// Environment secrets are resolved in both cases.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Provider.APIKey = os.Getenv(EnvAPIKey)
	cfg.PostgresDSN = os.Getenv(EnvPostgresDSN)
	cfg.RedisAddr = os.Getenv(EnvRedisAddr)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run on.
func (c *Config) Validate() error {
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required")
	}
	if c.Alerting.CooldownDays < 0 {
		return fmt.Errorf("alerting.cooldown_days must be >= 0")
	}
	if c.Alerting.TopK <= 0 {
		return fmt.Errorf("alerting.top_k must be > 0")
	}
	if c.Scoring.RiskWeight < 0 || c.Scoring.AttentionWeight < 0 {
		return fmt.Errorf("scoring weights must be >= 0")
	}
	for engine, table := range c.Scoring.Weights {
		for name, w := range table {
			if w < 0 {
				return fmt.Errorf("scoring.weights.%s.%s: negative weight", engine, name)
			}
		}
	}
	if len(c.Scoring.Weights) > 0 {
		if err := score.ValidateWeights(c.Scoring.Weights); err != nil {
			return err
		}
	}
	return nil
}

// Scorer builds the configured score.Scorer.
func (c *Config) Scorer() *score.Scorer {
	opts := []score.ScorerOption{
		score.WithCombiner(score.NewCombiner(c.Scoring.RiskWeight, c.Scoring.AttentionWeight, c.Scoring.AlertTiers)),
	}
	if len(c.Scoring.Weights) > 0 {
		opts = append(opts, score.WithEngineWeights(c.Scoring.Weights))
	}
	return score.NewScorer(opts...)
}
