// Package config loads finsight's settings from file, environment and flags.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/spf13/viper"
)

// Config is the fully resolved application configuration.
type Config struct {
	Serve          ServeConfig          `mapstructure:"serve"`
	Currency       CurrencyConfig       `mapstructure:"currency"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Classification ClassificationConfig `mapstructure:"classification"`
	Festivals      FestivalConfig       `mapstructure:"festivals"`
	Classifier     ClassifierConfig     `mapstructure:"classifier"`
	Budget         BudgetConfig         `mapstructure:"budget"`
	Suggestions    SuggestionConfig     `mapstructure:"suggestions"`
	Analytics      AnalyticsConfig      `mapstructure:"analytics"`
}

// DatabaseConfig locates the SQLite ledger.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ClassifierConfig tunes the statistical fallback classifier.
type ClassifierConfig struct {
	ModelPath           string  `mapstructure:"model_path"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
}

// ClassificationConfig points at an optional taxonomy override file.
type ClassificationConfig struct {
	TaxonomyFile string `mapstructure:"taxonomy_file"`
}

// AnalyticsConfig tunes anomaly detection.
type AnalyticsConfig struct {
	AnomalyFactor float64 `mapstructure:"anomaly_factor"`
}

// BudgetConfig holds the budget policy ratios.
type BudgetConfig struct {
	WarningRatio float64 `mapstructure:"warning_ratio"`
	NeedsRatio   float64 `mapstructure:"needs_ratio"`
	WantsRatio   float64 `mapstructure:"wants_ratio"`
	SavingsRatio float64 `mapstructure:"savings_ratio"`
}

// SuggestionConfig holds suggestion thresholds.
type SuggestionConfig struct {
	SubscriptionSavingRatio float64 `mapstructure:"subscription_saving_ratio"`
	WantsPctLimit           float64 `mapstructure:"wants_pct_limit"`
	SavingsPctFloor         float64 `mapstructure:"savings_pct_floor"`
}

// FestivalConfig holds festival alert settings and the seeded calendar.
type FestivalConfig struct {
	Defaults        []FestivalDefault `mapstructure:"defaults"`
	AlertDaysBefore int               `mapstructure:"alert_days_before"`
	BufferRatio     float64           `mapstructure:"buffer_ratio"`
}

// FestivalDefault is a festival seeded into storage on first use.
type FestivalDefault struct {
	Name         string `mapstructure:"name"`
	Month        int    `mapstructure:"month"`
	Day          int    `mapstructure:"day"`
	DurationDays int    `mapstructure:"duration_days"`
}

// CurrencyConfig controls how amounts are rendered.
type CurrencyConfig struct {
	Symbol string `mapstructure:"symbol"`
}

// ServeConfig holds the cron schedules used by the serve command.
type ServeConfig struct {
	RetrainSchedule string `mapstructure:"retrain_schedule"`
	AlertSchedule   string `mapstructure:"alert_schedule"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	dataDir := DataDir()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.path", filepath.Join(dataDir, "finsight.db"))
	v.SetDefault("classifier.model_path", filepath.Join(dataDir, "model.bolt"))
	v.SetDefault("classifier.confidence_threshold", 0.7)
	v.SetDefault("classification.taxonomy_file", "")
	v.SetDefault("analytics.anomaly_factor", 1.5)
	v.SetDefault("budget.warning_ratio", 0.8)
	v.SetDefault("budget.needs_ratio", 0.5)
	v.SetDefault("budget.wants_ratio", 0.3)
	v.SetDefault("budget.savings_ratio", 0.2)
	v.SetDefault("suggestions.subscription_saving_ratio", 0.2)
	v.SetDefault("suggestions.wants_pct_limit", 35.0)
	v.SetDefault("suggestions.savings_pct_floor", 15.0)
	v.SetDefault("festivals.alert_days_before", 21)
	v.SetDefault("festivals.buffer_ratio", 0.10)
	v.SetDefault("festivals.defaults", []map[string]any{
		{"name": "Makar Sankranti", "month": 1, "day": 14, "duration_days": 1},
		{"name": "Holi", "month": 3, "day": 14, "duration_days": 2},
		{"name": "Raksha Bandhan", "month": 8, "day": 19, "duration_days": 1},
		{"name": "Ganesh Chaturthi", "month": 9, "day": 7, "duration_days": 10},
		{"name": "Dussehra", "month": 10, "day": 12, "duration_days": 1},
		{"name": "Diwali", "month": 10, "day": 20, "duration_days": 5},
		{"name": "Christmas", "month": 12, "day": 25, "duration_days": 3},
	})
	v.SetDefault("currency.symbol", "₹")
	v.SetDefault("serve.retrain_schedule", "@every 1h")
	v.SetDefault("serve.alert_schedule", "0 9 * * *")
}

// Load applies defaults, unmarshals v and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the rest of the application cannot work with.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if c.Classifier.ConfidenceThreshold < 0 || c.Classifier.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: classifier.confidence_threshold must be within [0, 1], got %v",
			common.ErrInvalidConfig, c.Classifier.ConfidenceThreshold)
	}
	sum := c.Budget.NeedsRatio + c.Budget.WantsRatio + c.Budget.SavingsRatio
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("%w: budget ratios must add up to 1, got %.3f", common.ErrInvalidConfig, sum)
	}
	if c.Festivals.AlertDaysBefore < 0 {
		return fmt.Errorf("%w: festivals.alert_days_before must not be negative", common.ErrInvalidConfig)
	}
	return nil
}

// DefaultFestivals converts the configured calendar into model festivals.
func (c *Config) DefaultFestivals() []model.Festival {
	festivals := make([]model.Festival, 0, len(c.Festivals.Defaults))
	for _, f := range c.Festivals.Defaults {
		duration := f.DurationDays
		if duration < 1 {
			duration = 1
		}
		festivals = append(festivals, model.Festival{
			Name:         f.Name,
			Month:        f.Month,
			Day:          f.Day,
			DurationDays: duration,
			IsActive:     true,
		})
	}
	return festivals
}
