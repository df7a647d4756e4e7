package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.InDelta(t, 0.7, cfg.Classifier.ConfidenceThreshold, 1e-9)
	assert.InDelta(t, 1.5, cfg.Analytics.AnomalyFactor, 1e-9)
	assert.InDelta(t, 0.2, cfg.Suggestions.SubscriptionSavingRatio, 1e-9)
	assert.InDelta(t, 0.10, cfg.Festivals.BufferRatio, 1e-9)
	assert.Equal(t, 21, cfg.Festivals.AlertDaysBefore)
	assert.NotEmpty(t, cfg.Database.Path)
	assert.NotEmpty(t, cfg.DefaultFestivals())
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
database:
  path: /tmp/finsight-test.db
classifier:
  confidence_threshold: 0.55
festivals:
  defaults:
    - name: Onam
      month: 8
      day: 29
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/finsight-test.db", cfg.Database.Path)
	assert.InDelta(t, 0.55, cfg.Classifier.ConfidenceThreshold, 1e-9)

	festivals := cfg.DefaultFestivals()
	require.Len(t, festivals, 1)
	assert.Equal(t, "Onam", festivals[0].Name)
	assert.Equal(t, 1, festivals[0].DurationDays)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Classifier.ConfidenceThreshold = 1.5 },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "ratios do not sum to one",
			mutate:  func(c *Config) { c.Budget.NeedsRatio = 0.9 },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: common.ErrMissingConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(viper.New())
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("FINSIGHT_TEST_DIR", "/data")
	t.Setenv("FINSIGHT_EMPTY", "")

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "empty", path: "", want: ""},
		{name: "home only", path: "~", want: home},
		{name: "home prefix", path: "~/x.db", want: filepath.Join(home, "x.db")},
		{name: "other user untouched", path: "~bob/x.db", want: "~bob/x.db"},
		{name: "dollar variable", path: "$FINSIGHT_TEST_DIR/x.db", want: "/data/x.db"},
		{name: "braced variable", path: "${FINSIGHT_TEST_DIR}/models//model.bolt", want: "/data/models/model.bolt"},
		{name: "variable expanding to nothing", path: "$FINSIGHT_EMPTY", want: ""},
		{name: "relative path cleaned", path: "./data/../finsight.db", want: "finsight.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.path))
		})
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "finsight"), DataDir())

	t.Setenv("XDG_DATA_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local", "share", "finsight"), DataDir())
}

func TestLoadExpandsPaths(t *testing.T) {
	t.Setenv("FINSIGHT_TEST_DIR", "/data")

	v := viper.New()
	v.Set("database.path", "$FINSIGHT_TEST_DIR/finsight.db")
	v.Set("classifier.model_path", "${FINSIGHT_TEST_DIR}/model.bolt")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/data/finsight.db", cfg.Database.Path)
	assert.Equal(t, "/data/model.bolt", cfg.Classifier.ModelPath)
	assert.Equal(t, "", cfg.Classification.TaxonomyFile)
}
