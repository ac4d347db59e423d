package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, 1, cfg.Run.ShareQty)
	assert.Equal(t, "alphavantage", cfg.Provider.Type)
	assert.Equal(t, 20, cfg.Provider.TimePeriod)
	assert.Equal(t, 18, cfg.Chart.MonthsBefore)
	assert.NoError(t, cfg.Validate())

	pace, err := cfg.Run.PaceDuration()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, pace)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"missing tickers file", func(c *Config) { c.Run.TickersFile = " " }, "run.tickers_file"},
		{"zero quantity", func(c *Config) { c.Run.ShareQty = 0 }, "run.share_qty: must be positive"},
		{"bad pace", func(c *Config) { c.Run.Pace = "soon" }, "run.pace"},
		{"negative pace", func(c *Config) { c.Run.Pace = "-1s" }, "run.pace"},
		{"unknown provider", func(c *Config) { c.Provider.Type = "bloomberg" }, "provider.type"},
		{"csv provider without dir", func(c *Config) { c.Provider.Type = "csv" }, "provider.csv_dir"},
		{"csv prices without dir", func(c *Config) { c.Provider.Prices = "csv" }, "provider.csv_dir"},
		{"unknown prices", func(c *Config) { c.Provider.Prices = "iex" }, "provider.prices"},
		{"zero period", func(c *Config) { c.Provider.TimePeriod = 0 }, "provider.time_period"},
		{"bad timeout", func(c *Config) { c.Provider.Timeout = "x" }, "provider.timeout"},
		{"unknown broker", func(c *Config) { c.Broker.Type = "etrade" }, "broker.type"},
		{"unknown journal", func(c *Config) { c.Journal.Type = "postgres" }, "journal.type"},
		{"csv journal without file", func(c *Config) { c.Journal.LogFile = "" }, "journal.log_file"},
		{"sqlite journal without path", func(c *Config) {
			c.Journal.Type = "both"
			c.Journal.DBPath = ""
		}, "journal.db_path"},
		{"chart without dir", func(c *Config) { c.Chart.Dir = "" }, "chart.dir"},
		{"chart disabled without dir", func(c *Config) {
			c.Chart.Enabled = false
			c.Chart.Dir = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Broker.Type = "robinhood"
			cfg.Journal.Type = "both"
			cfg.Secrets.RobinhoodPassword = "hunter2"
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.NotContains(t, string(data), "hunter2")

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg.Run, loaded.Run)
			assert.Equal(t, cfg.Provider, loaded.Provider)
			assert.Equal(t, "robinhood", loaded.Broker.Type)
			assert.Equal(t, "both", loaded.Journal.Type)
			assert.Empty(t, loaded.Secrets.RobinhoodPassword)
		})
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trader.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run:\n  share_qty: 5\n  dry_run: true\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Run.ShareQty)
	assert.True(t, cfg.Run.DryRun)
	assert.Equal(t, "./tickers.csv", cfg.Run.TickersFile)
	assert.Equal(t, "alphavantage", cfg.Provider.Type)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.ErrorIs(t, err, ErrConfig)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run: [unterminated"), 0o644))
	_, err = LoadFromFile(path)
	assert.ErrorIs(t, err, ErrConfig)

	path = filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("broker:\n  type: etrade\n"), 0o644))
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "broker.type")
}

func TestSecrets(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(EnvRobinhoodUsername+"=alice\n"+EnvRobinhoodPassword+"=secret\n"), 0o600))

	t.Setenv(EnvAlphaVantageKey, "demo")
	t.Setenv(EnvRobinhoodUsername, "")
	t.Setenv(EnvRobinhoodPassword, "")
	os.Unsetenv(EnvRobinhoodUsername)
	os.Unsetenv(EnvRobinhoodPassword)

	cfg := Default()
	cfg.Broker.Type = "robinhood"
	cfg.LoadSecrets(envFile, filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "demo", cfg.Secrets.AlphaVantageKey)
	assert.Equal(t, "alice", cfg.Secrets.RobinhoodUsername)
	assert.Equal(t, "secret", cfg.Secrets.RobinhoodPassword)
	assert.NoError(t, cfg.RequireSecrets())
}

func TestRequireSecrets(t *testing.T) {
	t.Parallel()

	cfg := Default()
	err := cfg.RequireSecrets()
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorContains(t, err, EnvAlphaVantageKey)

	cfg.Secrets.AlphaVantageKey = "k"
	assert.NoError(t, cfg.RequireSecrets())

	cfg.Broker.Type = "robinhood"
	assert.ErrorContains(t, cfg.RequireSecrets(), EnvRobinhoodUsername)

	cfg.Secrets.RobinhoodUsername = "alice"
	assert.ErrorContains(t, cfg.RequireSecrets(), EnvRobinhoodPassword)

	cfg.Run.DryRun = true
	assert.NoError(t, cfg.RequireSecrets())

	csv := Default()
	csv.Provider.Type = "csv"
	csv.Provider.CSVDir = "data"
	assert.NoError(t, csv.RequireSecrets())
}
