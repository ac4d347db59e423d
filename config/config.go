// Package config loads the trader configuration file, the environment
// secrets and the monitored ticker list.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names for credentials. They never live in the
// config file.
const (
	EnvAlphaVantageKey   = "ALPHA_VANTAGE_API_KEY"
	EnvRobinhoodUsername = "ROBINHOOD_USERNAME"
	EnvRobinhoodPassword = "ROBINHOOD_PASSWORD"
	EnvRobinhoodMFA      = "ROBINHOOD_MFA_CODE"
)

// ErrConfig is matched by every *ConfigError via errors.Is.
var ErrConfig = errors.New("configuration error")

// ConfigError reports a missing or invalid setting.
type ConfigError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ConfigError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Field == "" {
		return "config: " + msg
	}
	return fmt.Sprintf("config %s: %s", e.Field, msg)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func invalid(field, format string, args ...any) error {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Config represents the complete trader configuration
type Config struct {
	Run      RunConfig      `json:"run" yaml:"run"`
	Provider ProviderConfig `json:"provider" yaml:"provider"`
	Broker   BrokerConfig   `json:"broker" yaml:"broker"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Chart    ChartConfig    `json:"chart" yaml:"chart"`
	App      AppConfig      `json:"app" yaml:"app"`

	Secrets Secrets `json:"-" yaml:"-"`
}

// RunConfig controls one daily run
type RunConfig struct {
	TickersFile string `json:"tickers_file" yaml:"tickers_file"`
	ShareQty    int    `json:"share_qty" yaml:"share_qty"`
	Pace        string `json:"pace" yaml:"pace"` // e.g. "60s"; pause between tickers
	Confirm     bool   `json:"confirm" yaml:"confirm"`
	DryRun      bool   `json:"dry_run" yaml:"dry_run"`
}

// PaceDuration converts Pace to a time.Duration. Empty means zero.
func (r RunConfig) PaceDuration() (time.Duration, error) {
	if r.Pace == "" {
		return 0, nil
	}
	return time.ParseDuration(r.Pace)
}

// ProviderConfig selects the market data source
type ProviderConfig struct {
	Type       string `json:"type" yaml:"type"`     // "alphavantage" or "csv"
	Prices     string `json:"prices" yaml:"prices"` // "yahoo" or "csv"
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	TimePeriod int    `json:"time_period" yaml:"time_period"`
	SeriesType string `json:"series_type" yaml:"series_type"`
	Timeout    string `json:"timeout" yaml:"timeout"`
	Retries    int    `json:"retries" yaml:"retries"`
	CSVDir     string `json:"csv_dir,omitempty" yaml:"csv_dir,omitempty"`
}

func (p ProviderConfig) TimeoutDuration() (time.Duration, error) {
	if p.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(p.Timeout)
}

// BrokerConfig selects where orders go
type BrokerConfig struct {
	Type     string `json:"type" yaml:"type"` // "paper" or "robinhood"
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	ClientID string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type    string `json:"type" yaml:"type"` // "csv", "sqlite" or "both"
	LogFile string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

func (j JournalConfig) UsesCSV() bool    { return j.Type == "csv" || j.Type == "both" }
func (j JournalConfig) UsesSQLite() bool { return j.Type == "sqlite" || j.Type == "both" }

type ChartConfig struct {
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	Dir          string `json:"dir" yaml:"dir"`
	MonthsBefore int    `json:"months_before" yaml:"months_before"`
	MonthsAfter  int    `json:"months_after" yaml:"months_after"`
}

type AppConfig struct {
	LogLevel    string `json:"log_level" yaml:"log_level"`
	MetricsAddr string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
}

// Secrets are read from the environment by LoadSecrets.
type Secrets struct {
	AlphaVantageKey   string
	RobinhoodUsername string
	RobinhoodPassword string
	RobinhoodMFA      string
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Msg: "read config file", Err: err}
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, &ConfigError{Msg: "parse config (tried YAML and JSON)", Err: jerr}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid. Secrets are checked
// separately by RequireSecrets.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Run.TickersFile) == "" {
		return invalid("run.tickers_file", "is required")
	}
	if c.Run.ShareQty <= 0 {
		return invalid("run.share_qty", "must be positive")
	}
	if pace, err := c.Run.PaceDuration(); err != nil || pace < 0 {
		return invalid("run.pace", "must be a non-negative duration (got %q)", c.Run.Pace)
	}

	switch c.Provider.Type {
	case "alphavantage":
	case "csv":
		if c.Provider.CSVDir == "" {
			return invalid("provider.csv_dir", "required for csv provider")
		}
	default:
		return invalid("provider.type", "must be 'alphavantage' or 'csv'")
	}
	switch c.Provider.Prices {
	case "yahoo":
	case "csv":
		if c.Provider.CSVDir == "" {
			return invalid("provider.csv_dir", "required for csv prices")
		}
	default:
		return invalid("provider.prices", "must be 'yahoo' or 'csv'")
	}
	if c.Provider.TimePeriod <= 0 {
		return invalid("provider.time_period", "must be positive")
	}
	if c.Provider.Retries < 0 {
		return invalid("provider.retries", "must not be negative")
	}
	if _, err := c.Provider.TimeoutDuration(); err != nil {
		return invalid("provider.timeout", "bad duration %q", c.Provider.Timeout)
	}

	if c.Broker.Type != "paper" && c.Broker.Type != "robinhood" {
		return invalid("broker.type", "must be 'paper' or 'robinhood'")
	}

	switch c.Journal.Type {
	case "csv", "sqlite", "both":
	default:
		return invalid("journal.type", "must be 'csv', 'sqlite' or 'both'")
	}
	if c.Journal.UsesCSV() && c.Journal.LogFile == "" {
		return invalid("journal.log_file", "required for CSV journal")
	}
	if c.Journal.UsesSQLite() && c.Journal.DBPath == "" {
		return invalid("journal.db_path", "required for SQLite journal")
	}

	if c.Chart.Enabled && c.Chart.Dir == "" {
		return invalid("chart.dir", "required when charts are enabled")
	}
	if c.Chart.MonthsBefore < 0 || c.Chart.MonthsAfter < 0 {
		return invalid("chart.months_before", "chart months must not be negative")
	}
	return nil
}

// LoadSecrets reads credentials from the environment after loading the
// given .env files, if any exist. Already set variables win over .env.
func (c *Config) LoadSecrets(envFiles ...string) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
	c.Secrets = Secrets{
		AlphaVantageKey:   os.Getenv(EnvAlphaVantageKey),
		RobinhoodUsername: os.Getenv(EnvRobinhoodUsername),
		RobinhoodPassword: os.Getenv(EnvRobinhoodPassword),
		RobinhoodMFA:      os.Getenv(EnvRobinhoodMFA),
	}
}

// RequireSecrets fails when the selected provider or broker needs a
// credential that is not set.
func (c *Config) RequireSecrets() error {
	if c.Provider.Type == "alphavantage" && c.Secrets.AlphaVantageKey == "" {
		return invalid(EnvAlphaVantageKey, "not set")
	}
	if c.Broker.Type == "robinhood" && !c.Run.DryRun {
		if c.Secrets.RobinhoodUsername == "" {
			return invalid(EnvRobinhoodUsername, "not set")
		}
		if c.Secrets.RobinhoodPassword == "" {
			return invalid(EnvRobinhoodPassword, "not set")
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Run: RunConfig{
			TickersFile: "./tickers.csv",
			ShareQty:    1,
			Pace:        "60s",
			Confirm:     false,
		},
		Provider: ProviderConfig{
			Type:       "alphavantage",
			Prices:     "yahoo",
			TimePeriod: 20,
			SeriesType: "close",
			Timeout:    "30s",
			Retries:    3,
		},
		Broker: BrokerConfig{
			Type: "paper",
		},
		Journal: JournalConfig{
			Type:    "csv",
			LogFile: "./transactions.csv",
			DBPath:  "./transactions.db",
		},
		Chart: ChartConfig{
			Enabled:      true,
			Dir:          "./graph-exports",
			MonthsBefore: 18,
			MonthsAfter:  1,
		},
		App: AppConfig{
			LogLevel: "info",
		},
	}
}
