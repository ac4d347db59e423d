package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/stocktrader/config"
	"github.com/rustyeddy/stocktrader/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "Daily/weekly EMA crossover stock trader",
	Long: `Trader watches a list of stock tickers once a day. For each ticker it
compares the daily EMA with the weekly EMA, and when the two crossed today
it places a market order (BUY when the daily EMA moved above the weekly,
SELL when it moved below). Every step is recorded in an audit journal.

Credentials are read from the environment or a .env file:
  ALPHA_VANTAGE_API_KEY, ROBINHOOD_USERNAME, ROBINHOOD_PASSWORD`,
	SilenceUsage: true,
}

var (
	cfgFile  string
	envFile  string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "trader.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file with credentials")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides app.log_level)")
}

// loadConfig reads the config file. A missing default file falls back to
// Default(); a missing file named with --config is an error.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFromFile(cfgFile)
	if err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) || cmd.Flags().Changed("config") {
			return nil, err
		}
		cfg = config.Default()
	}
	cfg.LoadSecrets(envFile)
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if fi, err := os.Stderr.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
		return logging.Console(cfg.App.LogLevel)
	}
	return logging.New(cfg.App.LogLevel)
}
