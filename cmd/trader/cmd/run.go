package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stocktrader/config"
	"github.com/rustyeddy/stocktrader/metrics"
	"github.com/rustyeddy/stocktrader/runner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daily crossover check over every monitored ticker",
	Long: `Evaluate each ticker in the ticker file once, placing an order for every
crossover that happened today.

Examples:
  trader run
  trader run --dry-run --pace 0s
  trader run --confirm -c live.yaml`,
	Args: cobra.NoArgs,
	RunE: runDaily,
}

var (
	runDryRun  bool
	runConfirm bool
	runPace    time.Duration
	runQty     int
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "compute decisions without placing orders")
	runCmd.Flags().BoolVar(&runConfirm, "confirm", false, "ask before placing each order")
	runCmd.Flags().DurationVar(&runPace, "pace", 0, "pause between tickers (overrides run.pace)")
	runCmd.Flags().IntVar(&runQty, "qty", 0, "shares per order (overrides run.share_qty)")
}

func runDaily(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.Run.DryRun = runDryRun
	}
	if cmd.Flags().Changed("confirm") {
		cfg.Run.Confirm = runConfirm
	}
	if runQty > 0 {
		cfg.Run.ShareQty = runQty
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.RequireSecrets(); err != nil {
		return err
	}

	log := newLogger(cfg)

	tickers, err := config.LoadTickers(cfg.Run.TickersFile)
	if errors.Is(err, config.ErrNoTickerFile) {
		if _, cerr := config.EnsureTickerFile(cfg.Run.TickersFile); cerr != nil {
			return errors.Join(err, cerr)
		}
		return fmt.Errorf("%w: created empty %s, add tickers and run again", err, cfg.Run.TickersFile)
	}
	if err != nil {
		return err
	}
	if len(tickers) == 0 {
		log.Warn().Str("file", cfg.Run.TickersFile).Msg("no tickers to check")
		return nil
	}

	pace, _ := cfg.Run.PaceDuration()
	if cmd.Flags().Changed("pace") {
		pace = runPace
	}
	if pace == 0 {
		pace = -1
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.App.MetricsAddr != "" {
		srv := metrics.Serve(cfg.App.MetricsAddr, func(err error) {
			log.Error().Err(err).Msg("metrics server")
		})
		defer metrics.Shutdown(srv)
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}
	prices, err := newPrices(cfg)
	if err != nil {
		return err
	}
	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	r := &runner.Runner{
		Provider: provider,
		Prices:   prices,
		Journal:  j,
		Charts:   newCharts(cfg),
		Log:      log,
		Pace:     pace,
		Quantity: float64(cfg.Run.ShareQty),
		DryRun:   cfg.Run.DryRun,
	}
	if !cfg.Run.DryRun {
		if r.Broker, err = newBroker(ctx, cfg, prices); err != nil {
			return err
		}
	}
	if cfg.Run.Confirm {
		r.Confirm = promptConfirmer{quantity: cfg.Run.ShareQty}
	}

	sum, err := r.Run(ctx, tickers)
	printSummary(cmd.OutOrStdout(), sum)
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("run interrupted after %d of %d tickers", len(sum.Results), len(tickers))
	}
	return err
}
