package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stocktrader/market"
	"github.com/rustyeddy/stocktrader/strategies"
)

var scanCmd = &cobra.Command{
	Use:   "scan <ticker>",
	Short: "Show crossovers and today's decision for one ticker",
	Long: `Fetch the daily and weekly EMA series for a ticker and print every
crossover plus the decision for today. Nothing is traded or journaled.

Examples:
  trader scan AAPL
  trader scan MSFT --today 2020-08-28`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

var scanToday string

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVar(&scanToday, "today", "", "evaluate as of this day (YYYY-MM-DD)")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireSecrets(); err != nil {
		return err
	}

	today := time.Now()
	if scanToday != "" {
		if today, err = market.ParseDay(scanToday); err != nil {
			return fmt.Errorf("--today: %w", err)
		}
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}
	prices, err := newPrices(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	ticker := strings.ToUpper(args[0])

	price, err := prices.Price(ctx, ticker)
	if err != nil {
		return err
	}
	daily, err := provider.EMA(ctx, ticker, market.Daily)
	if err != nil {
		return err
	}
	weekly, err := provider.EMA(ctx, ticker, market.Weekly)
	if err != nil {
		return err
	}

	out, err := strategies.EvaluateEMACross(strategies.EMACrossInput{
		Ticker:       ticker,
		Daily:        daily,
		Weekly:       weekly,
		Today:        today,
		CurrentPrice: price,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s: %d aligned points, %d buys, %d sells",
		ticker, len(out.Points), len(out.Buys()), len(out.Sells()))))
	fmt.Fprintln(w, renderEvents(out.Events))
	fmt.Fprintln(w, renderDecision(out.Decision))
	return nil
}
