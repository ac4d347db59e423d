package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stocktrader/config"
)

var tickersCmd = &cobra.Command{
	Use:   "tickers",
	Short: "Maintain the monitored ticker list",
	Long: `List, add or remove symbols in the ticker file (run.tickers_file).

Examples:
  trader tickers list
  trader tickers add AAPL MSFT
  trader tickers remove TSLA`,
}

var tickersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the monitored tickers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		list, err := config.LoadTickers(cfg.Run.TickersFile)
		if err != nil {
			return err
		}
		return printTickers(cmd, list)
	},
}

var tickersAddCmd = &cobra.Command{
	Use:   "add <symbol>...",
	Short: "Add symbols to the ticker file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		list, err := config.AddTickers(cfg.Run.TickersFile, args...)
		if err != nil {
			return err
		}
		return printTickers(cmd, list)
	},
}

var tickersRemoveCmd = &cobra.Command{
	Use:   "remove <symbol>...",
	Short: "Remove symbols from the ticker file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		list, err := config.RemoveTickers(cfg.Run.TickersFile, args...)
		if err != nil {
			return err
		}
		return printTickers(cmd, list)
	},
}

func init() {
	rootCmd.AddCommand(tickersCmd)
	tickersCmd.AddCommand(tickersListCmd)
	tickersCmd.AddCommand(tickersAddCmd)
	tickersCmd.AddCommand(tickersRemoveCmd)
}

func printTickers(cmd *cobra.Command, list []string) error {
	w := cmd.OutOrStdout()
	for _, t := range list {
		fmt.Fprintln(w, t)
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d tickers", len(list))))
	return nil
}
