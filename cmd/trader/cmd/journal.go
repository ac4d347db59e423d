package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stocktrader/journal"
	"github.com/rustyeddy/stocktrader/market"
	"github.com/rustyeddy/stocktrader/pkg/id"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the audit journal",
	Long: `Query and display audit journal records as Org-mode entries.
Reads the SQLite database when one is configured, the CSV log otherwise.

Subcommands:
  today  - Records written today
  day    - Records written on a specific day
  ticker - Records for one ticker
  run    - Records of one daily run

Examples:
  trader journal today
  trader journal day 2024-01-15
  trader journal ticker AAPL`,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List records written today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJournalDay(cmd, []string{time.Now().Format(market.DateLayout)})
	},
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List records written on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalTickerCmd = &cobra.Command{
	Use:   "ticker <symbol>",
	Short: "List records for one ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return queryJournal(cmd, func(q journal.Querier) ([]journal.Record, error) {
			return q.ListByTicker(args[0])
		})
	},
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "List records of one daily run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)
	journalCmd.AddCommand(journalTickerCmd)
	journalCmd.AddCommand(journalRunCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (overrides journal.db_path)")
}

// runJournalRun prints the run start decoded from the run id, then its records.
func runJournalRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	started, err := id.Time(runID)
	if err != nil {
		return fmt.Errorf("run id %q: %w", runID, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render(
		fmt.Sprintf("Run %s started %s", runID, started.Local().Format("2006-01-02 15:04:05"))))

	return queryJournal(cmd, func(q journal.Querier) ([]journal.Record, error) {
		return q.ListByRun(runID)
	})
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	start, end, err := dayBounds(time.Local, args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	return queryJournal(cmd, func(q journal.Querier) ([]journal.Record, error) {
		return q.ListBetween(start, end)
	})
}

func queryJournal(cmd *cobra.Command, list func(journal.Querier) ([]journal.Record, error)) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if journalDBPath != "" {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = journalDBPath
	}

	q, closeFn, err := openQuerier(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	recs, err := list(q)
	if err != nil {
		return fmt.Errorf("query journal: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("no records"))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatRecordsOrg(recs))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation(market.DateLayout, day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
