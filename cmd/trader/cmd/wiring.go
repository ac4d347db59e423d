package cmd

import (
	"context"
	"fmt"

	"github.com/rustyeddy/stocktrader/broker"
	"github.com/rustyeddy/stocktrader/broker/paper"
	"github.com/rustyeddy/stocktrader/broker/robinhood"
	"github.com/rustyeddy/stocktrader/chart"
	"github.com/rustyeddy/stocktrader/config"
	"github.com/rustyeddy/stocktrader/journal"
	"github.com/rustyeddy/stocktrader/market"
	"github.com/rustyeddy/stocktrader/market/alphavantage"
	"github.com/rustyeddy/stocktrader/market/csvfeed"
	"github.com/rustyeddy/stocktrader/market/yahoo"
	"github.com/rustyeddy/stocktrader/runner"
)

func newProvider(cfg *config.Config) (market.Provider, error) {
	switch cfg.Provider.Type {
	case "csv":
		return csvfeed.New(cfg.Provider.CSVDir, cfg.Provider.TimePeriod), nil
	case "alphavantage":
		timeout, err := cfg.Provider.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		return alphavantage.New(alphavantage.Options{
			BaseURL:    cfg.Provider.BaseURL,
			APIKey:     cfg.Secrets.AlphaVantageKey,
			TimePeriod: cfg.Provider.TimePeriod,
			SeriesType: cfg.Provider.SeriesType,
			Timeout:    timeout,
			Retries:    cfg.Provider.Retries,
		})
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Type)
}

func newPrices(cfg *config.Config) (market.PriceSource, error) {
	switch cfg.Provider.Prices {
	case "csv":
		return csvfeed.New(cfg.Provider.CSVDir, cfg.Provider.TimePeriod), nil
	case "yahoo":
		return yahoo.NewQuoter(), nil
	}
	return nil, fmt.Errorf("unknown price source %q", cfg.Provider.Prices)
}

// newBroker logs in to the live venue when one is configured.
func newBroker(ctx context.Context, cfg *config.Config, prices market.PriceSource) (broker.Broker, error) {
	switch cfg.Broker.Type {
	case "paper":
		return paper.New(prices), nil
	case "robinhood":
		c, err := robinhood.New(robinhood.Options{
			BaseURL:  cfg.Broker.BaseURL,
			ClientID: cfg.Broker.ClientID,
			Username: cfg.Secrets.RobinhoodUsername,
			Password: cfg.Secrets.RobinhoodPassword,
			MFACode:  cfg.Secrets.RobinhoodMFA,
		})
		if err != nil {
			return nil, err
		}
		if err := c.Login(ctx); err != nil {
			return nil, fmt.Errorf("robinhood login: %w", err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown broker %q", cfg.Broker.Type)
}

// openJournal opens every configured sink. With "both" the CSV file and
// the SQLite database receive the same records.
func openJournal(cfg *config.Config) (journal.Journal, error) {
	var sinks journal.Multi
	if cfg.Journal.UsesCSV() {
		j, err := journal.NewCSV(cfg.Journal.LogFile)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, j)
	}
	if cfg.Journal.UsesSQLite() {
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, j)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sinks, nil
}

// openQuerier picks the read side of the journal, preferring SQLite.
func openQuerier(cfg *config.Config) (journal.Querier, func() error, error) {
	if cfg.Journal.UsesSQLite() {
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}
		return j, j.Close, nil
	}
	return journal.CSVFile{Path: cfg.Journal.LogFile}, func() error { return nil }, nil
}

func newCharts(cfg *config.Config) runner.ChartWriter {
	if !cfg.Chart.Enabled {
		return nil
	}
	return chart.Writer{
		Dir:          cfg.Chart.Dir,
		MonthsBefore: cfg.Chart.MonthsBefore,
		MonthsAfter:  cfg.Chart.MonthsAfter,
	}
}
