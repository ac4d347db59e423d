package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rustyeddy/stocktrader/market"
	"github.com/rustyeddy/stocktrader/runner"
	"github.com/rustyeddy/stocktrader/strategies"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	buyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	sellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)
)

func signalStyle(s strategies.Signal) lipgloss.Style {
	switch s {
	case strategies.Buy:
		return buyStyle
	case strategies.Sell:
		return sellStyle
	default:
		return mutedStyle
	}
}

func renderEvents(events []strategies.CrossoverEvent) string {
	if len(events) == 0 {
		return mutedStyle.Render("no crossovers")
	}
	var b strings.Builder
	for _, e := range events {
		fmt.Fprintf(&b, "%s  %s  day=%.4f week=%.4f\n",
			e.Time.Format(market.DateLayout),
			signalStyle(e.Signal).Render(fmt.Sprintf("%-4s", e.Signal)),
			e.Day, e.Week)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderDecision(d strategies.Decision) string {
	line := fmt.Sprintf("%s %s", d.Ticker, signalStyle(d.Action).Render(d.Action.String()))
	if d.Triggered() {
		line += fmt.Sprintf(" on %s at $%.2f", d.EventDate.Format(market.DateLayout), d.CurrentPrice)
	}
	return boxStyle.Render(line)
}

func printSummary(w io.Writer, sum runner.Summary) {
	fmt.Fprintln(w, titleStyle.Render("Daily run "+sum.RunID))
	for _, r := range sum.Results {
		line := r.String()
		switch {
		case r.Err != nil:
			line = errorStyle.Render(line)
		case r.Decision.Triggered():
			line = signalStyle(r.Decision.Action).Render(line)
		default:
			line = mutedStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "%d tickers, %d triggered, %d failed\n",
		len(sum.Results), len(sum.Triggered()), len(sum.Failed()))
}
