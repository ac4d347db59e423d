package cmd

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"

	"github.com/rustyeddy/stocktrader/strategies"
)

// promptConfirmer asks on the terminal before each order.
type promptConfirmer struct {
	quantity int
}

func (p promptConfirmer) Confirm(ctx context.Context, d strategies.Decision) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	ok := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("%s %d %s at about $%.2f?", d.Action, p.quantity, d.Ticker, d.CurrentPrice),
		Default: false,
	}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, err
	}
	return ok, nil
}
