package strategies

import (
	"fmt"
	"strings"
)

type Signal int

const (
	None Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "NONE"
	}
}

// ParseSignal is the inverse of String.
func ParseSignal(s string) (Signal, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	case "NONE", "":
		return None, nil
	default:
		return None, fmt.Errorf("unknown signal %q", s)
	}
}

// sign returns -1, 0 or +1. NaN has no sign.
func sign(x float64) int {
	switch {
	case x > 0:
		return +1
	case x < 0:
		return -1
	default:
		return 0
	}
}
