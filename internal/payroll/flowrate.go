package payroll

import (
	"fmt"
	"math/big"
	"strings"
)

// SecondsPerMonth is the 30-day month the dashboard uses for flow rates.
const SecondsPerMonth = 2592000

var weiPerToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// FlowRatePerMonth converts a wei/second flow rate into tokens per month,
// rendered with at most nine decimals and no trailing zeros.
func FlowRatePerMonth(weiPerSecond string) (string, error) {
	rate, ok := new(big.Int).SetString(strings.TrimSpace(weiPerSecond), 10)
	if !ok {
		return "", fmt.Errorf("invalid flow rate: %q", weiPerSecond)
	}

	monthly := new(big.Rat).SetFrac(
		new(big.Int).Mul(rate, big.NewInt(SecondsPerMonth)),
		weiPerToken,
	)
	out := monthly.FloatString(9)
	out = strings.TrimRight(out, "0")
	out = strings.TrimSuffix(out, ".")
	if out == "-0" {
		out = "0"
	}
	return out, nil
}

// FlowRatePerSecond converts a tokens-per-month amount into a wei/second flow rate.
// The division truncates toward zero.
func FlowRatePerSecond(tokensPerMonth string) (*big.Int, error) {
	amount, ok := new(big.Rat).SetString(strings.TrimSpace(tokensPerMonth))
	if !ok {
		return nil, fmt.Errorf("invalid amount: %q", tokensPerMonth)
	}

	wei := new(big.Rat).Mul(amount, new(big.Rat).SetInt(weiPerToken))
	if !wei.IsInt() {
		return nil, fmt.Errorf("amount has more than 18 decimals: %q", tokensPerMonth)
	}
	return new(big.Int).Quo(wei.Num(), big.NewInt(SecondsPerMonth)), nil
}
