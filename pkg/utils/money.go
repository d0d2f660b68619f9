package utils

import "github.com/shopspring/decimal"

// RoundPrice rounds a price to two decimal places using half-away-from-zero rounding.
func RoundPrice(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// PercentChange returns (current-previous)/previous*100 rounded to two places, or 0 when previous is 0.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	c := decimal.NewFromFloat(current)
	p := decimal.NewFromFloat(previous)
	f, _ := c.Sub(p).Div(p).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return f
}

// Average returns the mean of values rounded to two places, or 0 for an empty slice.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	f, _ := sum.Div(decimal.NewFromInt(int64(len(values)))).Round(2).Float64()
	return f
}
