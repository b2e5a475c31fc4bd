package model

import "github.com/shopspring/decimal"

// Round2 rounds a monetary figure to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
