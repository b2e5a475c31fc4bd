package calculator

import "errors"

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMASeries returns, for each index, the average of the period closes ending
// there. Entries are nil until period closes are available.
func SMASeries(closes []float64, period int) []*float64 {
	out := make([]*float64, len(closes))
	for i := range closes {
		v, err := CalculateSMA(closes[:i+1], period)
		if err != nil {
			continue
		}
		out[i] = &v
	}
	return out
}
