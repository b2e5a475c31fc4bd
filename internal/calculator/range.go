package calculator

import (
	"errors"
	"math"

	"QuantBoard/internal/model"
)

// RecentRange scans the most recent window closes and returns the high and low.
func RecentRange(points []model.PricePoint, window int) (high, low float64, err error) {
	if len(points) == 0 {
		return 0, 0, errors.New("no prices provided")
	}
	if window <= 0 {
		return 0, 0, errors.New("window must be positive")
	}
	n := len(points)
	start := n - window
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		high = math.Max(high, points[i].Close)
		low = math.Min(low, points[i].Close)
	}
	return high, low, nil
}

// ChangePct returns the percentage change from prev to cur, 0 when prev is not positive.
func ChangePct(prev, cur float64) float64 {
	if prev <= 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}
