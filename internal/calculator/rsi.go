package calculator

import "math"

// NeutralRSI is reported wherever the RSI window has not filled: indices
// 0..period-1 of RSISeries, since the first value needs period+1 closes.
const NeutralRSI = 50.0

// rsiEpsilon replaces a zero average loss.
const rsiEpsilon = 0.001

// RSISeries computes the Wilder-smoothed RSI for every index of closes.
// The first value is computed at index period, from the averages of the first
// period changes; earlier indices are NeutralRSI. With fewer than period+1
// closes every index is NeutralRSI.
func RSISeries(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = NeutralRSI
	}
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	// Initial average gain/loss over the first `period` changes
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsi(avgGain, avgLoss)

	// Wilder smoothing for remaining closes
	for i := period + 1; i < len(closes); i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsi(avgGain, avgLoss)
	}
	return out
}

// CalculateRSI returns the latest RSI of closes, NeutralRSI if data is insufficient.
func CalculateRSI(closes []float64, period int) float64 {
	series := RSISeries(closes, period)
	if len(series) == 0 {
		return NeutralRSI
	}
	return series[len(series)-1]
}

func split(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func rsi(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		avgLoss = rsiEpsilon
	}
	v := 100.0 - 100.0/(1.0+avgGain/avgLoss)
	if math.IsNaN(v) {
		return NeutralRSI
	}
	return math.Max(0, math.Min(100, v))
}
