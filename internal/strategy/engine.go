// Package strategy classifies indicator transitions and daily moves into
// buy and sell candidates.
package strategy

import "QuantBoard/internal/model"

// Thresholds bound the RSI filter of the crossover strategy.
type Thresholds struct {
	RSIBuyCeiling float64 // buy only while RSI is below this
	RSISellFloor  float64 // sell a held position once RSI is above this
}

// DefaultThresholds returns the 70/80 RSI filter.
func DefaultThresholds() Thresholds {
	return Thresholds{RSIBuyCeiling: 70, RSISellFloor: 80}
}

// DetectBuy reports a golden cross on cur filtered by RSI.
func DetectBuy(code string, prev, cur model.IndicatorFrame, th Thresholds) (model.Signal, bool) {
	if !prev.HasMA() || !cur.HasMA() {
		return model.Signal{}, false
	}
	crossedUp := *prev.MAShort <= *prev.MALong && *cur.MAShort > *cur.MALong
	if crossedUp && cur.RSI < th.RSIBuyCeiling {
		return model.Signal{Code: code, Action: model.ActionBuy, Reason: model.ReasonGoldenCross}, true
	}
	return model.Signal{}, false
}

// DetectSell reports a death cross, or failing that an overbought RSI.
// It is only meaningful for an instrument with an open position. Like
// DetectBuy it stays silent while either frame lacks a moving average, so
// the RSI rule is gated too; a position only opens once both averages
// exist and they never disappear afterwards, so this never suppresses a sell.
func DetectSell(code string, prev, cur model.IndicatorFrame, th Thresholds) (model.Signal, bool) {
	if !prev.HasMA() || !cur.HasMA() {
		return model.Signal{}, false
	}
	if *prev.MAShort >= *prev.MALong && *cur.MAShort < *cur.MALong {
		return model.Signal{Code: code, Action: model.ActionSell, Reason: model.ReasonDeathCross}, true
	}
	if cur.RSI > th.RSISellFloor {
		return model.Signal{Code: code, Action: model.ActionSell, Reason: model.ReasonRSIOverbought}, true
	}
	return model.Signal{}, false
}

// Evaluate applies the sell rules when holding and the buy rules otherwise.
func Evaluate(code string, prev, cur model.IndicatorFrame, holding bool, th Thresholds) (model.Signal, bool) {
	if holding {
		return DetectSell(code, prev, cur, th)
	}
	return DetectBuy(code, prev, cur, th)
}
