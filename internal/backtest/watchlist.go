package backtest

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"QuantBoard/internal/calculator"
	"QuantBoard/internal/model"
	"QuantBoard/internal/strategy"
	"QuantBoard/internal/universe"
)

// Watchlist builds the snapshot view as of asOf: one quote per instrument
// with its latest close, daily change, recent range and RSI, classified by
// the engine's snapshot rules.
func (e *Engine) Watchlist(instruments []model.Instrument, asOf time.Time) (*model.Snapshot, error) {
	if err := e.Config.Validate(); err != nil {
		return nil, err
	}
	asOf = model.Day(asOf)
	from := asOf.AddDate(0, 0, -e.Config.WarmupDays)
	p := e.Config.params()

	quotes := make([]model.Quote, 0, len(instruments))
	changes := make([]model.PriceChange, 0, len(instruments))
	for _, inst := range universe.Sorted(instruments) {
		points, err := e.Fetcher.FetchDailyPrices(inst.Code, from, asOf)
		if err != nil {
			return nil, fmt.Errorf("fetch %s prices: %w", inst.Code, err)
		}
		if len(points) < 2 {
			e.logger().Debug("quote skipped", zap.String("code", inst.Code), zap.Int("points", len(points)))
			continue
		}
		q, err := e.quote(inst, points, p.LongWindow, p.RSIPeriod)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
		changes = append(changes, model.PriceChange{Code: q.Code, ChangePct: q.ChangePct})
	}

	sig := strategy.SnapshotSignals(changes, e.Rules)
	snap := &model.Snapshot{
		AsOf:       asOf,
		Quotes:     quotes,
		BuyQuotes:  pick(quotes, sig.BuyCandidates),
		SellQuotes: pick(quotes, sig.SellCandidates),
		Stats:      strategy.Summarize(quotes),
	}
	return snap, nil
}

func (e *Engine) quote(inst model.Instrument, points []model.PricePoint, window, rsiPeriod int) (model.Quote, error) {
	n := len(points)
	last := points[n-1].Close
	high, low, err := calculator.RecentRange(points, window)
	if err != nil {
		return model.Quote{}, fmt.Errorf("range %s: %w", inst.Code, err)
	}
	closes := make([]float64, n)
	for i, pt := range points {
		closes[i] = pt.Close
	}

	q := model.Quote{
		Code:      inst.Code,
		Name:      inst.Name,
		Price:     last,
		ChangePct: model.Round2(calculator.ChangePct(points[n-2].Close, last)),
		High:      high,
		Low:       low,
		RSI:       model.Round2(calculator.CalculateRSI(closes, rsiPeriod)),
	}
	if action, reason, ok := strategy.Classify(q.ChangePct, e.Rules); ok {
		q.Signal = string(action)
		q.Reason = reason
	}
	return q, nil
}

// pick returns the quotes whose codes appear in candidates, in candidate order.
func pick(quotes []model.Quote, candidates []model.PriceChange) []model.Quote {
	byCode := make(map[string]model.Quote, len(quotes))
	for _, q := range quotes {
		byCode[q.Code] = q
	}
	out := make([]model.Quote, 0, len(candidates))
	for _, c := range candidates {
		if q, ok := byCode[c.Code]; ok {
			out = append(out, q)
		}
	}
	return out
}
