// Package report turns a finished simulation into a BacktestResult.
package report

import (
	"time"

	"QuantBoard/internal/model"
)

// Input is everything the assembler needs from a finished (or aborted) run.
type Input struct {
	RunID          string
	Start          time.Time
	End            time.Time
	InitialCapital float64
	Trades         []model.Trade
	DailyValues    []model.DailyValuation
	OpenPositions  []model.Position
}

// Assemble aggregates the ledger and valuation curve. It has no side effects.
func Assemble(in Input) *model.BacktestResult {
	res := &model.BacktestResult{
		RunID:          in.RunID,
		Start:          in.Start,
		End:            in.End,
		InitialCapital: in.InitialCapital,
		FinalValue:     model.Round2(in.InitialCapital),
		Trades:         append([]model.Trade{}, in.Trades...),
		DailyValues:    append([]model.DailyValuation{}, in.DailyValues...),
		OpenPositions:  append([]model.Position{}, in.OpenPositions...),
		TradeCount:     len(in.Trades),
	}

	for _, tr := range in.Trades {
		switch tr.Action {
		case model.ActionBuy:
			res.BuyCount++
		case model.ActionSell:
			res.SellCount++
		}
	}

	if n := len(in.DailyValues); n > 0 {
		res.FinalValue = in.DailyValues[n-1].TotalValue
	}
	res.TotalProfit = model.Round2(res.FinalValue - in.InitialCapital)
	res.TotalReturnPct = ReturnPct(res.FinalValue, in.InitialCapital)
	res.Metrics = computeMetrics(in)
	return res
}

// ReturnPct is (value/initial - 1)*100 rounded to 2 places, 0 for a non-positive initial.
func ReturnPct(value, initial float64) float64 {
	if initial <= 0 {
		return 0
	}
	return model.Round2((value/initial - 1) * 100)
}

func computeMetrics(in Input) model.Metrics {
	var m model.Metrics

	var sells, wins int
	var realized float64
	for _, tr := range in.Trades {
		if tr.Action != model.ActionSell {
			continue
		}
		sells++
		realized += tr.Profit
		if tr.Profit > 0 {
			wins++
		}
	}
	if sells > 0 {
		m.WinRate = model.Round2(100 * float64(wins) / float64(sells))
	}
	m.RealizedProfit = model.Round2(realized)

	var unrealized float64
	for _, p := range in.OpenPositions {
		unrealized += p.MarketValue - p.CostBasis*float64(p.Shares)
	}
	m.UnrealizedProfit = model.Round2(unrealized)
	m.MaxDrawdownPct = maxDrawdownPct(in.DailyValues)
	return m
}

// maxDrawdownPct is the largest peak-to-trough fall of the valuation curve, in percent.
func maxDrawdownPct(values []model.DailyValuation) float64 {
	var peak, worst float64
	for _, v := range values {
		if v.TotalValue > peak {
			peak = v.TotalValue
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - v.TotalValue) / peak * 100; dd > worst {
			worst = dd
		}
	}
	return model.Round2(worst)
}
