package strategy

import "QuantBoard/internal/model"

// SnapshotRules are the daily-change thresholds of the watchlist view, in percent.
type SnapshotRules struct {
	BuyAbovePct  float64
	SellBelowPct float64
}

// DefaultSnapshotRules flags moves above +3% as buys and below -2% as sells.
func DefaultSnapshotRules() SnapshotRules {
	return SnapshotRules{BuyAbovePct: 3, SellBelowPct: -2}
}

// Classify maps one daily change to a snapshot signal.
func Classify(changePct float64, rules SnapshotRules) (model.Action, string, bool) {
	switch {
	case changePct > rules.BuyAbovePct:
		return model.ActionBuy, model.ReasonSurge, true
	case changePct < rules.SellBelowPct:
		return model.ActionSell, model.ReasonDrop, true
	default:
		return "", "", false
	}
}

// SnapshotSignals splits latest price changes into buy and sell candidates,
// preserving input order. It keeps no state between calls.
func SnapshotSignals(changes []model.PriceChange, rules SnapshotRules) model.SnapshotSignals {
	out := model.SnapshotSignals{
		BuyCandidates:  []model.PriceChange{},
		SellCandidates: []model.PriceChange{},
	}
	for _, c := range changes {
		action, _, ok := Classify(c.ChangePct, rules)
		if !ok {
			continue
		}
		if action == model.ActionBuy {
			out.BuyCandidates = append(out.BuyCandidates, c)
		} else {
			out.SellCandidates = append(out.SellCandidates, c)
		}
	}
	return out
}

// Summarize counts rising, falling and flat quotes and averages their change.
func Summarize(quotes []model.Quote) model.SnapshotStats {
	stats := model.SnapshotStats{Total: len(quotes)}
	if len(quotes) == 0 {
		return stats
	}
	sum := 0.0
	for _, q := range quotes {
		switch {
		case q.ChangePct > 0:
			stats.Up++
		case q.ChangePct < 0:
			stats.Down++
		default:
			stats.Flat++
		}
		sum += q.ChangePct
	}
	stats.AvgChangePct = model.Round2(sum / float64(len(quotes)))
	return stats
}
