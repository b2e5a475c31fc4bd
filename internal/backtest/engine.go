// Package backtest replays the crossover strategy over synthetic history
// and records the resulting ledger and valuation curve.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"QuantBoard/internal/collector"
	"QuantBoard/internal/fund"
	"QuantBoard/internal/model"
	"QuantBoard/internal/report"
	"QuantBoard/internal/strategy"
	"QuantBoard/internal/universe"
)

// Engine runs backtests and watchlist snapshots against one price source.
type Engine struct {
	Config  Config
	Fetcher collector.Fetcher
	Rules   strategy.SnapshotRules
	Logger  *zap.Logger
}

// NewEngine creates an Engine. A nil logger is replaced by a no-op one.
func NewEngine(cfg Config, fetcher collector.Fetcher, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		Config:  cfg,
		Fetcher: fetcher,
		Rules:   strategy.DefaultSnapshotRules(),
		Logger:  logger,
	}
}

// series is one instrument's indicator history with a date index.
type series struct {
	inst   model.Instrument
	frames []model.IndicatorFrame
	index  map[time.Time]int
}

// Run simulates the strategy over [start, end] for the given universe.
//
// The first trading day only records the opening valuation. Every later day
// values the portfolio at the close, then executes sells, then buys in
// ascending instrument code until MaxPositions are open. If ctx is cancelled
// Run stops before the next day and returns the partial result with ctx.Err().
func (e *Engine) Run(ctx context.Context, instruments []model.Instrument, start, end time.Time) (*model.BacktestResult, error) {
	cfg := e.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := e.logger()
	start, end = model.Day(start), model.Day(end)

	data, err := e.load(instruments, start, end)
	if err != nil {
		return nil, err
	}
	calendar := tradingCalendar(data, start, end)

	runID := uuid.NewString()
	ledger := fund.NewLedger(cfg.InitialCapital)
	th := cfg.thresholds()
	lastClose := make(map[string]float64, len(data))
	var values []model.DailyValuation

	finish := func() *model.BacktestResult {
		return report.Assemble(report.Input{
			RunID:          runID,
			Start:          start,
			End:            end,
			InitialCapital: cfg.InitialCapital,
			Trades:         ledger.Trades(),
			DailyValues:    values,
			OpenPositions:  ledger.Positions(lastClose),
		})
	}

	log.Info("backtest started",
		zap.String("run_id", runID),
		zap.String("start", start.Format(model.DateLayout)),
		zap.String("end", end.Format(model.DateLayout)),
		zap.Int("instruments", len(data)),
		zap.Int("trading_days", len(calendar)),
	)

	for d, day := range calendar {
		if err := ctx.Err(); err != nil {
			log.Warn("backtest cancelled", zap.String("run_id", runID), zap.Int("days_done", d), zap.Error(err))
			return finish(), err
		}

		for _, s := range data {
			lastClose[s.inst.Code] = s.frames[s.index[day]].Close
		}
		total := ledger.Value(lastClose)
		values = append(values, model.DailyValuation{
			Date:       day,
			TotalValue: model.Round2(total),
			ProfitPct:  report.ReturnPct(total, cfg.InitialCapital),
		})
		if d == 0 {
			continue
		}

		soldToday := make(map[string]bool)
		for _, s := range data {
			code := s.inst.Code
			if !ledger.Holding(code) {
				continue
			}
			prev, cur, ok := s.window(day)
			if !ok {
				continue
			}
			sig, ok := strategy.Evaluate(code, prev, cur, ledger.Holding(code), th)
			if !ok {
				continue
			}
			tr, err := ledger.Sell(day, code, cur.Close, sig.Reason)
			if err != nil {
				log.Debug("sell skipped", zap.String("code", code), zap.Error(err))
				continue
			}
			soldToday[code] = true
			log.Debug("sell executed", zap.String("code", code), zap.Float64("price", tr.Price), zap.Float64("profit", tr.Profit), zap.String("reason", tr.Reason))
		}

		for _, s := range data {
			if ledger.OpenCount() >= cfg.MaxPositions {
				break
			}
			code := s.inst.Code
			if ledger.Holding(code) || soldToday[code] {
				continue
			}
			prev, cur, ok := s.window(day)
			if !ok {
				continue
			}
			sig, ok := strategy.Evaluate(code, prev, cur, ledger.Holding(code), th)
			if !ok {
				continue
			}
			budget := ledger.Cash() * cfg.PositionSizeFraction
			tr, err := ledger.Buy(day, s.inst, cur.Close, budget, sig.Reason)
			if err != nil {
				log.Debug("buy skipped", zap.String("code", code), zap.Float64("budget", budget), zap.Error(err))
				continue
			}
			log.Debug("buy executed", zap.String("code", code), zap.Float64("price", tr.Price), zap.Int64("shares", tr.Shares))
		}
	}

	res := finish()
	log.Info("backtest finished",
		zap.String("run_id", runID),
		zap.Float64("final_value", res.FinalValue),
		zap.Float64("return_pct", res.TotalReturnPct),
		zap.Int("trades", res.TradeCount),
		zap.Int("open_positions", len(res.OpenPositions)),
	)
	return res, nil
}

// load collects indicator frames for every instrument in ascending code
// order, dropping those too short to ever produce a long moving average.
func (e *Engine) load(instruments []model.Instrument, start, end time.Time) ([]series, error) {
	c := collector.NewCollector(e.Fetcher, e.Config.params(), e.Config.WarmupDays)
	var out []series
	for _, inst := range universe.Sorted(instruments) {
		frames, err := c.Collect(inst.Code, start, end)
		if err != nil {
			return nil, fmt.Errorf("collect %s: %w", inst.Code, err)
		}
		if len(frames) < e.Config.LongWindow {
			e.logger().Debug("instrument excluded", zap.String("code", inst.Code), zap.Int("frames", len(frames)))
			continue
		}
		idx := make(map[time.Time]int, len(frames))
		for i, f := range frames {
			idx[model.Day(f.Date)] = i
		}
		out = append(out, series{inst: inst, frames: frames, index: idx})
	}
	return out, nil
}

// window returns the frames of the trading day before day and of day itself.
func (s series) window(day time.Time) (prev, cur model.IndicatorFrame, ok bool) {
	i, found := s.index[day]
	if !found || i == 0 {
		return prev, cur, false
	}
	return s.frames[i-1], s.frames[i], true
}

// tradingCalendar returns the dates in [start, end] that every series has, ascending.
func tradingCalendar(data []series, start, end time.Time) []time.Time {
	if len(data) == 0 {
		return nil
	}
	var days []time.Time
	for _, f := range data[0].frames {
		day := model.Day(f.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		shared := true
		for _, s := range data[1:] {
			if _, ok := s.index[day]; !ok {
				shared = false
				break
			}
		}
		if shared {
			days = append(days, day)
		}
	}
	return days
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
