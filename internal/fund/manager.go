package fund

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"QuantBoard/internal/model"
)

// LotSize is the minimum tradable share increment.
const LotSize = 100

var (
	ErrBelowLot          = errors.New("order size below one lot")
	ErrInsufficientCash  = errors.New("insufficient cash")
	ErrPositionOpen      = errors.New("position already open")
	ErrNoPosition        = errors.New("no open position")
	ErrNonPositivePrice  = errors.New("price must be positive")
	ErrNonPositiveBudget = errors.New("budget must be positive")
)

// Ledger tracks cash, open positions and the trade history of one backtest.
// A Ledger is owned by a single run and is not safe for concurrent use.
type Ledger struct {
	initial   float64
	cash      float64
	positions map[string]*model.Position
	trades    []model.Trade
}

// NewLedger creates a Ledger holding only cash.
func NewLedger(initialCapital float64) *Ledger {
	return &Ledger{
		initial:   initialCapital,
		cash:      initialCapital,
		positions: make(map[string]*model.Position),
	}
}

// InitialCapital returns the starting cash.
func (l *Ledger) InitialCapital() float64 { return l.initial }

// Cash returns the uninvested balance at full precision.
func (l *Ledger) Cash() float64 { return l.cash }

// OpenCount returns the number of open positions.
func (l *Ledger) OpenCount() int { return len(l.positions) }

// Holding reports whether code has an open position.
func (l *Ledger) Holding(code string) bool {
	_, ok := l.positions[code]
	return ok
}

// LotShares returns how many shares budget buys at price, floored to whole lots.
func LotShares(budget, price float64) int64 {
	if budget <= 0 || price <= 0 {
		return 0
	}
	lots := decimal.NewFromFloat(budget).
		Div(decimal.NewFromFloat(price)).
		Div(decimal.NewFromInt(LotSize)).
		Floor()
	return lots.IntPart() * LotSize
}

// Buy opens a position in inst sized from budget at price.
// Orders that round below one lot or cost more than the cash balance are rejected.
func (l *Ledger) Buy(date time.Time, inst model.Instrument, price, budget float64, reason string) (model.Trade, error) {
	if price <= 0 {
		return model.Trade{}, ErrNonPositivePrice
	}
	if budget <= 0 {
		return model.Trade{}, ErrNonPositiveBudget
	}
	if l.Holding(inst.Code) {
		return model.Trade{}, fmt.Errorf("buy %s: %w", inst.Code, ErrPositionOpen)
	}
	shares := LotShares(budget, price)
	if shares < LotSize {
		return model.Trade{}, fmt.Errorf("buy %s: %w", inst.Code, ErrBelowLot)
	}
	cost := float64(shares) * price
	if cost > l.cash {
		return model.Trade{}, fmt.Errorf("buy %s: cost %.2f > cash %.2f: %w", inst.Code, cost, l.cash, ErrInsufficientCash)
	}

	l.cash -= cost
	l.positions[inst.Code] = &model.Position{
		Code:      inst.Code,
		Name:      inst.Name,
		Shares:    shares,
		CostBasis: price,
	}
	tr := model.Trade{
		Date:   date,
		Action: model.ActionBuy,
		Code:   inst.Code,
		Name:   inst.Name,
		Price:  model.Round2(price),
		Shares: shares,
		Amount: model.Round2(cost),
		Reason: reason,
	}
	l.trades = append(l.trades, tr)
	return tr, nil
}

// Sell liquidates the whole position in code at price and realizes its profit.
func (l *Ledger) Sell(date time.Time, code string, price float64, reason string) (model.Trade, error) {
	if price <= 0 {
		return model.Trade{}, ErrNonPositivePrice
	}
	pos, ok := l.positions[code]
	if !ok {
		return model.Trade{}, fmt.Errorf("sell %s: %w", code, ErrNoPosition)
	}
	proceeds := float64(pos.Shares) * price
	l.cash += proceeds
	delete(l.positions, code)

	tr := model.Trade{
		Date:   date,
		Action: model.ActionSell,
		Code:   code,
		Name:   pos.Name,
		Price:  model.Round2(price),
		Shares: pos.Shares,
		Amount: model.Round2(proceeds),
		Profit: model.Round2((price - pos.CostBasis) * float64(pos.Shares)),
		Reason: reason,
	}
	l.trades = append(l.trades, tr)
	return tr, nil
}

// Value returns cash plus every position marked at prices. A position with
// no entry in prices is carried at its cost basis.
func (l *Ledger) Value(prices map[string]float64) float64 {
	total := l.cash
	for _, code := range l.codes() {
		pos := l.positions[code]
		total += float64(pos.Shares) * markPrice(pos, prices[code])
	}
	return total
}

// Positions returns marked-to-market copies of the open positions, ordered by code.
func (l *Ledger) Positions(prices map[string]float64) []model.Position {
	out := make([]model.Position, 0, len(l.positions))
	for _, code := range l.codes() {
		pos := l.positions[code]
		p := *pos
		last := markPrice(pos, prices[code])
		p.CostBasis = model.Round2(p.CostBasis)
		p.LastPrice = model.Round2(last)
		p.MarketValue = model.Round2(float64(p.Shares) * last)
		out = append(out, p)
	}
	return out
}

// Trades returns a copy of the ledger in execution order.
func (l *Ledger) Trades() []model.Trade {
	return append([]model.Trade(nil), l.trades...)
}

// codes returns the open position codes in ascending order. Summing in a
// fixed order keeps valuations bit-identical between runs.
func (l *Ledger) codes() []string {
	return slices.Sorted(maps.Keys(l.positions))
}

func markPrice(pos *model.Position, last float64) float64 {
	if last > 0 {
		return last
	}
	return pos.CostBasis
}
