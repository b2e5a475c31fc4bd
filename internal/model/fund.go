package model

import "time"

// Position is an open holding. Shares is always a positive multiple of the lot size.
type Position struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Shares      int64   `json:"shares"`
	CostBasis   float64 `json:"cost_basis"`
	LastPrice   float64 `json:"last_price"`
	MarketValue float64 `json:"market_value"`
}

// Trade is one executed ledger entry. Profit is zero for buys.
type Trade struct {
	Date   time.Time `json:"date"`
	Action Action    `json:"action"`
	Code   string    `json:"code"`
	Name   string    `json:"name"`
	Price  float64   `json:"price"`
	Shares int64     `json:"shares"`
	Amount float64   `json:"amount"`
	Profit float64   `json:"profit"`
	Reason string    `json:"reason"`
}

// DailyValuation is the marked-to-market portfolio value at one day's close.
type DailyValuation struct {
	Date       time.Time `json:"date"`
	TotalValue float64   `json:"total_value"`
	ProfitPct  float64   `json:"profit_pct"`
}

// Metrics are summary statistics derived from the ledger and the valuation curve.
type Metrics struct {
	WinRate          float64 `json:"win_rate"`
	MaxDrawdownPct   float64 `json:"max_drawdown_pct"`
	RealizedProfit   float64 `json:"realized_profit"`
	UnrealizedProfit float64 `json:"unrealized_profit"`
}

// BacktestResult is the complete output of one backtest run.
type BacktestResult struct {
	RunID          string           `json:"run_id"`
	Start          time.Time        `json:"start"`
	End            time.Time        `json:"end"`
	InitialCapital float64          `json:"initial_capital"`
	FinalValue     float64          `json:"final_value"`
	TotalProfit    float64          `json:"total_profit"`
	TotalReturnPct float64          `json:"total_return_pct"`
	Trades         []Trade          `json:"trades"`
	DailyValues    []DailyValuation `json:"daily_values"`
	OpenPositions  []Position       `json:"open_positions"`
	TradeCount     int              `json:"trade_count"`
	BuyCount       int              `json:"buy_count"`
	SellCount      int              `json:"sell_count"`
	Metrics        Metrics          `json:"metrics"`
}
