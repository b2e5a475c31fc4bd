package model

import "time"

// Action is the side of a trade or signal.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Reason tags attached to signals and trades.
const (
	ReasonGoldenCross   = "MA golden cross"
	ReasonDeathCross    = "MA death cross"
	ReasonRSIOverbought = "RSI overbought"
	ReasonSurge         = "daily change above buy threshold"
	ReasonDrop          = "daily change below sell threshold"
)

// Signal is a buy or sell candidate for one instrument.
type Signal struct {
	Code   string
	Action Action
	Reason string
}

// PriceChange is the input of the stateless snapshot classifier.
type PriceChange struct {
	Code      string  `json:"code"`
	ChangePct float64 `json:"change_pct"`
}

// Quote is one row of the live watchlist.
type Quote struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	RSI       float64 `json:"rsi"`
	Signal    string  `json:"signal,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// SnapshotSignals splits a watchlist into buy and sell candidates.
type SnapshotSignals struct {
	BuyCandidates  []PriceChange `json:"buy_signals"`
	SellCandidates []PriceChange `json:"sell_signals"`
}

// SnapshotStats summarises the direction of the watchlist.
type SnapshotStats struct {
	Total        int     `json:"total"`
	Up           int     `json:"up"`
	Down         int     `json:"down"`
	Flat         int     `json:"flat"`
	AvgChangePct float64 `json:"avg_change_pct"`
}

// Snapshot is the watchlist view as of one trading day.
type Snapshot struct {
	AsOf       time.Time     `json:"update_time"`
	Quotes     []Quote       `json:"stocks"`
	BuyQuotes  []Quote       `json:"buy_signals"`
	SellQuotes []Quote       `json:"sell_signals"`
	Stats      SnapshotStats `json:"stats"`
}
