package collector

import (
	"fmt"
	"time"

	"QuantBoard/internal/calculator"
	"QuantBoard/internal/model"
)

// DefaultWarmupDays is the calendar lookback fetched before the requested
// start so indicators are populated on the first simulated day.
const DefaultWarmupDays = 90

// Collector orchestrates price fetching and indicator computation.
type Collector struct {
	Fetcher    Fetcher
	Params     calculator.Params
	WarmupDays int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, params calculator.Params, warmupDays int) *Collector {
	if warmupDays < 0 {
		warmupDays = 0
	}
	return &Collector{Fetcher: fetcher, Params: params, WarmupDays: warmupDays}
}

// Collect fetches closes from start-WarmupDays through end and returns one
// indicator frame per trading day, warm-up days included.
func (c *Collector) Collect(code string, start, end time.Time) ([]model.IndicatorFrame, error) {
	from := model.Day(start).AddDate(0, 0, -c.WarmupDays)
	points, err := c.Fetcher.FetchDailyPrices(code, from, model.Day(end))
	if err != nil {
		return nil, fmt.Errorf("fetch %s prices: %w", code, err)
	}
	return calculator.ComputeIndicators(points, c.Params), nil
}
