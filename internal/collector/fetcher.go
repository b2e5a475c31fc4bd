package collector

import (
	"time"

	"QuantBoard/internal/model"
)

// Fetcher defines the interface for fetching daily close prices.
type Fetcher interface {
	FetchDailyPrices(code string, start, end time.Time) ([]model.PricePoint, error)
	Name() string
}
