package model

import "time"

// IndicatorFrame holds the indicator values for one instrument on one day.
// MAShort and MALong are nil until enough history has accumulated.
type IndicatorFrame struct {
	Date    time.Time
	Close   float64
	MAShort *float64
	MALong  *float64
	RSI     float64
}

// HasMA reports whether both moving averages are available.
func (f IndicatorFrame) HasMA() bool {
	return f.MAShort != nil && f.MALong != nil
}
