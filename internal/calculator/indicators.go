package calculator

import "QuantBoard/internal/model"

// Params selects the indicator windows.
type Params struct {
	ShortWindow int
	LongWindow  int
	RSIPeriod   int
}

// DefaultParams returns the 5/20 moving averages and the 14-period RSI.
func DefaultParams() Params {
	return Params{ShortWindow: 5, LongWindow: 20, RSIPeriod: 14}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.ShortWindow <= 0 {
		p.ShortWindow = d.ShortWindow
	}
	if p.LongWindow <= 0 {
		p.LongWindow = d.LongWindow
	}
	if p.RSIPeriod <= 0 {
		p.RSIPeriod = d.RSIPeriod
	}
	return p
}

// ComputeIndicators returns one frame per price point, in input order.
// Values at index i depend only on points[0..i].
func ComputeIndicators(points []model.PricePoint, p Params) []model.IndicatorFrame {
	closes := make([]float64, len(points))
	for i, pt := range points {
		closes[i] = pt.Close
	}
	frames := ComputeFromCloses(closes, p)
	for i := range frames {
		frames[i].Date = points[i].Date
	}
	return frames
}

// ComputeFromCloses is ComputeIndicators over bare closes; frame dates are zero.
func ComputeFromCloses(closes []float64, p Params) []model.IndicatorFrame {
	p = p.withDefaults()
	short := SMASeries(closes, p.ShortWindow)
	long := SMASeries(closes, p.LongWindow)
	rsi := RSISeries(closes, p.RSIPeriod)

	frames := make([]model.IndicatorFrame, len(closes))
	for i, c := range closes {
		frames[i] = model.IndicatorFrame{
			Close:   c,
			MAShort: short[i],
			MALong:  long[i],
			RSI:     rsi[i],
		}
	}
	return frames
}
