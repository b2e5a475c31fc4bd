package collector

import (
	"hash/fnv"
	"iter"
	"slices"
	"time"

	"QuantBoard/internal/model"
)

// Generator synthesizes reproducible daily closes. The walk is
//
//	p0 = Base + Span*u0
//	pi = pi-1 * (1 + (ui - Bias)*Step)
//
// where ui = Rand(Seed(code), i). Output depends only on the code and the range.
type Generator struct {
	Base float64
	Span float64
	Bias float64
	Step float64
}

// NewGenerator returns a Generator with the default walk constants.
func NewGenerator() *Generator {
	return &Generator{Base: 15, Span: 40, Bias: 0.48, Step: 0.06}
}

// Seed derives an instrument seed from its code (FNV-1a).
func Seed(code string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(code))
	return h.Sum64()
}

// Rand returns a uniform value in [0,1) for the i-th draw of seed.
// It is a stateless splitmix64 finalizer, so any draw can be recomputed.
func Rand(seed uint64, i int) float64 {
	x := seed + uint64(i+1)*0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	x ^= x >> 31
	return float64(x>>11) / (1 << 53)
}

// Series returns a lazy sequence of weekday closes in [start, end].
// Each range over the sequence restarts the walk from the first day.
func (g *Generator) Series(code string, start, end time.Time) iter.Seq[model.PricePoint] {
	seed := Seed(code)
	start, end = model.Day(start), model.Day(end)
	return func(yield func(model.PricePoint) bool) {
		price := g.Base + g.Span*Rand(seed, 0)
		i := 0
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if !model.IsTradingDay(d) {
				continue
			}
			if i > 0 {
				price *= 1 + (Rand(seed, i)-g.Bias)*g.Step
			}
			if !yield(model.PricePoint{Date: d, Close: model.Round2(price)}) {
				return
			}
			i++
		}
	}
}

// Generate collects Series into a slice.
func (g *Generator) Generate(code string, start, end time.Time) []model.PricePoint {
	return slices.Collect(g.Series(code, start, end))
}

// SyntheticFetcher serves generated prices through the Fetcher interface.
type SyntheticFetcher struct {
	Generator *Generator
}

// NewSyntheticFetcher creates a fetcher over the default generator.
func NewSyntheticFetcher() *SyntheticFetcher {
	return &SyntheticFetcher{Generator: NewGenerator()}
}

func (f *SyntheticFetcher) Name() string { return "synthetic" }

func (f *SyntheticFetcher) FetchDailyPrices(code string, start, end time.Time) ([]model.PricePoint, error) {
	return f.Generator.Generate(code, start, end), nil
}
