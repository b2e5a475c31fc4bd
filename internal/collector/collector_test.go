package collector

import (
	"errors"
	"math"
	"testing"
	"time"

	"QuantBoard/internal/calculator"
	"QuantBoard/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestGenerate_Deterministic(t *testing.T) {
	g := NewGenerator()
	start, end := mustDate(t, "2026-01-01"), mustDate(t, "2026-03-31")
	a := g.Generate("600519", start, end)
	b := g.Generate("600519", start, end)
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("expected equal non-empty series, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d differs: %v vs %v", i, a[i], b[i])
		}
	}
	other := g.Generate("000858", start, end)
	if other[0].Close == a[0].Close && other[1].Close == a[1].Close {
		t.Error("different codes should give different series")
	}
}

func TestGenerate_WeekdaysOnly(t *testing.T) {
	pts := NewGenerator().Generate("600519", mustDate(t, "2026-02-02"), mustDate(t, "2026-02-09"))
	if len(pts) != 6 {
		t.Fatalf("expected 6 weekdays, got %d", len(pts))
	}
	for _, p := range pts {
		if !model.IsTradingDay(p.Date) {
			t.Errorf("weekend date emitted: %s", p.Date.Format(model.DateLayout))
		}
	}
}

func TestGenerate_PricesPositiveAndRounded(t *testing.T) {
	pts := NewGenerator().Generate("300750", mustDate(t, "2024-01-01"), mustDate(t, "2026-01-01"))
	first := pts[0].Close
	if first < 15 || first > 55 {
		t.Errorf("first price %v outside [15,55]", first)
	}
	for _, p := range pts {
		if p.Close <= 0 {
			t.Fatalf("non-positive price on %s", p.Date.Format(model.DateLayout))
		}
		if cents := p.Close * 100; math.Abs(cents-math.Round(cents)) > 1e-6 {
			t.Fatalf("price %v not rounded to 2 places", p.Close)
		}
	}
}

func TestSeries_Restartable(t *testing.T) {
	seq := NewGenerator().Series("601318", mustDate(t, "2026-01-05"), mustDate(t, "2026-02-27"))
	var first, second []model.PricePoint
	for p := range seq {
		first = append(first, p)
	}
	for p := range seq {
		second = append(second, p)
		if len(second) == 3 {
			break
		}
	}
	if len(second) != 3 {
		t.Fatalf("expected early stop after 3, got %d", len(second))
	}
	for i := range second {
		if second[i] != first[i] {
			t.Errorf("restart differs at %d", i)
		}
	}
}

func TestGenerate_EmptyWhenEndBeforeStart(t *testing.T) {
	pts := NewGenerator().Generate("600519", mustDate(t, "2026-02-09"), mustDate(t, "2026-02-02"))
	if len(pts) != 0 {
		t.Errorf("expected empty series, got %d points", len(pts))
	}
}

func TestRand_UnitInterval(t *testing.T) {
	seed := Seed("600519")
	for i := 0; i < 10000; i++ {
		v := Rand(seed, i)
		if v < 0 || v >= 1 {
			t.Fatalf("Rand out of range at %d: %v", i, v)
		}
	}
	if Rand(seed, 7) != Rand(seed, 7) {
		t.Error("Rand must be a pure function of seed and index")
	}
}

type failingFetcher struct{}

func (failingFetcher) Name() string { return "failing" }
func (failingFetcher) FetchDailyPrices(string, time.Time, time.Time) ([]model.PricePoint, error) {
	return nil, errors.New("boom")
}

func TestCollect_IncludesWarmup(t *testing.T) {
	c := NewCollector(NewSyntheticFetcher(), calculator.DefaultParams(), DefaultWarmupDays)
	start, end := mustDate(t, "2026-02-02"), mustDate(t, "2026-02-09")
	frames, err := c.Collect("600519", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frames) <= 20 {
		t.Fatalf("expected warm-up history, got %d frames", len(frames))
	}
	last := frames[len(frames)-1]
	if !last.Date.Equal(end) {
		t.Errorf("expected last frame on %s, got %s", end.Format(model.DateLayout), last.Date.Format(model.DateLayout))
	}
	if !last.HasMA() {
		t.Error("expected moving averages on the last frame")
	}
}

func TestCollect_WrapsFetchError(t *testing.T) {
	c := NewCollector(failingFetcher{}, calculator.DefaultParams(), 0)
	if _, err := c.Collect("600519", time.Now(), time.Now()); err == nil {
		t.Error("expected error from failing fetcher")
	}
}
