package backtest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"QuantBoard/internal/model"
)

// SweepRun is one parameter set of a sweep.
type SweepRun struct {
	Name   string
	Config Config
	Start  time.Time
	End    time.Time
}

// Sweep runs independent backtests concurrently, at most workers at a time,
// and returns their results in the order of runs. Each run owns its ledger;
// only the fetcher is shared, so it must be safe for concurrent use.
func (e *Engine) Sweep(ctx context.Context, instruments []model.Instrument, runs []SweepRun, workers int) ([]*model.BacktestResult, error) {
	for _, r := range runs {
		if err := r.Config.Validate(); err != nil {
			return nil, fmt.Errorf("sweep run %q: %w", r.Name, err)
		}
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]*model.BacktestResult, len(runs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, r := range runs {
		g.Go(func() error {
			eng := &Engine{
				Config:  r.Config,
				Fetcher: e.Fetcher,
				Rules:   e.Rules,
				Logger:  e.logger().With(zap.String("sweep_run", r.Name)),
			}
			res, err := eng.Run(gctx, instruments, r.Start, r.End)
			if err != nil {
				return fmt.Errorf("sweep run %q: %w", r.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
