package recorder

import "QuantBoard/internal/model"

// Recorder persists finished backtests and watchlist snapshots for later analysis.
type Recorder interface {
	RecordRun(res *model.BacktestResult) error
	RecordSnapshot(snap *model.Snapshot) error
	Close() error
}
