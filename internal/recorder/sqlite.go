package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"QuantBoard/internal/model"
)

// SQLiteRecorder persists runs and snapshots to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while a run is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			run_id            TEXT PRIMARY KEY,
			recorded_at       INTEGER NOT NULL,
			start_date        TEXT,
			end_date          TEXT,
			initial_capital   REAL,
			final_value       REAL,
			total_profit      REAL,
			total_return_pct  REAL,
			trade_count       INTEGER,
			buy_count         INTEGER,
			sell_count        INTEGER,
			win_rate          REAL,
			max_drawdown_pct  REAL,
			realized_profit   REAL,
			unrealized_profit REAL
		)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			trade_date TEXT NOT NULL,
			action     TEXT,
			code       TEXT,
			name       TEXT,
			price      REAL,
			shares     INTEGER,
			amount     REAL,
			profit     REAL,
			reason     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id)`,

		`CREATE TABLE IF NOT EXISTS daily_values (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			value_date  TEXT NOT NULL,
			total_value REAL,
			profit_pct  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_values_run ON daily_values(run_id)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at    INTEGER NOT NULL,
			as_of          TEXT NOT NULL,
			total          INTEGER,
			up             INTEGER,
			down           INTEGER,
			flat           INTEGER,
			avg_change_pct REAL
		)`,

		`CREATE TABLE IF NOT EXISTS snapshot_quotes (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id INTEGER NOT NULL,
			code        TEXT,
			name        TEXT,
			price       REAL,
			change_pct  REAL,
			high        REAL,
			low         REAL,
			rsi         REAL,
			signal      TEXT,
			reason      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshot_quotes_snap ON snapshot_quotes(snapshot_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run summary, its trades and its valuation curve in one transaction.
func (r *SQLiteRecorder) RecordRun(res *model.BacktestResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	m := res.Metrics
	if _, err := tx.Exec(`INSERT INTO backtest_runs
		(run_id, recorded_at, start_date, end_date, initial_capital, final_value,
		 total_profit, total_return_pct, trade_count, buy_count, sell_count,
		 win_rate, max_drawdown_pct, realized_profit, unrealized_profit)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		res.RunID, time.Now().Unix(),
		res.Start.Format(model.DateLayout), res.End.Format(model.DateLayout),
		res.InitialCapital, res.FinalValue, res.TotalProfit, res.TotalReturnPct,
		res.TradeCount, res.BuyCount, res.SellCount,
		m.WinRate, m.MaxDrawdownPct, m.RealizedProfit, m.UnrealizedProfit,
	); err != nil {
		return fmt.Errorf("insert run %s: %w", res.RunID, err)
	}

	for _, tr := range res.Trades {
		if _, err := tx.Exec(`INSERT INTO trades
			(run_id, trade_date, action, code, name, price, shares, amount, profit, reason)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			res.RunID, tr.Date.Format(model.DateLayout), string(tr.Action), tr.Code, tr.Name,
			tr.Price, tr.Shares, tr.Amount, tr.Profit, tr.Reason,
		); err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
	}

	for _, v := range res.DailyValues {
		if _, err := tx.Exec(`INSERT INTO daily_values
			(run_id, value_date, total_value, profit_pct)
			VALUES (?,?,?,?)`,
			res.RunID, v.Date.Format(model.DateLayout), v.TotalValue, v.ProfitPct,
		); err != nil {
			return fmt.Errorf("insert daily value: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", res.RunID, err)
	}
	r.logger.Debug("run recorded", zap.String("run_id", res.RunID), zap.Int("trades", len(res.Trades)))
	return nil
}

// RecordSnapshot writes the snapshot stats and one row per quote.
func (r *SQLiteRecorder) RecordSnapshot(snap *model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	st := snap.Stats
	out, err := tx.Exec(`INSERT INTO snapshots
		(recorded_at, as_of, total, up, down, flat, avg_change_pct)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), snap.AsOf.Format(model.DateLayout),
		st.Total, st.Up, st.Down, st.Flat, st.AvgChangePct,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := out.LastInsertId()
	if err != nil {
		return fmt.Errorf("snapshot id: %w", err)
	}

	for _, q := range snap.Quotes {
		if _, err := tx.Exec(`INSERT INTO snapshot_quotes
			(snapshot_id, code, name, price, change_pct, high, low, rsi, signal, reason)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			id, q.Code, q.Name, q.Price, q.ChangePct, q.High, q.Low, q.RSI, q.Signal, q.Reason,
		); err != nil {
			return fmt.Errorf("insert quote %s: %w", q.Code, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
