package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"QuantBoard/internal/model"
)

// DailyValueRecord is the Parquet schema of the valuation curve.
type DailyValueRecord struct {
	RunID      string  `parquet:"run_id"`
	Date       string  `parquet:"date"`
	TotalValue float64 `parquet:"total_value"`
	ProfitPct  float64 `parquet:"profit_pct"`
}

// TradeRecord is the Parquet schema of the trade ledger.
type TradeRecord struct {
	RunID  string  `parquet:"run_id"`
	Date   string  `parquet:"date"`
	Action string  `parquet:"action"`
	Code   string  `parquet:"code"`
	Name   string  `parquet:"name"`
	Price  float64 `parquet:"price"`
	Shares int64   `parquet:"shares"`
	Amount float64 `parquet:"amount"`
	Profit float64 `parquet:"profit"`
	Reason string  `parquet:"reason"`
}

// SaveJSON writes the result as indented JSON, creating parent directories.
func SaveJSON(path string, res *model.BacktestResult) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// SaveParquet writes daily_values.parquet and trades.parquet under dir.
func SaveParquet(dir string, res *model.BacktestResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parquet dir: %w", err)
	}

	values := make([]DailyValueRecord, len(res.DailyValues))
	for i, v := range res.DailyValues {
		values[i] = DailyValueRecord{
			RunID:      res.RunID,
			Date:       v.Date.Format(model.DateLayout),
			TotalValue: v.TotalValue,
			ProfitPct:  v.ProfitPct,
		}
	}
	if err := parquet.WriteFile(filepath.Join(dir, "daily_values.parquet"), values); err != nil {
		return fmt.Errorf("write daily values: %w", err)
	}

	trades := make([]TradeRecord, len(res.Trades))
	for i, tr := range res.Trades {
		trades[i] = TradeRecord{
			RunID:  res.RunID,
			Date:   tr.Date.Format(model.DateLayout),
			Action: string(tr.Action),
			Code:   tr.Code,
			Name:   tr.Name,
			Price:  tr.Price,
			Shares: tr.Shares,
			Amount: tr.Amount,
			Profit: tr.Profit,
			Reason: tr.Reason,
		}
	}
	if err := parquet.WriteFile(filepath.Join(dir, "trades.parquet"), trades); err != nil {
		return fmt.Errorf("write trades: %w", err)
	}
	return nil
}
