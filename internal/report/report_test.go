package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"

	"QuantBoard/internal/model"
)

var d0 = time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

func sampleInput() Input {
	return Input{
		RunID:          "run-1",
		Start:          d0,
		End:            d0.AddDate(0, 0, 3),
		InitialCapital: 100000,
		Trades: []model.Trade{
			{Date: d0.AddDate(0, 0, 1), Action: model.ActionBuy, Code: "600519", Shares: 200, Price: 50, Amount: 10000},
			{Date: d0.AddDate(0, 0, 1), Action: model.ActionBuy, Code: "000858", Shares: 100, Price: 80, Amount: 8000},
			{Date: d0.AddDate(0, 0, 2), Action: model.ActionSell, Code: "600519", Shares: 200, Price: 55, Amount: 11000, Profit: 1000},
		},
		DailyValues: []model.DailyValuation{
			{Date: d0, TotalValue: 100000},
			{Date: d0.AddDate(0, 0, 1), TotalValue: 100000},
			{Date: d0.AddDate(0, 0, 2), TotalValue: 101200},
			{Date: d0.AddDate(0, 0, 3), TotalValue: 100800},
		},
		OpenPositions: []model.Position{
			{Code: "000858", Shares: 100, CostBasis: 80, LastPrice: 78, MarketValue: 7800},
		},
	}
}

func TestAssemble_Counts(t *testing.T) {
	res := Assemble(sampleInput())
	if res.TradeCount != 3 || res.BuyCount != 2 || res.SellCount != 1 {
		t.Errorf("unexpected counts: trades=%d buys=%d sells=%d", res.TradeCount, res.BuyCount, res.SellCount)
	}
	if res.FinalValue != 100800 || res.TotalProfit != 800 || res.TotalReturnPct != 0.8 {
		t.Errorf("unexpected totals: final=%v profit=%v ret=%v", res.FinalValue, res.TotalProfit, res.TotalReturnPct)
	}
	if res.RunID != "run-1" {
		t.Errorf("expected run id carried, got %q", res.RunID)
	}
}

func TestAssemble_Metrics(t *testing.T) {
	m := Assemble(sampleInput()).Metrics
	if m.WinRate != 100 {
		t.Errorf("expected 100%% win rate, got %v", m.WinRate)
	}
	if m.RealizedProfit != 1000 || m.UnrealizedProfit != -200 {
		t.Errorf("unexpected profit split: %+v", m)
	}
	want := model.Round2((101200.0 - 100800.0) / 101200.0 * 100)
	if m.MaxDrawdownPct != want {
		t.Errorf("expected drawdown %v, got %v", want, m.MaxDrawdownPct)
	}
}

func TestAssemble_EmptyRun(t *testing.T) {
	res := Assemble(Input{InitialCapital: 100000})
	if res.FinalValue != 100000 || res.TotalProfit != 0 || res.TotalReturnPct != 0 {
		t.Errorf("empty run should keep initial capital: %+v", res)
	}
	if res.Trades == nil || res.DailyValues == nil || res.OpenPositions == nil {
		t.Error("expected empty, non-nil sequences")
	}
}

func TestAssemble_DoesNotAliasInput(t *testing.T) {
	in := sampleInput()
	res := Assemble(in)
	in.Trades[0].Code = "mutated"
	if res.Trades[0].Code != "600519" {
		t.Error("result must not share the input trade slice")
	}
}

func TestSaveJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.json")
	res := Assemble(sampleInput())
	if err := SaveJSON(path, res); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var back model.BacktestResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.TradeCount != 3 || len(back.DailyValues) != 4 {
		t.Errorf("unexpected decoded result: %+v", back)
	}
}

func TestSaveParquet(t *testing.T) {
	dir := t.TempDir()
	res := Assemble(sampleInput())
	if err := SaveParquet(dir, res); err != nil {
		t.Fatalf("SaveParquet: %v", err)
	}
	values, err := parquet.ReadFile[DailyValueRecord](filepath.Join(dir, "daily_values.parquet"))
	if err != nil {
		t.Fatalf("read daily values: %v", err)
	}
	if len(values) != 4 || values[0].Date != "2026-02-02" || values[0].RunID != "run-1" {
		t.Errorf("unexpected daily values: %+v", values)
	}
	trades, err := parquet.ReadFile[TradeRecord](filepath.Join(dir, "trades.parquet"))
	if err != nil {
		t.Fatalf("read trades: %v", err)
	}
	if len(trades) != 3 || trades[2].Action != "SELL" || trades[2].Profit != 1000 {
		t.Errorf("unexpected trades: %+v", trades)
	}
}
