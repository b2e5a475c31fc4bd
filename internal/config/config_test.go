package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"QuantBoard/internal/backtest"
	"QuantBoard/internal/universe"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backtest != backtest.DefaultConfig() {
		t.Errorf("expected default backtest config, got %+v", cfg.Backtest)
	}
	if len(cfg.Universe) != len(universe.Default) {
		t.Errorf("expected default universe, got %d instruments", len(cfg.Universe))
	}
	if cfg.Snapshot.BuyAbovePct != 3 || cfg.Snapshot.SellBelowPct != -2 {
		t.Errorf("unexpected snapshot thresholds: %+v", cfg.Snapshot)
	}
	if cfg.Snapshot.Cron == "" || cfg.Database.SQLitePath == "" || cfg.Log.Level != "info" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled by default")
	}
}

func TestLoad_YAMLOverridesOnlyGivenFields(t *testing.T) {
	path := writeConfig(t, `
backtest:
  initial_capital: 50000
  max_positions: 3
range:
  start: "2025-01-02"
  end: "2025-12-31"
universe:
  - code: "600519"
    name: "贵州茅台"
snapshot:
  buy_above_pct: 5
output:
  parquet_dir: out/parquet
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backtest.InitialCapital != 50000 || cfg.Backtest.MaxPositions != 3 {
		t.Errorf("yaml values not applied: %+v", cfg.Backtest)
	}
	if cfg.Backtest.LongWindow != 20 || cfg.Backtest.PositionSizeFraction != 0.10 {
		t.Errorf("unset fields should keep defaults: %+v", cfg.Backtest)
	}
	if len(cfg.Universe) != 1 || cfg.Universe[0].Name != "贵州茅台" {
		t.Errorf("unexpected universe: %+v", cfg.Universe)
	}
	if r := cfg.SnapshotRules(); r.BuyAbovePct != 5 || r.SellBelowPct != -2 {
		t.Errorf("unexpected rules: %+v", r)
	}
	if cfg.Output.ParquetDir != "out/parquet" {
		t.Errorf("unexpected parquet dir %q", cfg.Output.ParquetDir)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("INITIAL_CAPITAL", "250000")
	t.Setenv("MAX_POSITIONS", "8")
	t.Setenv("SQLITE_PATH", "/tmp/qb.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BACKTEST_START", "2026-02-02")

	cfg, err := Load(writeConfig(t, "backtest:\n  initial_capital: 1000\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backtest.InitialCapital != 250000 || cfg.Backtest.MaxPositions != 8 {
		t.Errorf("env should win over yaml: %+v", cfg.Backtest)
	}
	if cfg.Database.SQLitePath != "/tmp/qb.db" || cfg.Log.Level != "debug" || cfg.Range.Start != "2026-02-02" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "backtest: [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mod     func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad capital", func(c *Config) { c.Backtest.InitialCapital = -1 }, true},
		{"bad start", func(c *Config) { c.Range.Start = "02/02/2026" }, true},
		{"empty code", func(c *Config) { c.Universe[0].Code = "" }, true},
		{"inverted thresholds", func(c *Config) { c.Snapshot.BuyAbovePct = -5 }, true},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "x" }, true},
		{"full telegram", func(c *Config) { c.Telegram.BotToken, c.Telegram.ChatID = "x", "1" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.mod(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_WrapsBacktestError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Backtest.MaxPositions = 0
	if err := cfg.Validate(); !errors.Is(err, backtest.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSelect(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	all, err := cfg.Select(nil)
	if err != nil || len(all) != len(universe.Default) {
		t.Errorf("empty selection should keep the universe, got %d, %v", len(all), err)
	}

	got, err := cfg.Select([]string{"300750", "600519"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got) != 2 || got[0].Name != "宁德时代" || got[1].Name != "贵州茅台" {
		t.Errorf("unexpected selection: %+v", got)
	}

	if _, err := cfg.Select([]string{"999999"}); err == nil {
		t.Error("expected an unknown code to fail")
	}
}
