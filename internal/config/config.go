package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"QuantBoard/internal/backtest"
	"QuantBoard/internal/model"
	"QuantBoard/internal/strategy"
	"QuantBoard/internal/universe"
)

// Config holds all application configuration.
type Config struct {
	Backtest backtest.Config `yaml:"backtest"`
	Range struct {
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"range"`
	Universe []model.Instrument `yaml:"universe"`
	Snapshot struct {
		BuyAbovePct  float64 `yaml:"buy_above_pct"`
		SellBelowPct float64 `yaml:"sell_below_pct"`
		Cron         string  `yaml:"cron"`
		BacktestCron string  `yaml:"backtest_cron"`
		LookbackDays int     `yaml:"lookback_days"`
	} `yaml:"snapshot"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Output struct {
		JSONPath   string `yaml:"json_path"`
		ParquetDir string `yaml:"parquet_dir"`
	} `yaml:"output"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then defaults. A missing file or .env is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{Backtest: backtest.DefaultConfig()}
	rules := strategy.DefaultSnapshotRules()
	cfg.Snapshot.BuyAbovePct = rules.BuyAbovePct
	cfg.Snapshot.SellBelowPct = rules.SellBelowPct

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("BACKTEST_START"); v != "" {
		cfg.Range.Start = v
	}
	if v := os.Getenv("BACKTEST_END"); v != "" {
		cfg.Range.End = v
	}
	if v := os.Getenv("INITIAL_CAPITAL"); v != "" {
		var capital float64
		if _, err := fmt.Sscanf(v, "%f", &capital); err == nil {
			cfg.Backtest.InitialCapital = capital
		}
	}
	if v := os.Getenv("MAX_POSITIONS"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			cfg.Backtest.MaxPositions = n
		}
	}
	if v := os.Getenv("CRON_SNAPSHOT"); v != "" {
		cfg.Snapshot.Cron = v
	}
	if v := os.Getenv("CRON_BACKTEST"); v != "" {
		cfg.Snapshot.BacktestCron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if len(cfg.Universe) == 0 {
		cfg.Universe = append([]model.Instrument(nil), universe.Default...)
	}
	if cfg.Snapshot.Cron == "" {
		cfg.Snapshot.Cron = "*/30 * * * * *"
	}
	if cfg.Snapshot.LookbackDays == 0 {
		cfg.Snapshot.LookbackDays = 365
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/quantboard.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if err := c.Backtest.Validate(); err != nil {
		return fmt.Errorf("backtest: %w", err)
	}
	if c.Range.Start != "" {
		if _, err := model.ParseDate(c.Range.Start); err != nil {
			return fmt.Errorf("range.start: %w", err)
		}
	}
	if c.Range.End != "" {
		if _, err := model.ParseDate(c.Range.End); err != nil {
			return fmt.Errorf("range.end: %w", err)
		}
	}
	for i, inst := range c.Universe {
		if inst.Code == "" {
			return fmt.Errorf("universe[%d].code is required", i)
		}
	}
	if c.Snapshot.BuyAbovePct <= c.Snapshot.SellBelowPct {
		return fmt.Errorf("snapshot.buy_above_pct (%v) must exceed snapshot.sell_below_pct (%v)",
			c.Snapshot.BuyAbovePct, c.Snapshot.SellBelowPct)
	}
	if c.Snapshot.LookbackDays < 0 {
		return fmt.Errorf("snapshot.lookback_days must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// Select narrows the universe to the given codes, in the given order.
// Every code must be configured; an empty list keeps the whole universe.
func (c *Config) Select(codes []string) ([]model.Instrument, error) {
	if len(codes) == 0 {
		return c.Universe, nil
	}
	out := make([]model.Instrument, 0, len(codes))
	for _, code := range codes {
		inst, ok := universe.Lookup(c.Universe, code)
		if !ok {
			return nil, fmt.Errorf("instrument %q is not in the universe", code)
		}
		out = append(out, inst)
	}
	return out, nil
}

// SnapshotRules returns the configured watchlist thresholds.
func (c *Config) SnapshotRules() strategy.SnapshotRules {
	return strategy.SnapshotRules{BuyAbovePct: c.Snapshot.BuyAbovePct, SellBelowPct: c.Snapshot.SellBelowPct}
}

// TelegramEnabled reports whether reports should be pushed to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
