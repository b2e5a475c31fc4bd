package backtest

import (
	"errors"
	"fmt"

	"QuantBoard/internal/calculator"
	"QuantBoard/internal/collector"
	"QuantBoard/internal/strategy"
)

// ErrInvalidConfig is returned by Validate, and by Run before any simulation.
var ErrInvalidConfig = errors.New("invalid backtest config")

// Config holds the tunable parameters of one run.
type Config struct {
	InitialCapital       float64 `yaml:"initial_capital"`
	PositionSizeFraction float64 `yaml:"position_size_fraction"`
	MaxPositions         int     `yaml:"max_positions"`
	ShortWindow          int     `yaml:"short_window"`
	LongWindow           int     `yaml:"long_window"`
	RSIPeriod            int     `yaml:"rsi_period"`
	RSIBuyCeiling        float64 `yaml:"rsi_buy_ceiling"`
	RSISellFloor         float64 `yaml:"rsi_sell_floor"`
	WarmupDays           int     `yaml:"warmup_days"`
}

// DefaultConfig returns 100k capital, 10% sizing, five slots, MA 5/20 and RSI 14 at 70/80.
func DefaultConfig() Config {
	return Config{
		InitialCapital:       100000,
		PositionSizeFraction: 0.10,
		MaxPositions:         5,
		ShortWindow:          5,
		LongWindow:           20,
		RSIPeriod:            14,
		RSIBuyCeiling:        70,
		RSISellFloor:         80,
		WarmupDays:           collector.DefaultWarmupDays,
	}
}

// Validate checks the config for values that make a simulation meaningless.
func (c Config) Validate() error {
	switch {
	case c.InitialCapital <= 0:
		return fmt.Errorf("%w: initial_capital must be positive, got %v", ErrInvalidConfig, c.InitialCapital)
	case c.PositionSizeFraction <= 0 || c.PositionSizeFraction > 1:
		return fmt.Errorf("%w: position_size_fraction must be in (0,1], got %v", ErrInvalidConfig, c.PositionSizeFraction)
	case c.MaxPositions < 1:
		return fmt.Errorf("%w: max_positions must be at least 1, got %d", ErrInvalidConfig, c.MaxPositions)
	case c.ShortWindow < 1:
		return fmt.Errorf("%w: short_window must be at least 1, got %d", ErrInvalidConfig, c.ShortWindow)
	case c.ShortWindow >= c.LongWindow:
		return fmt.Errorf("%w: short_window %d must be below long_window %d", ErrInvalidConfig, c.ShortWindow, c.LongWindow)
	case c.RSIPeriod < 1:
		return fmt.Errorf("%w: rsi_period must be at least 1, got %d", ErrInvalidConfig, c.RSIPeriod)
	case c.WarmupDays < 0:
		return fmt.Errorf("%w: warmup_days must not be negative, got %d", ErrInvalidConfig, c.WarmupDays)
	}
	return nil
}

func (c Config) params() calculator.Params {
	return calculator.Params{ShortWindow: c.ShortWindow, LongWindow: c.LongWindow, RSIPeriod: c.RSIPeriod}
}

func (c Config) thresholds() strategy.Thresholds {
	return strategy.Thresholds{RSIBuyCeiling: c.RSIBuyCeiling, RSISellFloor: c.RSISellFloor}
}
