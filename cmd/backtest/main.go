package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"QuantBoard/internal/backtest"
	"QuantBoard/internal/collector"
	"QuantBoard/internal/config"
	"QuantBoard/internal/logging"
	"QuantBoard/internal/model"
	"QuantBoard/internal/notifier"
	"QuantBoard/internal/recorder"
	"QuantBoard/internal/report"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to the YAML config")
	startFlag := flag.String("start", "", "first day, YYYY-MM-DD (overrides range.start)")
	endFlag := flag.String("end", "", "last day, YYYY-MM-DD (overrides range.end)")
	jsonPath := flag.String("json", "", "write the result as JSON to this path")
	parquetDir := flag.String("parquet", "", "write trades and daily values as Parquet under this directory")
	codesFlag := flag.String("codes", "", "comma-separated instrument codes to trade (default: whole universe)")
	noRecord := flag.Bool("no-record", false, "do not record the run in SQLite")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *startFlag != "" {
		cfg.Range.Start = *startFlag
	}
	if *endFlag != "" {
		cfg.Range.End = *endFlag
	}
	if *jsonPath != "" {
		cfg.Output.JSONPath = *jsonPath
	}
	if *parquetDir != "" {
		cfg.Output.ParquetDir = *parquetDir
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	start, end, err := runRange(cfg)
	if err != nil {
		logger.Fatal("resolve range", zap.Error(err))
	}
	instruments, err := cfg.Select(splitCodes(*codesFlag))
	if err != nil {
		logger.Fatal("select instruments", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := collector.NewSyntheticFetcher()
	eng := backtest.NewEngine(cfg.Backtest, fetcher, logger)
	eng.Rules = cfg.SnapshotRules()
	logger.Info("data source", zap.String("fetcher", fetcher.Name()))

	res, err := eng.Run(ctx, instruments, start, end)
	if err != nil && res == nil {
		logger.Fatal("backtest", zap.Error(err))
	}
	if err != nil {
		logger.Warn("backtest interrupted, reporting partial result", zap.Error(err))
	}

	fmt.Println(notifier.FormatBacktestReport(res))

	if cfg.Output.JSONPath != "" {
		if err := report.SaveJSON(cfg.Output.JSONPath, res); err != nil {
			logger.Error("save json", zap.Error(err))
		} else {
			logger.Info("result written", zap.String("path", cfg.Output.JSONPath))
		}
	}
	if cfg.Output.ParquetDir != "" {
		if err := report.SaveParquet(cfg.Output.ParquetDir, res); err != nil {
			logger.Error("save parquet", zap.Error(err))
		} else {
			logger.Info("parquet written", zap.String("dir", cfg.Output.ParquetDir))
		}
	}

	if *noRecord || cfg.Database.SQLitePath == "" {
		return
	}
	rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
	if err != nil {
		logger.Warn("init sqlite recorder failed, run not recorded", zap.Error(err))
		return
	}
	defer rec.Close()
	if err := rec.RecordRun(res); err != nil {
		logger.Error("record run", zap.Error(err))
	}
}

// runRange resolves the simulated window. Without a configured start the
// last year up to end is used; without an end, today.
func runRange(cfg *config.Config) (time.Time, time.Time, error) {
	end := model.Day(time.Now())
	if cfg.Range.End != "" {
		d, err := model.ParseDate(cfg.Range.End)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = d
	}
	start := end.AddDate(-1, 0, 0)
	if cfg.Range.Start != "" {
		d, err := model.ParseDate(cfg.Range.Start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = d
	}
	return start, end, nil
}

func splitCodes(s string) []string {
	var codes []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}
