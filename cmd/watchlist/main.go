package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"QuantBoard/internal/backtest"
	"QuantBoard/internal/collector"
	"QuantBoard/internal/config"
	"QuantBoard/internal/logging"
	"QuantBoard/internal/notifier"
	"QuantBoard/internal/recorder"
	"QuantBoard/internal/scheduler"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("QuantBoard watchlist starting", zap.Int("instruments", len(cfg.Universe)))

	eng := backtest.NewEngine(cfg.Backtest, collector.NewSyntheticFetcher(), logger)
	eng.Rules = cfg.SnapshotRules()

	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, eng, cfg.Universe, tn, rec, logger)
	sched.LookbackDays = cfg.Snapshot.LookbackDays
	if err := sched.RegisterAll(cfg.Snapshot.Cron, cfg.Snapshot.BacktestCron); err != nil {
		logger.Fatal("register cron tasks", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	if _, err := sched.RefreshNow(); err != nil {
		logger.Error("initial snapshot", zap.Error(err))
	}

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, running backtest now")
		go func() {
			if _, err := sched.RunBacktestNow(); err != nil {
				logger.Error("startup backtest", zap.Error(err))
			}
		}()
	}

	logger.Info("QuantBoard watchlist is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping")
	cancel()
}
