package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"QuantBoard/internal/backtest"
	"QuantBoard/internal/model"
	"QuantBoard/internal/notifier"
	"QuantBoard/internal/recorder"
)

// Scheduler manages the watchlist refresh and the periodic backtest.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   *backtest.Engine
	Universe []model.Instrument
	Notifier *notifier.TelegramNotifier // optional
	Recorder recorder.Recorder
	Logger   *zap.Logger
	Ctx      context.Context

	// LookbackDays is the calendar span of the periodic backtest, ending today.
	LookbackDays int
	Now          func() time.Time

	mu     sync.Mutex
	latest *model.Snapshot
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, eng *backtest.Engine, universe []model.Instrument, tn *notifier.TelegramNotifier, rec recorder.Recorder, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Engine:       eng,
		Universe:     universe,
		Notifier:     tn,
		Recorder:     rec,
		Logger:       logger,
		Ctx:          ctx,
		LookbackDays: 365,
		Now:          time.Now,
	}
}

// RegisterAll registers the snapshot refresh and, when backtestCron is set,
// the periodic backtest.
func (s *Scheduler) RegisterAll(snapshotCron, backtestCron string) error {
	if _, err := s.Cron.AddFunc(snapshotCron, s.snapshotTask); err != nil {
		return fmt.Errorf("register snapshot task: %w", err)
	}
	if backtestCron == "" {
		return nil
	}
	if _, err := s.Cron.AddFunc(backtestCron, s.backtestTask); err != nil {
		return fmt.Errorf("register backtest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started", zap.Int("entries", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// Latest returns the most recent snapshot, or nil before the first refresh.
func (s *Scheduler) Latest() *model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// RefreshNow rebuilds the watchlist snapshot as of today and records it.
func (s *Scheduler) RefreshNow() (*model.Snapshot, error) {
	snap, err := s.Engine.Watchlist(s.Universe, s.Now())
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()

	if err := s.Recorder.RecordSnapshot(snap); err != nil {
		s.Logger.Error("record snapshot", zap.Error(err))
	}
	s.Logger.Info("snapshot refreshed",
		zap.String("as_of", snap.AsOf.Format(model.DateLayout)),
		zap.Int("quotes", snap.Stats.Total),
		zap.Int("buy_signals", len(snap.BuyQuotes)),
		zap.Int("sell_signals", len(snap.SellQuotes)),
	)
	return snap, nil
}

// RunBacktestNow backtests the trailing LookbackDays and records the run.
func (s *Scheduler) RunBacktestNow() (*model.BacktestResult, error) {
	end := model.Day(s.Now())
	start := end.AddDate(0, 0, -s.LookbackDays)
	res, err := s.Engine.Run(s.Ctx, s.Universe, start, end)
	if err != nil {
		return res, fmt.Errorf("run backtest: %w", err)
	}
	if err := s.Recorder.RecordRun(res); err != nil {
		s.Logger.Error("record run", zap.String("run_id", res.RunID), zap.Error(err))
	}
	return res, nil
}

func (s *Scheduler) snapshotTask() {
	prev := s.Latest()
	snap, err := s.RefreshNow()
	if err != nil {
		s.Logger.Error("snapshot task", zap.Error(err))
		return
	}
	if len(snap.BuyQuotes)+len(snap.SellQuotes) == 0 {
		return
	}
	if prev != nil && signalKey(prev) == signalKey(snap) {
		s.Logger.Debug("snapshot signals unchanged, not notifying")
		return
	}
	s.trySend(notifier.FormatSnapshot(snap))
}

// signalKey identifies the candidate sets of a snapshot.
func signalKey(snap *model.Snapshot) string {
	var b strings.Builder
	b.WriteString(snap.AsOf.Format(model.DateLayout))
	for _, q := range snap.BuyQuotes {
		b.WriteString(" +" + q.Code)
	}
	for _, q := range snap.SellQuotes {
		b.WriteString(" -" + q.Code)
	}
	return b.String()
}

func (s *Scheduler) backtestTask() {
	s.Logger.Info("running periodic backtest", zap.Int("lookback_days", s.LookbackDays))
	res, err := s.RunBacktestNow()
	if err != nil {
		s.Logger.Error("backtest task", zap.Error(err))
		s.trySend(fmt.Sprintf("❌ 回测失败: %v", err))
		return
	}
	s.trySend(notifier.FormatBacktestReport(res))
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Logger.Error("send notification", zap.Error(err))
	}
}
