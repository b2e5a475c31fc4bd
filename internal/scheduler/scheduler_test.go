package scheduler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"QuantBoard/internal/backtest"
	"QuantBoard/internal/collector"
	"QuantBoard/internal/model"
	"QuantBoard/internal/notifier"
	"QuantBoard/internal/strategy"
	"QuantBoard/internal/universe"
)

// memRecorder keeps what it is given.
type memRecorder struct {
	mu        sync.Mutex
	runs      []*model.BacktestResult
	snapshots []*model.Snapshot
}

func (m *memRecorder) RecordRun(res *model.BacktestResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, res)
	return nil
}

func (m *memRecorder) RecordSnapshot(snap *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, snap)
	return nil
}

func (m *memRecorder) Close() error { return nil }

func newTestScheduler(t *testing.T, rec *memRecorder, tn *notifier.TelegramNotifier) *Scheduler {
	t.Helper()
	eng := backtest.NewEngine(backtest.DefaultConfig(), collector.NewSyntheticFetcher(), nil)
	s := NewScheduler(context.Background(), eng, universe.Default, tn, rec, nil)
	s.Now = func() time.Time { return time.Date(2026, 2, 9, 15, 30, 0, 0, time.UTC) }
	return s
}

func TestRefreshNow(t *testing.T) {
	rec := &memRecorder{}
	s := newTestScheduler(t, rec, nil)
	if s.Latest() != nil {
		t.Fatal("expected no snapshot before the first refresh")
	}

	snap, err := s.RefreshNow()
	if err != nil {
		t.Fatalf("RefreshNow: %v", err)
	}
	if got := snap.AsOf.Format(model.DateLayout); got != "2026-02-09" {
		t.Errorf("expected as-of 2026-02-09, got %s", got)
	}
	if s.Latest() != snap {
		t.Error("Latest should return the refreshed snapshot")
	}
	if len(rec.snapshots) != 1 {
		t.Errorf("expected 1 recorded snapshot, got %d", len(rec.snapshots))
	}
}

func TestRunBacktestNow(t *testing.T) {
	rec := &memRecorder{}
	s := newTestScheduler(t, rec, nil)
	s.LookbackDays = 30

	res, err := s.RunBacktestNow()
	if err != nil {
		t.Fatalf("RunBacktestNow: %v", err)
	}
	if got := res.End.Format(model.DateLayout); got != "2026-02-09" {
		t.Errorf("expected end 2026-02-09, got %s", got)
	}
	if len(res.DailyValues) == 0 {
		t.Error("expected a valuation curve")
	}
	if len(rec.runs) != 1 || rec.runs[0].RunID != res.RunID {
		t.Errorf("expected the run to be recorded, got %d runs", len(rec.runs))
	}
}

func TestBacktestTaskNotifies(t *testing.T) {
	var (
		mu   sync.Mutex
		sent []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		mu.Lock()
		sent = append(sent, buf.String())
		mu.Unlock()
	}))
	defer srv.Close()

	tn := notifier.NewTelegramNotifier("token", "1", "", nil)
	tn.APIBase = srv.URL
	s := newTestScheduler(t, &memRecorder{}, tn)
	s.LookbackDays = 30
	s.backtestTask()

	mu.Lock()
	defer mu.Unlock()
	if len(sent) != 1 || !strings.Contains(sent[0], "QuantBoard") {
		t.Errorf("expected one backtest report, got %v", sent)
	}
}

func TestSnapshotTaskNotifiesOnlyOnChange(t *testing.T) {
	var (
		mu    sync.Mutex
		count int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		count++
		mu.Unlock()
	}))
	defer srv.Close()

	tn := notifier.NewTelegramNotifier("token", "1", "", nil)
	tn.APIBase = srv.URL
	s := newTestScheduler(t, &memRecorder{}, tn)
	// Every quote becomes a buy candidate.
	s.Engine.Rules = strategy.SnapshotRules{BuyAbovePct: -1000, SellBelowPct: -2000}

	s.snapshotTask()
	s.snapshotTask()
	s.Now = func() time.Time { return time.Date(2026, 2, 10, 15, 30, 0, 0, time.UTC) }
	s.snapshotTask()

	mu.Lock()
	defer mu.Unlock()
	if count != 2 {
		t.Errorf("expected 2 notifications (first refresh and new day), got %d", count)
	}
	if got := s.Latest().AsOf.Format(model.DateLayout); got != "2026-02-10" {
		t.Errorf("expected latest snapshot of 2026-02-10, got %s", got)
	}
}

func TestRegisterAll(t *testing.T) {
	s := newTestScheduler(t, &memRecorder{}, nil)
	if err := s.RegisterAll("*/30 * * * * *", ""); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if n := len(s.Cron.Entries()); n != 1 {
		t.Errorf("expected 1 entry without a backtest schedule, got %d", n)
	}
	if err := s.RegisterAll("*/30 * * * * *", "0 0 18 * * 1-5"); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if n := len(s.Cron.Entries()); n != 3 {
		t.Errorf("expected 3 entries, got %d", n)
	}
	if err := s.RegisterAll("not a cron", ""); err == nil {
		t.Error("expected an invalid cron expression to fail")
	}
}
