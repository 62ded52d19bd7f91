package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stockdesk/internal/config"
)

type recordingDispatcher struct {
	sweeps int
	warms  [][]string
	purges []int
}

func (d *recordingDispatcher) DispatchLowStockSweep(context.Context) error {
	d.sweeps++
	return nil
}

func (d *recordingDispatcher) DispatchAnalyticsWarm(_ context.Context, ranges []string) error {
	d.warms = append(d.warms, ranges)
	return nil
}

func (d *recordingDispatcher) DispatchDraftPurge(_ context.Context, days int) error {
	d.purges = append(d.purges, days)
	return nil
}

func TestNewSchedulerRegistersConfiguredJobs(t *testing.T) {
	s, err := NewScheduler(config.WorkerConfig{
		LowStockSweepCron: "@every 15m",
		AnalyticsWarmCron: "0 */5 * * * *",
		DraftPurgeCron:    "",
		Location:          "UTC",
	}, &recordingDispatcher{})
	if err != nil {
		t.Fatalf("new scheduler failed: %v", err)
	}
	if s.Entries() != 2 {
		t.Fatalf("expected 2 entries, got %d", s.Entries())
	}
}

func TestNewSchedulerRejectsInvalidSpec(t *testing.T) {
	if _, err := NewScheduler(config.WorkerConfig{LowStockSweepCron: "every minute"}, &recordingDispatcher{}); err == nil {
		t.Fatalf("expected invalid cron spec error")
	}
	if _, err := NewScheduler(config.WorkerConfig{}, nil); err == nil {
		t.Fatalf("expected nil dispatcher error")
	}
}

func TestSchedulerRunJobPassesConfig(t *testing.T) {
	d := &recordingDispatcher{}
	s, err := NewScheduler(config.WorkerConfig{
		WarmRanges:         []string{"today"},
		DraftRetentionDays: 7,
	}, d)
	if err != nil {
		t.Fatalf("new scheduler failed: %v", err)
	}
	s.runJob("analytics_warm", func(ctx context.Context) error {
		return d.DispatchAnalyticsWarm(ctx, s.cfg.WarmRanges)
	})
	s.runJob("draft_purge", func(ctx context.Context) error {
		return d.DispatchDraftPurge(ctx, s.cfg.DraftRetentionDays)
	})
	s.runJob("panics", func(context.Context) error { panic("boom") })
	if len(d.warms) != 1 || d.warms[0][0] != "today" {
		t.Fatalf("unexpected warm calls: %v", d.warms)
	}
	if len(d.purges) != 1 || d.purges[0] != 7 {
		t.Fatalf("unexpected purge calls: %v", d.purges)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler did not stop")
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}

func TestQueueDispatcherRunsInlineWithoutQueue(t *testing.T) {
	checker := &fakeLowStock{}
	purger := &fakePurger{}
	consumer := &Consumer{lowStock: checker, drafts: purger}
	d := NewQueueDispatcher(nil, consumer)
	if err := d.DispatchLowStockSweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if err := d.DispatchDraftPurge(context.Background(), 10); err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if len(checker.calls) != 1 || len(checker.calls[0]) != 0 {
		t.Fatalf("expected full sweep call, got %+v", checker.calls)
	}
	if len(purger.days) != 1 || purger.days[0] != 10 {
		t.Fatalf("unexpected purge days: %v", purger.days)
	}
}
