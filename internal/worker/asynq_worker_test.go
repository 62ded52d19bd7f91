package worker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/queue"
	"github.com/stockdesk/internal/service"
)

type fakeLowStock struct {
	calls [][]uint
	items []service.LowStockItem
}

func (f *fakeLowStock) CheckLowStock(_ context.Context, skuIDs []uint) ([]service.LowStockItem, error) {
	f.calls = append(f.calls, skuIDs)
	return f.items, nil
}

type fakeWarmer struct {
	mu     sync.Mutex
	ranges []string
	zones  []string
	fail   string
}

func (f *fakeWarmer) Warm(_ context.Context, rangeKey, timezone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ranges = append(f.ranges, rangeKey)
	f.zones = append(f.zones, timezone)
	if rangeKey == f.fail {
		return errors.New("warm failed")
	}
	return nil
}

type fakePurger struct {
	days []int
}

func (f *fakePurger) PurgeStale(olderThanDays int) (int64, error) {
	f.days = append(f.days, olderThanDays)
	return 2, nil
}

func TestHandleLowStockCheckDecodesPayload(t *testing.T) {
	checker := &fakeLowStock{items: []service.LowStockItem{{SKUID: 4, Stock: 1, LowStockThreshold: 10}}}
	consumer := &Consumer{lowStock: checker}
	task, err := queue.NewLowStockCheckTask(queue.LowStockCheckPayload{SKUIDs: []uint{4, 9}, Source: "sale"})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}
	if err := consumer.handleLowStockCheck(context.Background(), task); err != nil {
		t.Fatalf("handle low stock failed: %v", err)
	}
	if len(checker.calls) != 1 || len(checker.calls[0]) != 2 || checker.calls[0][1] != 9 {
		t.Fatalf("unexpected checker calls: %+v", checker.calls)
	}
}

func TestRunAnalyticsWarmFansOutRanges(t *testing.T) {
	warmer := &fakeWarmer{}
	consumer := &Consumer{
		warmer:    warmer,
		timezone:  "Asia/Shanghai",
		workerCfg: config.WorkerConfig{WarmPoolSize: 2, WarmRanges: []string{"7d"}},
	}
	err := consumer.runAnalyticsWarm(context.Background(), queue.AnalyticsWarmPayload{Ranges: []string{"today", " 7D", "today", "30d"}})
	if err != nil {
		t.Fatalf("warm failed: %v", err)
	}
	got := append([]string(nil), warmer.ranges...)
	sort.Strings(got)
	want := []string{"30d", "7d", "today"}
	if len(got) != len(want) {
		t.Fatalf("ranges want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ranges want %v, got %v", want, got)
		}
	}
	for _, zone := range warmer.zones {
		if zone != "Asia/Shanghai" {
			t.Fatalf("expected default timezone, got %q", zone)
		}
	}
}

func TestRunAnalyticsWarmUsesConfiguredRangesAndJoinsErrors(t *testing.T) {
	warmer := &fakeWarmer{fail: "30d"}
	consumer := &Consumer{
		warmer:    warmer,
		workerCfg: config.WorkerConfig{WarmRanges: []string{"7d", "30d"}},
	}
	err := consumer.runAnalyticsWarm(context.Background(), queue.AnalyticsWarmPayload{Timezone: "UTC"})
	if err == nil {
		t.Fatalf("expected joined warm error")
	}
	if len(warmer.ranges) != 2 {
		t.Fatalf("expected both ranges warmed, got %v", warmer.ranges)
	}
}

func TestRunDraftPurgeRetentionFallback(t *testing.T) {
	purger := &fakePurger{}
	consumer := &Consumer{drafts: purger, workerCfg: config.WorkerConfig{DraftRetentionDays: 14}}
	if err := consumer.runDraftPurge(queue.DraftPurgePayload{}); err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if err := consumer.runDraftPurge(queue.DraftPurgePayload{OlderThanDays: 45}); err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	consumer.workerCfg.DraftRetentionDays = 0
	if err := consumer.runDraftPurge(queue.DraftPurgePayload{}); err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if len(purger.days) != 3 || purger.days[0] != 14 || purger.days[1] != 45 || purger.days[2] != 30 {
		t.Fatalf("unexpected purge days: %v", purger.days)
	}
}

func TestConsumerSkipsMissingServices(t *testing.T) {
	consumer := &Consumer{}
	if err := consumer.runLowStockCheck(context.Background(), queue.LowStockCheckPayload{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := consumer.runAnalyticsWarm(context.Background(), queue.AnalyticsWarmPayload{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := consumer.runDraftPurge(queue.DraftPurgePayload{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
