package worker

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/constants"
	"github.com/stockdesk/internal/logger"
	"github.com/stockdesk/internal/provider"
	"github.com/stockdesk/internal/queue"
	"github.com/stockdesk/internal/service"

	"github.com/hibiken/asynq"
	"github.com/panjf2000/ants/v2"
)

const defaultWarmPoolSize = 4

type lowStockChecker interface {
	CheckLowStock(ctx context.Context, skuIDs []uint) ([]service.LowStockItem, error)
}

type analyticsWarmer interface {
	Warm(ctx context.Context, rangeKey, timezone string) error
}

type draftPurger interface {
	PurgeStale(olderThanDays int) (int64, error)
}

// Consumer 异步任务消费者
type Consumer struct {
	lowStock  lowStockChecker
	warmer    analyticsWarmer
	drafts    draftPurger
	workerCfg config.WorkerConfig
	timezone  string
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	if c == nil {
		return &Consumer{}
	}
	consumer := &Consumer{
		workerCfg: c.Config.Worker,
		timezone:  c.Config.Analytics.DefaultTimezone,
	}
	if c.AnalyticsService != nil {
		consumer.lowStock = c.AnalyticsService
		consumer.warmer = c.AnalyticsService
	}
	if c.DraftService != nil {
		consumer.drafts = c.DraftService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskLowStockCheck, c.handleLowStockCheck)
	mux.HandleFunc(queue.TaskAnalyticsWarm, c.handleAnalyticsWarm)
	mux.HandleFunc(queue.TaskDraftPurge, c.handleDraftPurge)
}

func (c *Consumer) handleLowStockCheck(ctx context.Context, task *asynq.Task) error {
	var payload queue.LowStockCheckPayload
	if err := queue.DecodePayload(task, &payload); err != nil {
		logger.Warnw("worker_low_stock_check_unmarshal_failed", "error", err)
		return err
	}
	return c.runLowStockCheck(ctx, payload)
}

func (c *Consumer) runLowStockCheck(ctx context.Context, payload queue.LowStockCheckPayload) error {
	if c == nil || c.lowStock == nil {
		logger.Warnw("worker_low_stock_check_skip_service_nil")
		return nil
	}
	items, err := c.lowStock.CheckLowStock(ctx, payload.SKUIDs)
	if err != nil {
		logger.Warnw("worker_low_stock_check_failed", "sku_ids", payload.SKUIDs, "source", payload.Source, "error", err)
		return err
	}
	for _, item := range items {
		logger.Warnw("worker_low_stock_alert",
			"sku_id", item.SKUID,
			"sku_code", item.SKUCode,
			"stock", item.Stock,
			"threshold", item.LowStockThreshold,
			"suggested_reorder", item.SuggestedReorder,
		)
	}
	if len(payload.SKUIDs) == 0 {
		logger.Infow("worker_low_stock_sweep_done", "alerts", len(items), "source", payload.Source)
	}
	return nil
}

func (c *Consumer) handleAnalyticsWarm(ctx context.Context, task *asynq.Task) error {
	var payload queue.AnalyticsWarmPayload
	if err := queue.DecodePayload(task, &payload); err != nil {
		logger.Warnw("worker_analytics_warm_unmarshal_failed", "error", err)
		return err
	}
	return c.runAnalyticsWarm(ctx, payload)
}

// runAnalyticsWarm 通过 ants 协程池并发预热各时间范围
func (c *Consumer) runAnalyticsWarm(ctx context.Context, payload queue.AnalyticsWarmPayload) error {
	if c == nil || c.warmer == nil {
		logger.Warnw("worker_analytics_warm_skip_service_nil")
		return nil
	}
	ranges := compactRanges(payload.Ranges)
	if len(ranges) == 0 {
		ranges = compactRanges(c.workerCfg.WarmRanges)
	}
	if len(ranges) == 0 {
		ranges = []string{constants.AnalyticsRangeToday, constants.AnalyticsRange7Days, constants.AnalyticsRange30Days}
	}
	timezone := strings.TrimSpace(payload.Timezone)
	if timezone == "" {
		timezone = c.timezone
	}

	size := c.workerCfg.WarmPoolSize
	if size <= 0 {
		size = defaultWarmPoolSize
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return err
	}
	defer pool.Release()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, rangeKey := range ranges {
		rangeKey := rangeKey
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := c.warmer.Warm(ctx, rangeKey, timezone); err != nil {
				logger.Warnw("worker_analytics_warm_range_failed", "range", rangeKey, "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, submitErr)
			mu.Unlock()
		}
	}
	wg.Wait()

	logger.Infow("worker_analytics_warm_done", "ranges", ranges, "failed", len(errs))
	return errors.Join(errs...)
}

func (c *Consumer) handleDraftPurge(_ context.Context, task *asynq.Task) error {
	var payload queue.DraftPurgePayload
	if err := queue.DecodePayload(task, &payload); err != nil {
		logger.Warnw("worker_draft_purge_unmarshal_failed", "error", err)
		return err
	}
	return c.runDraftPurge(payload)
}

func (c *Consumer) runDraftPurge(payload queue.DraftPurgePayload) error {
	if c == nil || c.drafts == nil {
		logger.Warnw("worker_draft_purge_skip_service_nil")
		return nil
	}
	days := payload.OlderThanDays
	if days <= 0 {
		days = c.workerCfg.DraftRetentionDays
	}
	if days <= 0 {
		days = constants.DefaultDraftRetentionDays
	}
	purged, err := c.drafts.PurgeStale(days)
	if err != nil {
		logger.Warnw("worker_draft_purge_failed", "older_than_days", days, "error", err)
		return err
	}
	logger.Infow("worker_draft_purge_done", "older_than_days", days, "purged", purged)
	return nil
}

func compactRanges(ranges []string) []string {
	seen := make(map[string]struct{}, len(ranges))
	out := make([]string, 0, len(ranges))
	for _, r := range ranges {
		key := strings.ToLower(strings.TrimSpace(r))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
