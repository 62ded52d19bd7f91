package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/logger"
	"github.com/stockdesk/internal/queue"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Dispatcher 定时任务分发器
type Dispatcher interface {
	DispatchLowStockSweep(ctx context.Context) error
	DispatchAnalyticsWarm(ctx context.Context, ranges []string) error
	DispatchDraftPurge(ctx context.Context, olderThanDays int) error
}

// QueueDispatcher 队列可用时投递任务，否则在进程内直接执行
type QueueDispatcher struct {
	client   *queue.Client
	consumer *Consumer
}

// NewQueueDispatcher 创建分发器
func NewQueueDispatcher(client *queue.Client, consumer *Consumer) *QueueDispatcher {
	return &QueueDispatcher{client: client, consumer: consumer}
}

// DispatchLowStockSweep 低库存全量巡检
func (d *QueueDispatcher) DispatchLowStockSweep(ctx context.Context) error {
	payload := queue.LowStockCheckPayload{Source: "cron"}
	if d.client.Enabled() {
		return d.client.EnqueueLowStockCheck(payload)
	}
	return d.consumer.runLowStockCheck(ctx, payload)
}

// DispatchAnalyticsWarm 分析缓存预热
func (d *QueueDispatcher) DispatchAnalyticsWarm(ctx context.Context, ranges []string) error {
	payload := queue.AnalyticsWarmPayload{Ranges: ranges}
	if d.client.Enabled() {
		return d.client.EnqueueAnalyticsWarm(payload)
	}
	return d.consumer.runAnalyticsWarm(ctx, payload)
}

// DispatchDraftPurge 过期草稿清理
func (d *QueueDispatcher) DispatchDraftPurge(_ context.Context, olderThanDays int) error {
	payload := queue.DraftPurgePayload{OlderThanDays: olderThanDays}
	if d.client.Enabled() {
		return d.client.EnqueueDraftPurge(payload)
	}
	return d.consumer.runDraftPurge(payload)
}

// Scheduler 基于 cron 的定时调度服务
type Scheduler struct {
	name       string
	cron       *cron.Cron
	cfg        config.WorkerConfig
	dispatcher Dispatcher
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewScheduler 创建定时调度服务，空 cron 表达式表示关闭该任务
func NewScheduler(cfg config.WorkerConfig, dispatcher Dispatcher) (*Scheduler, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatcher is nil")
	}
	loc := time.Local
	if name := strings.TrimSpace(cfg.Location); name != "" {
		parsed, err := time.LoadLocation(name)
		if err != nil {
			logger.Warnw("worker_scheduler_location_invalid", "location", name, "error", err)
		} else {
			loc = parsed
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		name:       "scheduler",
		cron:       cron.New(cron.WithLocation(loc), cron.WithParser(cronParser)),
		cfg:        cfg,
		dispatcher: dispatcher,
		ctx:        ctx,
		cancel:     cancel,
	}
	if err := s.register(); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) register() error {
	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
	}{
		{"low_stock_sweep", s.cfg.LowStockSweepCron, s.dispatcher.DispatchLowStockSweep},
		{"analytics_warm", s.cfg.AnalyticsWarmCron, func(ctx context.Context) error {
			return s.dispatcher.DispatchAnalyticsWarm(ctx, s.cfg.WarmRanges)
		}},
		{"draft_purge", s.cfg.DraftPurgeCron, func(ctx context.Context) error {
			return s.dispatcher.DispatchDraftPurge(ctx, s.cfg.DraftRetentionDays)
		}},
	}
	for _, job := range jobs {
		spec := strings.TrimSpace(job.spec)
		if spec == "" {
			logger.Infow("worker_scheduler_job_disabled", "job", job.name)
			continue
		}
		name, run := job.name, job.run
		if _, err := s.cron.AddFunc(spec, func() { s.runJob(name, run) }); err != nil {
			return err
		}
		logger.Infow("worker_scheduler_job_registered", "job", name, "spec", spec)
	}
	return nil
}

func (s *Scheduler) runJob(name string, run func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("worker_scheduler_job_panic", "job", name, "panic", r)
		}
	}()
	if err := run(s.ctx); err != nil {
		logger.Warnw("worker_scheduler_job_failed", "job", name, "error", err)
	}
}

// Entries 已注册的任务数量
func (s *Scheduler) Entries() int {
	if s == nil || s.cron == nil {
		return 0
	}
	return len(s.cron.Entries())
}

// Name 服务名称
func (s *Scheduler) Name() string {
	if s == nil || s.name == "" {
		return "scheduler"
	}
	return s.name
}

// Start 启动调度，阻塞直到 ctx 结束
func (s *Scheduler) Start(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return errors.New("scheduler not initialized")
	}
	s.cron.Start()
	<-ctx.Done()
	return nil
}

// Stop 停止调度并等待运行中的任务结束
func (s *Scheduler) Stop(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return nil
	}
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
