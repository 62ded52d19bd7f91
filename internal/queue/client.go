package queue

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/constants"
	"github.com/stockdesk/internal/logger"

	"github.com/hibiken/asynq"
)

const (
	defaultConcurrency     = 10
	workerShutdownDeadline = 8 * time.Second
)

// Client 投递后台任务；队列未启用时所有投递都是空操作
type Client struct {
	inner *asynq.Client
}

// NewClient 队列关闭时返回禁用状态的客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{inner: asynq.NewClient(redisOpt(cfg))}, nil
}

func (c *Client) Enabled() bool { return c != nil && c.inner != nil }

func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.inner.Close()
}

func (c *Client) enqueue(task *asynq.Task, err error, opts []asynq.Option) error {
	if err != nil {
		return err
	}
	info, err := c.inner.Enqueue(task, opts...)
	switch {
	case errors.Is(err, asynq.ErrDuplicateTask), errors.Is(err, asynq.ErrTaskIDConflict):
		logger.Debugw("queue_task_deduplicated", "type", task.Type())
		return nil
	case err != nil:
		return err
	}
	logger.Debugw("queue_task_enqueued", "type", task.Type(), "queue", info.Queue, "task_id", info.ID)
	return nil
}

// EnqueueLowStockCheck 库存变动后的预警复核，走高优先级队列
func (c *Client) EnqueueLowStockCheck(payload LowStockCheckPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewLowStockCheckTask(payload)
	return c.enqueue(task, err, append([]asynq.Option{asynq.Queue(constants.QueueCritical), asynq.MaxRetry(3)}, opts...))
}

// EnqueueAnalyticsWarm 分析缓存预热，一分钟内相同区间只投递一次
func (c *Client) EnqueueAnalyticsWarm(payload AnalyticsWarmPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewAnalyticsWarmTask(payload)
	return c.enqueue(task, err, append([]asynq.Option{
		asynq.Queue(constants.QueueDefault),
		asynq.Unique(time.Minute),
		asynq.MaxRetry(1),
	}, opts...))
}

// EnqueueDraftPurge 清理过期商品草稿
func (c *Client) EnqueueDraftPurge(payload DraftPurgePayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewDraftPurgeTask(payload)
	return c.enqueue(task, err, append([]asynq.Option{asynq.Queue(constants.QueueDefault)}, opts...))
}

// BuildServerConfig 消费端配置：critical 队列权重默认为 default 的两倍
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := defaultConcurrency
	queues := map[string]int{constants.QueueDefault: 1, constants.QueueCritical: 2}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			queues = cfg.Queues
		}
	}
	return redisOpt(cfg), asynq.Config{
		Concurrency:     concurrency,
		Queues:          queues,
		ShutdownTimeout: workerShutdownDeadline,
		Logger:          logger.S(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			logger.Warnw("queue_task_failed", "type", task.Type(), "retried", retried, "error", err)
		}),
	}
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host, port := "127.0.0.1", 6379
	opt := asynq.RedisClientOpt{}
	if cfg != nil {
		if h := strings.TrimSpace(cfg.Host); h != "" {
			host = h
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		opt.Password = cfg.Password
		opt.DB = cfg.DB
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	return opt
}
