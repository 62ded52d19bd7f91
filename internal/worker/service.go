package worker

import (
	"context"
	"errors"

	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/logger"
	"github.com/stockdesk/internal/queue"

	"github.com/hibiken/asynq"
)

var errQueueDisabled = errors.New("worker: queue disabled")

// QueueWorker 消费库存预警、分析预热和草稿清理任务
type QueueWorker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService 队列未启用时返回错误，调用方应改用进程内调度
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*QueueWorker, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errQueueDisabled
	}
	if consumer == nil {
		return nil, errors.New("worker: consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &QueueWorker{server: asynq.NewServer(opt, serverCfg), mux: mux}, nil
}

func (w *QueueWorker) Name() string { return "queue_worker" }

// Start 信号由上层统一处理，这里只等 ctx 结束
func (w *QueueWorker) Start(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	logger.Infow("queue_worker_started")
	<-ctx.Done()
	return nil
}

// Stop 等待进行中的任务处理完
func (w *QueueWorker) Stop(context.Context) error {
	w.server.Shutdown()
	return nil
}
